package cargo

import (
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/internal/config"
	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/blacktop/zigbuild/pkg/toolchain"
)

// Run runs `cargo <subcommand> args...` with the zig toolchain environment applied
func Run(conf *config.Config, tc *toolchain.Context, cacheDir, subcommand string, args []string) error {
	cargoArgs, opts := ParseArgs(args)
	opts.EnableZigAr = opts.EnableZigAr || conf.EnableZigAr
	opts.Env = os.Environ()
	if len(opts.Targets) == 0 {
		if t := os.Getenv("CARGO_BUILD_TARGET"); t != "" {
			opts.Targets = []string{t}
			cargoArgs = append([]string{"--target", target.StripSuffix(t)}, cargoArgs...)
		}
	}

	log.WithFields(log.Fields{
		"targets":  opts.Targets,
		"profile":  opts.ProfileName(),
		"manifest": opts.ManifestPath,
	}).Debugf("cargo %s", subcommand)

	cmd := exec.Command(conf.Cargo, append([]string{subcommand}, cargoArgs...)...)
	if err := NewApplier(tc, conf.Exe, cacheDir, conf.SDKRoot).Apply(cmd, opts); err != nil {
		return err
	}

	return toolchain.Run(cmd)
}
