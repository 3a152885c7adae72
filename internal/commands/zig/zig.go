// Package zig runs the zig subcommand a wrapper script or tool link stands in for.
package zig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/internal/utils"
	"github.com/blacktop/zigbuild/pkg/linkargs"
	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/blacktop/zigbuild/pkg/toolchain"
)

// Tools that are forwarded to `zig <tool>`
var Tools = []string{"cc", "c++", "ar", "ranlib", "lib", "dlltool"}

// ToolFromArgv0 maps the base name of a tool link to the zig subcommand it emulates
func ToolFromArgv0(argv0 string) (string, bool) {
	name := strings.TrimSuffix(filepath.Base(argv0), ".exe")
	if name == "cc" || name == "c++" || !utils.StrSliceHas(Tools, name) {
		return "", false
	}
	return name, true
}

// Execute runs `zig <tool>` with args, filtering compiler and linker arguments for cc and c++
func Execute(tc *toolchain.Context, tool string, args []string) error {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}

	if !utils.StrSliceHas(Tools, tool) {
		return fmt.Errorf("unsupported zig tool %s", tool)
	}

	z, err := tc.Zig()
	if err != nil {
		return err
	}

	if tool == "cc" || tool == "c++" {
		args, err = filterCompilerArgs(tc, z, args)
		if err != nil {
			return err
		}
	}

	return toolchain.Run(z.Command(tool, args...))
}

func filterCompilerArgs(tc *toolchain.Context, z *toolchain.Zig, args []string) ([]string, error) {
	spec, err := target.FromZigArgs(args)
	if err != nil {
		log.WithError(err).Debug("Unknown compiler target, only target independent rules apply")
		spec = nil
	}
	ctx := &linkargs.Context{
		Target: spec,
		Zig:    z.Version,
	}
	if rustc, err := tc.RustcInfo(); err == nil {
		ctx.Rustc = rustc.Version
	} else {
		log.WithError(err).Debug("rustc version unknown, skipping rustc gated rules")
	}
	return linkargs.FilterArgs(args, ctx)
}
