// Package cargo runs cargo with the environment that routes C compilation and linking through zig.
package cargo

import (
	"fmt"
	"os/exec"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/internal/utils"
	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/blacktop/zigbuild/pkg/toolchain"
	"github.com/blacktop/zigbuild/pkg/wrapper"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Options are the parts of a cargo invocation the environment depends on
type Options struct {
	Targets      []string
	ManifestPath string
	Release      bool
	Profile      string
	TargetDir    string
	EnableZigAr  bool
	Env          []string // parent environment as KEY=VALUE
}

// Applier computes the toolchain environment for a cargo invocation
type Applier struct {
	Toolchain *toolchain.Context
	Exe       string
	CacheDir  string
	SDKRoot   string

	probe func(cc, lang string, environ []string) (string, error)
}

// NewApplier returns an Applier writing wrappers into cacheDir that re-enter exe
func NewApplier(tc *toolchain.Context, exe, cacheDir, sdkRoot string) *Applier {
	return &Applier{
		Toolchain: tc,
		Exe:       exe,
		CacheDir:  cacheDir,
		SDKRoot:   sdkRoot,
		probe:     probeIncludeDirs,
	}
}

// Apply sets cmd.Env to the parent environment plus the toolchain variables for opts.
// Variables already on cmd.Env take precedence over both.
func (a *Applier) Apply(cmd *exec.Cmd, opts *Options) error {
	env, err := a.environment(opts, cmd.Env)
	if err != nil {
		return err
	}
	env.applyTo(cmd)
	return nil
}

// Environment returns only the variables Apply adds, in the order they were computed
func (a *Applier) Environment(opts *Options) ([]Var, error) {
	env, err := a.environment(opts, nil)
	if err != nil {
		return nil, err
	}
	return env.staged, nil
}

func (a *Applier) environment(opts *Options, cmdEnv []string) (*envSet, error) {
	env := newEnvSet(opts.Env)
	env.overlay(cmdEnv)

	targets := utils.Unique(opts.Targets)
	if len(targets) == 0 {
		return env, nil
	}

	zig, err := a.Toolchain.Zig()
	if err != nil {
		return nil, err
	}
	rustc, err := a.Toolchain.RustcInfo()
	if err != nil {
		return nil, err
	}

	m := wrapper.NewMaterializer(a.Exe, a.CacheDir)
	m.Zig = zig.Version
	m.Rustc = rustc.Version
	m.SDKRoot = a.SDKRoot

	env.setDefault("CARGO_ZIGBUILD_RUSTC_VERSION", rustc.Version.String())

	for _, raw := range targets {
		spec, err := target.Parse(raw, zig.Version)
		if err != nil {
			return nil, err
		}
		if raw == rustc.Host {
			log.WithField("target", raw).Debug("Target is the host, leaving the native toolchain in place")
			continue
		}
		if err := a.applyTarget(env, m, spec, opts); err != nil {
			return nil, errors.Wrapf(err, "failed to set up zig for %s", raw)
		}
		if spec.Triple == rustc.Host && spec.ABISuffix != "" {
			env.setDefault("CARGO_UNSTABLE_TARGET_APPLIES_TO_HOST", "true")
			env.setDefault("CARGO_TARGET_APPLIES_TO_HOST", "false")
		}
	}

	return env, nil
}

func (a *Applier) applyTarget(env *envSet, m *wrapper.Materializer, spec *target.Spec, opts *Options) error {
	set, err := m.Materialize(spec)
	if err != nil {
		return err
	}

	t := spec.EnvName()
	env.setDefault("CC_"+t, set.CC)
	env.setDefault("CXX_"+t, set.CXX)
	env.setDefault("RANLIB_"+t, set.Ranlib)
	if !spec.IsWasm() {
		env.setDefault("CARGO_TARGET_"+spec.EnvNameUpper()+"_LINKER", set.CC)
	}
	if opts.EnableZigAr {
		ar := set.AR
		if spec.IsWindowsMSVC() {
			ar = set.Lib
		}
		env.setDefault("AR_"+t, ar)
	}

	if !env.isSet("CMAKE_TOOLCHAIN_FILE_"+spec.Triple, "CMAKE_TOOLCHAIN_FILE_"+t, "TARGET_CMAKE_TOOLCHAIN_FILE", "CMAKE_TOOLCHAIN_FILE") {
		path, err := m.WriteCMakeToolchain(spec, set, opts.EnableZigAr)
		if err != nil {
			return err
		}
		env.setDefault("CMAKE_TOOLCHAIN_FILE_"+t, path)
	}

	if spec.IsWindowsGNU() {
		env.setDefault("WINAPI_NO_BUNDLED_LIBRARIES", "1")
	}
	if spec.IsApple() || spec.IsWindowsGNU() {
		// install_name_tool and dlltool are looked up on PATH
		env.prependPath(set.BinDir)
	}
	if spec.IsApple() && a.SDKRoot != "" {
		env.setDefault("PKG_CONFIG_SYSROOT_DIR", a.SDKRoot)
	}

	bindgenKey := "BINDGEN_EXTRA_CLANG_ARGS_" + t
	if !env.isSet(bindgenKey) {
		args, err := a.bindgen(env, set, spec)
		if err != nil {
			log.WithError(err).Warnf("Failed to detect include directories for %s, bindgen will use the host headers", spec)
			return nil
		}
		env.setDefault(bindgenKey, args)
		if len(utils.Unique(opts.Targets)) == 1 {
			env.setDefault("BINDGEN_EXTRA_CLANG_ARGS", args)
		}
	}

	return nil
}

func (a *Applier) bindgen(env *envSet, set *wrapper.Set, spec *target.Spec) (string, error) {
	environ := env.environ()

	var cOut, cxxOut string
	var g errgroup.Group
	g.Go(func() (err error) {
		cOut, err = a.probe(set.CC, "c", environ)
		return err
	})
	g.Go(func() (err error) {
		cxxOut, err = a.probe(set.CXX, "c++", environ)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	c := parseSearchDirs(cOut)
	if len(c) == 0 {
		return "", errors.New("no include search list in preprocessor output")
	}
	args := bindgenArgs(c, parseSearchDirs(cxxOut))
	if v := spec.GlibcVersion(); v != nil && len(v.Segments()) > 1 {
		args += fmt.Sprintf(" -D__GLIBC_MINOR__=%d", v.Segments()[1])
	}
	return args, nil
}
