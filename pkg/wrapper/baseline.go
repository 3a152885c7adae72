package wrapper

import (
	"path/filepath"

	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/blacktop/zigbuild/pkg/tbd"
	"github.com/hashicorp/go-version"
)

var (
	fcntlShimZig   = mustConstraint("< 0.11")
	fcntlShimGlibc = mustConstraint("< 2.28")
	muslWeakZig    = mustConstraint(">= 0.11")
	muslWeakRustc  = mustConstraint("< 1.80")
)

func mustConstraint(c string) version.Constraints {
	cs, err := version.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

func check(c version.Constraints, v *version.Version) bool {
	return v != nil && c.Check(v.Core())
}

// BaselineArgs returns the flags baked into the compiler wrappers for t. Support files the
// flags refer to are written into the cache directory.
func (m *Materializer) BaselineArgs(t *target.Spec) ([]string, error) {
	args := []string{"-g", "-fno-sanitize=all"}
	if t.CPU != "" {
		args = append(args, "-mcpu="+t.CPU)
	}
	args = append(args, "-target", t.ZigTarget())

	switch {
	case t.IsGlibc() && t.IsX86_64() && check(fcntlShimZig, m.Zig) && check(fcntlShimGlibc, t.GlibcVersion()):
		header, versionScript, err := writeFcntlShim(m.CacheDir)
		if err != nil {
			return nil, err
		}
		args = append(args, "-Wl,--version-script="+versionScript, "-include", header)
	case t.IsMusl() && check(muslWeakZig, m.Zig) && check(muslWeakRustc, m.Rustc):
		script, err := writeMuslWeakSymbols(m.CacheDir)
		if err != nil {
			return nil, err
		}
		args = append(args, "-Wl,"+script)
	case t.IsApple():
		deps := filepath.Join(m.CacheDir, "deps")
		for _, stub := range []*tbd.TBD{tbd.LibIconv, tbd.LibCharset} {
			if _, err := stub.Write(deps); err != nil {
				return nil, err
			}
		}
		args = append(args, "-L"+deps)
		if m.SDKRoot != "" {
			args = append(args,
				"--sysroot="+m.SDKRoot,
				"-I"+filepath.Join(m.SDKRoot, "usr", "include"),
				"-L"+filepath.Join(m.SDKRoot, "usr", "lib"),
				"-F"+filepath.Join(m.SDKRoot, "System", "Library", "Frameworks"),
			)
		}
	}

	return args, nil
}
