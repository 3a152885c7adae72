package cargo

import (
	"strings"

	"github.com/blacktop/zigbuild/pkg/target"
)

// ParseArgs scans cargo arguments for the options the toolchain environment depends on.
// It returns the arguments to hand to cargo: ABI suffixes are stripped from --target values
// and --enable-zig-ar is consumed. Scanning stops at `--`.
func ParseArgs(args []string) ([]string, *Options) {
	opts := &Options{}
	out := make([]string, 0, len(args))

	value := func(i int, arg, flag string) (string, int, bool) {
		if arg == flag && i+1 < len(args) {
			return args[i+1], i + 1, true
		}
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v, i, true
		}
		return "", i, false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		if v, next, ok := value(i, arg, "--target"); ok {
			for _, raw := range strings.Split(v, ",") {
				opts.Targets = append(opts.Targets, raw)
				out = append(out, "--target", target.StripSuffix(raw))
			}
			i = next
			continue
		}
		if v, next, ok := value(i, arg, "--manifest-path"); ok {
			opts.ManifestPath = v
			out = append(out, args[i:next+1]...)
			i = next
			continue
		}
		if v, next, ok := value(i, arg, "--profile"); ok {
			opts.Profile = v
			out = append(out, args[i:next+1]...)
			i = next
			continue
		}
		if v, next, ok := value(i, arg, "--target-dir"); ok {
			opts.TargetDir = v
			out = append(out, args[i:next+1]...)
			i = next
			continue
		}

		switch arg {
		case "--release", "-r":
			opts.Release = true
		case "--enable-zig-ar":
			opts.EnableZigAr = true
			continue
		}
		out = append(out, arg)
	}

	return out, opts
}

// ProfileName is the cargo profile the invocation builds with
func (o *Options) ProfileName() string {
	switch {
	case o.Profile != "":
		return o.Profile
	case o.Release:
		return "release"
	}
	return "dev"
}
