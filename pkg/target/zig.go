package target

import (
	"fmt"
	"strings"
)

// FromZigArgs rebuilds a Spec from the `-target` and `-mcpu=` flags baked into a compiler wrapper.
// Only the zig-side fields and the ABI suffix are populated.
func FromZigArgs(args []string) (*Spec, error) {
	var zt, cpu string
	for i, arg := range args {
		switch {
		case arg == "-target" && i+1 < len(args):
			zt = args[i+1]
		case strings.HasPrefix(arg, "--target="):
			zt = strings.TrimPrefix(arg, "--target=")
		case strings.HasPrefix(arg, "-mcpu="):
			cpu = strings.TrimPrefix(arg, "-mcpu=")
		}
	}
	if zt == "" {
		return nil, fmt.Errorf("%w: no -target in compiler arguments", ErrUnsupportedTarget)
	}
	return ParseZig(zt, cpu)
}

// ParseZig parses a zig target of the form <arch>-<os>-<abi>[.N.M]
func ParseZig(zt, cpu string) (*Spec, error) {
	base, suffix, err := SplitSuffix(zt)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(base, "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, zt)
	}
	s := &Spec{
		Raw:       zt,
		Triple:    base,
		ABISuffix: suffix,
		Arch:      parts[0],
		OS:        parts[1],
		ZigArch:   parts[0],
		ZigOS:     parts[1],
		CPU:       cpu,
	}
	if len(parts) > 2 {
		s.Env = parts[2]
		s.ZigEnv = parts[2]
	}
	return s, nil
}
