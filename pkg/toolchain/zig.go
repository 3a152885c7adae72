// Package toolchain locates zig and rustc and runs child processes.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-version"
)

var (
	// ErrToolchainNotFound is returned when neither the ziglang python package nor zig is usable
	ErrToolchainNotFound = errors.New("failed to find zig")
	// ErrToolchainTooOld is returned when zig is older than MinZigVersion
	ErrToolchainTooOld = errors.New("zig is too old")
)

// MinZigVersion is the oldest supported zig
var MinZigVersion = version.Must(version.NewVersion("0.9.0"))

// Zig is a located zig toolchain. Program and Args form the command prefix, e.g.
// `python3 -m ziglang` or `zig`.
type Zig struct {
	Program string
	Args    []string
	Version *version.Version
}

// Command returns a command running `zig <sub> args...`
func (z *Zig) Command(sub string, args ...string) *exec.Cmd {
	argv := make([]string, 0, len(z.Args)+1+len(args))
	argv = append(argv, z.Args...)
	argv = append(argv, sub)
	argv = append(argv, args...)
	return exec.Command(z.Program, argv...)
}

func (z *Zig) String() string {
	return strings.Join(append([]string{z.Program}, z.Args...), " ")
}

// FindZig locates zig. An explicit zigPath wins; otherwise `<python> -m ziglang` is tried
// before `zig` on PATH.
func FindZig(zigPath, python string) (*Zig, error) {
	if zigPath != "" {
		return probeZig(&Zig{Program: zigPath})
	}
	if python == "" {
		python = "python3"
	}

	z, err := probeZig(&Zig{Program: python, Args: []string{"-m", "ziglang"}})
	if err == nil {
		return z, nil
	}
	if errors.Is(err, ErrToolchainTooOld) {
		return nil, err
	}
	log.WithError(err).Debugf("%s -m ziglang is not usable", python)

	return probeZig(&Zig{Program: "zig"})
}

func probeZig(z *Zig) (*Zig, error) {
	out, err := z.Command("version").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: `%s version`: %v", ErrToolchainNotFound, z, err)
	}
	v, err := ParseZigVersion(string(out))
	if err != nil {
		return nil, err
	}
	z.Version = v
	log.WithFields(log.Fields{"zig": z.String(), "version": v}).Debug("Found zig")
	return z, nil
}

// ParseZigVersion parses `zig version` output and enforces MinZigVersion
func ParseZigVersion(out string) (*version.Version, error) {
	v, err := version.NewVersion(strings.TrimSpace(out))
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized zig version %q", ErrToolchainNotFound, strings.TrimSpace(out))
	}
	if v.Core().LessThan(MinZigVersion) {
		return nil, fmt.Errorf("%w: found %s, need at least %s", ErrToolchainTooOld, v, MinZigVersion)
	}
	return v, nil
}
