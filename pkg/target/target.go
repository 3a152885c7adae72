// Package target resolves Rust target triples into zig targets.
package target

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

var (
	// ErrMalformedTarget is returned when a target carries an ABI suffix that is not `.N.M`
	ErrMalformedTarget = errors.New("malformed target ABI suffix")
	// ErrUnsupportedTarget is returned when a triple has no zig equivalent
	ErrUnsupportedTarget = errors.New("unsupported target")
)

var zigX86Rename = mustConstraint(">= 0.11")

// Spec is a resolved target
type Spec struct {
	Raw       string // as requested, e.g. x86_64-unknown-linux-gnu.2.17
	Triple    string // Raw without the ABI suffix
	ABISuffix string // "2.17" or ""

	Arch   string
	Vendor string
	OS     string
	Env    string

	ZigArch string
	ZigOS   string
	ZigEnv  string
	CPU     string // zig -mcpu value, empty when the target has no baseline
}

// Parse resolves a raw target string. zig may be nil when the zig version is not known,
// in which case the latest naming is used.
func Parse(raw string, zig *version.Version) (*Spec, error) {
	triple, suffix, err := SplitSuffix(raw)
	if err != nil {
		return nil, err
	}

	s := &Spec{
		Raw:       raw,
		Triple:    triple,
		ABISuffix: suffix,
	}
	if err := s.splitTriple(); err != nil {
		return nil, err
	}
	if err := s.resolve(zig); err != nil {
		return nil, err
	}
	s.CPU = baselineCPU(s, zig)

	return s, nil
}

// SplitSuffix splits `<triple>.N.M` into the triple and the `N.M` suffix.
func SplitSuffix(raw string) (string, string, error) {
	triple, suffix, found := strings.Cut(raw, ".")
	if !found {
		return raw, "", nil
	}
	major, minor, ok := strings.Cut(suffix, ".")
	if !ok || !isDigits(major) || !isDigits(minor) {
		return "", "", fmt.Errorf("%w: %s", ErrMalformedTarget, raw)
	}
	return triple, suffix, nil
}

// StripSuffix returns the triple part of a raw target, leaving malformed targets alone.
func StripSuffix(raw string) string {
	triple, _, err := SplitSuffix(raw)
	if err != nil {
		return raw
	}
	return triple
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *Spec) splitTriple() error {
	parts := strings.Split(s.Triple, "-")
	if len(parts) < 2 {
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
	}
	s.Arch = parts[0]
	switch {
	case len(parts) == 2:
		s.Vendor = "unknown"
		s.OS = parts[1]
	case strings.HasPrefix(parts[1], "wasi"):
		// wasm32-wasip1-threads
		s.Vendor = "unknown"
		s.OS = parts[1]
		s.Env = strings.Join(parts[2:], "-")
	default:
		s.Vendor = parts[1]
		s.OS = parts[2]
		s.Env = strings.Join(parts[3:], "-")
	}
	return nil
}

func zigArch(arch string, zig *version.Version) string {
	switch arch {
	case "i386", "i586", "i686":
		if zig == nil || zigX86Rename.Check(zig.Core()) {
			return "x86"
		}
		return "i386"
	case "arm64":
		return "aarch64"
	case "x86_64h":
		return "x86_64"
	case "riscv64gc", "riscv64imac":
		return "riscv64"
	}
	switch {
	case arch == "arm", strings.HasPrefix(arch, "armv"), strings.HasPrefix(arch, "thumbv"):
		return "arm"
	case strings.HasPrefix(arch, "riscv32"):
		return "riscv32"
	}
	return arch
}

func (s *Spec) resolve(zig *version.Version) error {
	s.ZigArch = zigArch(s.Arch, zig)

	switch s.OS {
	case "linux":
		s.ZigOS = "linux"
		s.ZigEnv = s.Env
		switch {
		case s.Env == "" || s.Env == "android" || s.Env == "androideabi" || s.Env == "ohos":
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
		case (s.Arch == "mips" || s.Arch == "mipsel") && s.Env == "gnu":
			s.ZigEnv = "gnueabihf"
		case (s.Arch == "mips" || s.Arch == "mipsel") && s.Env == "musl":
			s.ZigEnv = "musleabihf"
		case s.Arch == "powerpc" && s.Env == "gnu":
			s.ZigEnv = "gnueabihf"
		}
	case "darwin", "macos":
		s.ZigOS = "macos"
		s.ZigEnv = "none"
	case "ios":
		s.ZigOS = "ios"
		s.ZigEnv = "none"
		if s.Env == "sim" {
			s.ZigEnv = "simulator"
		}
	case "windows":
		s.ZigOS = "windows"
		switch s.Env {
		case "gnu", "gnullvm":
			s.ZigEnv = "gnu"
		case "msvc":
			s.ZigEnv = "msvc"
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
		}
	case "freebsd":
		s.ZigOS = "freebsd"
		s.ZigEnv = "none"
	case "wasi", "wasip1":
		if s.ZigArch != "wasm32" {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
		}
		s.ZigOS = "wasi"
		s.ZigEnv = "musl"
	case "unknown":
		if !s.IsWasm() || s.Env != "" {
			return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
		}
		s.ZigOS = "freestanding"
		s.ZigEnv = "none"
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, s.Triple)
	}

	return nil
}

// ZigTarget returns the value handed to zig's -target flag
func (s *Spec) ZigTarget() string {
	var sb strings.Builder
	sb.WriteString(s.ZigArch)
	sb.WriteString("-")
	sb.WriteString(s.ZigOS)
	sb.WriteString("-")
	sb.WriteString(s.ZigEnv)
	if s.ABISuffix != "" && !s.IsWasm() {
		sb.WriteString(".")
		sb.WriteString(s.ABISuffix)
	}
	return sb.String()
}

// EnvName is the triple as it appears in per-target variables such as CC_<t>
func (s *Spec) EnvName() string {
	return strings.ReplaceAll(s.Triple, "-", "_")
}

// EnvNameUpper is EnvName upper-cased as cargo expects for CARGO_TARGET_<T>_LINKER
func (s *Spec) EnvNameUpper() string {
	return strings.ToUpper(s.EnvName())
}

func (s *Spec) String() string {
	return s.Raw
}

func (s *Spec) IsLinux() bool       { return s.ZigOS == "linux" }
func (s *Spec) IsMusl() bool        { return strings.HasPrefix(s.ZigEnv, "musl") }
func (s *Spec) IsGlibc() bool       { return s.IsLinux() && strings.HasPrefix(s.ZigEnv, "gnu") }
func (s *Spec) IsWindows() bool     { return s.ZigOS == "windows" }
func (s *Spec) IsWindowsGNU() bool  { return s.IsWindows() && s.ZigEnv == "gnu" }
func (s *Spec) IsWindowsMSVC() bool { return s.IsWindows() && s.ZigEnv == "msvc" }
func (s *Spec) IsApple() bool       { return s.ZigOS == "macos" || s.ZigOS == "ios" }
func (s *Spec) IsFreeBSD() bool     { return s.ZigOS == "freebsd" }
func (s *Spec) IsWasm() bool        { return s.ZigArch == "wasm32" || s.ZigArch == "wasm64" }
func (s *Spec) IsAArch64() bool     { return s.ZigArch == "aarch64" || s.ZigArch == "aarch64_be" }
func (s *Spec) IsX86() bool         { return s.ZigArch == "x86" || s.ZigArch == "i386" }
func (s *Spec) IsX86_64() bool      { return s.ZigArch == "x86_64" }
func (s *Spec) IsRISCV64() bool     { return s.ZigArch == "riscv64" }
func (s *Spec) IsRISCV32() bool     { return s.ZigArch == "riscv32" }
func (s *Spec) IsRISCV() bool       { return s.IsRISCV64() || s.IsRISCV32() }

// IsARM reports 32-bit ARM, including thumb
func (s *Spec) IsARM() bool {
	switch s.ZigArch {
	case "arm", "armeb", "thumb", "thumbeb":
		return true
	}
	return false
}

// GlibcVersion returns the requested glibc version for glibc targets, nil otherwise.
func (s *Spec) GlibcVersion() *version.Version {
	if !s.IsGlibc() || s.ABISuffix == "" {
		return nil
	}
	v, err := version.NewVersion(s.ABISuffix)
	if err != nil {
		return nil
	}
	return v
}
