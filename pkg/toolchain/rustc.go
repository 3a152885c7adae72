package toolchain

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-version"
)

// Rustc describes the host rust compiler
type Rustc struct {
	Version *version.Version
	Host    string // empty when only the version is known
}

// QueryRustc runs `rustc -vV`
func QueryRustc(rustc string) (*Rustc, error) {
	if rustc == "" {
		rustc = "rustc"
	}
	out, err := exec.Command(rustc, "-vV").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run `%s -vV`: %w", rustc, err)
	}
	return ParseRustcVerbose(string(out))
}

// ParseRustcVerbose parses the output of `rustc -vV`
func ParseRustcVerbose(out string) (*Rustc, error) {
	var r Rustc
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "release":
			v, err := version.NewVersion(value)
			if err != nil {
				return nil, fmt.Errorf("failed to parse rustc release %q: %w", value, err)
			}
			r.Version = v
		case "host":
			r.Host = value
		}
	}
	if r.Version == nil {
		return nil, fmt.Errorf("rustc -vV output has no release line")
	}
	return &r, nil
}
