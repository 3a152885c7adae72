// Package wrapper writes the compiler wrapper scripts and tool links cargo is pointed at.
package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/internal/utils"
	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/hashicorp/go-version"
	"github.com/twmb/murmur3"
)

// Tools that are linked to the executable instead of wrapped in a script
var Tools = []string{"ar", "ranlib", "lib", "dlltool", "install_name_tool"}

// PathTools are linked into Set.BinDir instead of the cache root
var PathTools = []string{"dlltool", "install_name_tool"}

// Set is the collection of wrapper paths for one target
type Set struct {
	CC              string
	CXX             string
	AR              string
	Ranlib          string
	Lib             string
	Dlltool         string
	InstallNameTool string
	BinDir          string // holds only PathTools
}

// Materializer writes wrappers into CacheDir that re-enter Exe
type Materializer struct {
	Exe      string
	CacheDir string
	Zig      *version.Version
	Rustc    *version.Version
	SDKRoot  string

	// Windows selects .bat wrappers and .exe links; defaults to the host OS
	Windows bool
	// MinGW writes the executable path with forward slashes
	MinGW bool
}

// NewMaterializer returns a Materializer for the host OS
func NewMaterializer(exe, cacheDir string) *Materializer {
	return &Materializer{
		Exe:      exe,
		CacheDir: cacheDir,
		Windows:  runtime.GOOS == "windows",
		MinGW:    runtime.GOOS == "windows" && os.Getenv("MSYSTEM") != "" && os.Getenv("SHELL") != "",
	}
}

// Checksum is the hex murmur3 hash used to key wrapper names by their baked flags
func Checksum(s string) string {
	return fmt.Sprintf("%016x", murmur3.Sum64([]byte(s)))
}

// Materialize writes the wrappers for t and returns their paths
func (m *Materializer) Materialize(t *target.Spec) (*Set, error) {
	if err := os.MkdirAll(m.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", m.CacheDir, err)
	}

	args, err := m.BaselineArgs(t)
	if err != nil {
		return nil, err
	}

	var set Set
	if set.CC, err = m.writeScript("cc", t, args); err != nil {
		return nil, err
	}
	if set.CXX, err = m.writeScript("c++", t, args); err != nil {
		return nil, err
	}

	set.BinDir = filepath.Join(m.CacheDir, "bin")
	if err := os.MkdirAll(set.BinDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", set.BinDir, err)
	}

	links := make(map[string]string, len(Tools))
	for _, tool := range Tools {
		dir := m.CacheDir
		if utils.StrSliceHas(PathTools, tool) {
			dir = set.BinDir
		}
		dst := filepath.Join(dir, tool)
		if m.Windows {
			dst += ".exe"
		}
		if err := LinkTool(m.Exe, dst); err != nil {
			return nil, err
		}
		links[tool] = dst
	}
	set.AR = links["ar"]
	set.Ranlib = links["ranlib"]
	set.Lib = links["lib"]
	set.Dlltool = links["dlltool"]
	set.InstallNameTool = links["install_name_tool"]

	return &set, nil
}

func (m *Materializer) exePath() string {
	if m.MinGW {
		return filepath.ToSlash(m.Exe)
	}
	return m.Exe
}

func (m *Materializer) writeScript(tool string, t *target.Spec, args []string) (string, error) {
	var baked, content, ext string
	if m.Windows {
		baked = strings.Join(quoteAll(args, batchQuote), " ")
		content = fmt.Sprintf("@echo off\r\n\"%s\" zig %s -- %s %%*\r\n", m.exePath(), tool, baked)
		ext = ".bat"
	} else {
		baked = strings.Join(quoteAll(args, ShellQuote), " ")
		content = fmt.Sprintf("#!/bin/sh\nexec %s zig %s -- %s \"$@\"\n", ShellQuote(m.exePath()), tool, baked)
		ext = ".sh"
	}

	prefix := "zigcc"
	if tool == "c++" {
		prefix = "zigcxx"
	}
	name := fmt.Sprintf("%s-%s-%s%s", prefix, t.Triple, Checksum(baked), ext)
	path := filepath.Join(m.CacheDir, name)

	wrote, err := utils.WriteIfChanged(path, []byte(content), 0o700)
	if err != nil {
		return "", err
	}
	if wrote {
		log.WithField("path", path).Debug("Wrote compiler wrapper")
	}
	return path, nil
}

func quoteAll(args []string, quote func(string) string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = quote(a)
	}
	return out
}

func shellSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_+=.,/:@%", r)
}

// ShellQuote quotes s for a POSIX shell when it is not made of safe characters only
func ShellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool { return !shellSafe(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func batchQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t&|<>^()") {
		return s
	}
	return `"` + s + `"`
}
