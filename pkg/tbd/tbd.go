// Package tbd generates text-based dylib stubs that let zig link against Apple system
// libraries it does not ship.
package tbd

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/blacktop/zigbuild/internal/utils"
	"github.com/pkg/errors"
)

// AppleTargets are the tapi targets the bundled stubs are valid for
var AppleTargets = []string{
	"x86_64-macos",
	"x86_64-maccatalyst",
	"arm64-macos",
	"arm64-maccatalyst",
	"arm64e-macos",
	"arm64e-maccatalyst",
	"arm64-ios",
	"arm64e-ios",
}

// TBD object
type TBD struct {
	Name           string // file name, defaults to the install name's base
	Targets        []string
	Path           string
	CurrentVersion string
	CompatVersion  string
	Reexports      []string
	Symbols        []string
}

// LibIconv is /usr/lib/libiconv.2.dylib
var LibIconv = &TBD{
	Name:           "libiconv.tbd",
	Targets:        AppleTargets,
	Path:           "/usr/lib/libiconv.2.dylib",
	CurrentVersion: "7",
	CompatVersion:  "7",
	Reexports:      []string{"/usr/lib/libcharset.1.dylib"},
	Symbols: []string{
		"___iconv_2VersionNumber",
		"___iconv_2VersionString",
		"_iconv",
		"_iconv_canonicalize",
		"_iconv_close",
		"_iconv_open",
		"_iconv_open_into",
		"_iconv_set_relocation_prefix",
		"_iconvctl",
		"_iconvlist",
		"_libiconv_relocate",
		"_libiconv_set_relocation_prefix",
	},
}

// LibCharset is /usr/lib/libcharset.1.dylib
var LibCharset = &TBD{
	Targets:        AppleTargets,
	Path:           "/usr/lib/libcharset.1.dylib",
	CurrentVersion: "2",
	CompatVersion:  "2",
	Symbols: []string{
		"_libcharset_set_relocation_prefix",
		"_locale_charset",
	},
}

// Generate generates a tbd file from a template
func (t *TBD) Generate() (string, error) {
	var tplOut bytes.Buffer

	tmpl := template.Must(template.New("tbd").Funcs(template.FuncMap{"StringsJoin": strings.Join}).Parse(tbdTemplate))

	err := tmpl.Execute(&tplOut, t)
	if err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return tplOut.String(), nil
}

// FileName is the name the linker looks for when resolving -l<name>
func (t *TBD) FileName() string {
	if t.Name != "" {
		return t.Name
	}
	return strings.TrimSuffix(filepath.Base(t.Path), ".dylib") + ".tbd"
}

// Write generates the stub into dir, leaving an identical existing file untouched.
// It returns the path of the stub.
func (t *TBD) Write(dir string) (string, error) {
	out, err := t.Generate()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, t.FileName())
	if _, err := utils.WriteIfChanged(path, []byte(out), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
