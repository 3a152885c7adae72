package wrapper

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/blacktop/zigbuild/internal/utils"
	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/pkg/errors"
)

const cmakeTemplate = `set(CMAKE_SYSTEM_NAME {{ .SystemName }})
set(CMAKE_SYSTEM_PROCESSOR {{ .Processor }})
set(CMAKE_C_COMPILER "{{ .CC }}")
set(CMAKE_CXX_COMPILER "{{ .CXX }}")
set(CMAKE_RANLIB "{{ .Ranlib }}")
set(CMAKE_C_LINKER_DEPFILE_SUPPORTED FALSE)
set(CMAKE_CXX_LINKER_DEPFILE_SUPPORTED FALSE)
{{- if .AR }}
set(CMAKE_AR "{{ .AR }}")
{{- end }}
{{- if .InstallNameTool }}
set(CMAKE_INSTALL_NAME_TOOL "{{ .InstallNameTool }}")
{{- end }}
{{- if .Dlltool }}
set(CMAKE_DLLTOOL "{{ .Dlltool }}")
{{- end }}
set(CMAKE_FIND_ROOT_PATH_MODE_PROGRAM NEVER)
set(CMAKE_FIND_ROOT_PATH_MODE_LIBRARY ONLY)
set(CMAKE_FIND_ROOT_PATH_MODE_INCLUDE ONLY)
set(CMAKE_FIND_ROOT_PATH_MODE_PACKAGE ONLY)
`

var cmakeSystemNames = map[string]string{
	"linux":        "Linux",
	"macos":        "Darwin",
	"ios":          "iOS",
	"windows":      "Windows",
	"freebsd":      "FreeBSD",
	"wasi":         "WASI",
	"freestanding": "Generic",
}

// cmakeProcessor maps a target to the CMAKE_SYSTEM_PROCESSOR CMake itself reports on that platform
func cmakeProcessor(t *target.Spec) string {
	switch {
	case t.IsX86():
		return "i686"
	case t.IsAArch64() && t.IsApple():
		return "arm64"
	case t.IsARM():
		if strings.HasPrefix(t.Arch, "armv7") || strings.HasPrefix(t.Arch, "thumbv7") {
			return "armv7l"
		}
		return "arm"
	}
	switch t.ZigArch {
	case "powerpc64le":
		return "ppc64le"
	case "powerpc64":
		return "ppc64"
	case "powerpc":
		return "ppc"
	}
	return t.ZigArch
}

// WriteCMakeToolchain writes <CacheDir>/cmake/<triple>-toolchain.cmake for set and returns its path.
// AR is only set when withAR is true.
func (m *Materializer) WriteCMakeToolchain(t *target.Spec, set *Set, withAR bool) (string, error) {
	data := struct {
		SystemName      string
		Processor       string
		CC              string
		CXX             string
		Ranlib          string
		AR              string
		InstallNameTool string
		Dlltool         string
	}{
		SystemName: cmakeSystemNames[t.ZigOS],
		Processor:  cmakeProcessor(t),
		CC:         filepath.ToSlash(set.CC),
		CXX:        filepath.ToSlash(set.CXX),
		Ranlib:     filepath.ToSlash(set.Ranlib),
	}
	if withAR {
		ar := set.AR
		if t.IsWindowsMSVC() {
			ar = set.Lib
		}
		data.AR = filepath.ToSlash(ar)
	}
	switch {
	case t.IsApple():
		data.InstallNameTool = filepath.ToSlash(set.InstallNameTool)
	case t.IsWindowsGNU():
		data.Dlltool = filepath.ToSlash(set.Dlltool)
	}

	var buf bytes.Buffer
	tmpl := template.Must(template.New("cmake").Parse(cmakeTemplate))
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	path := filepath.Join(m.CacheDir, "cmake", t.Triple+"-toolchain.cmake")
	if _, err := utils.WriteIfChanged(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
