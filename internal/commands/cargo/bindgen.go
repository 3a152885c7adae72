package cargo

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/blacktop/zigbuild/internal/utils"
)

const (
	searchStart = "#include <...> search starts here:"
	searchEnd   = "End of search list."
)

// probeIncludeDirs runs a compiler wrapper in preprocessor mode and returns its output
func probeIncludeDirs(cc, lang string, environ []string) (string, error) {
	cmd := exec.Command(cc, "-E", "-x", lang, "-", "-v")
	cmd.Env = environ
	cmd.Stdin = strings.NewReader("")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run %s -E -x %s - -v: %w: %s", cc, lang, err, out.String())
	}
	return out.String(), nil
}

// parseSearchDirs extracts the `#include <...>` search list from verbose preprocessor output
func parseSearchDirs(out string) []string {
	var dirs []string
	in := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, searchStart):
			in = true
		case strings.HasPrefix(line, searchEnd):
			in = false
		case in && line != "" && !strings.HasSuffix(line, "(framework directory)"):
			dirs = append(dirs, line)
		}
	}
	return dirs
}

// bindgenArgs builds BINDGEN_EXTRA_CLANG_ARGS from the C and C++ search lists. Directories only
// the C++ list has are passed with -cxx-isystem so C headers never see them.
func bindgenArgs(c, cxx []string) string {
	p := utils.CommonPrefix(c, cxx)
	s := utils.CommonSuffix(c[p:], cxx[p:])
	cxxOnly := cxx[p : len(cxx)-s]

	args := []string{"-nostdinc"}
	for _, dir := range cxxOnly {
		args = append(args, "-cxx-isystem", quoteDir(dir))
	}
	for _, dir := range c {
		args = append(args, "-isystem", quoteDir(dir))
	}
	return strings.Join(args, " ")
}

func quoteDir(dir string) string {
	if strings.ContainsAny(dir, " \t") {
		return `"` + dir + `"`
	}
	return dir
}
