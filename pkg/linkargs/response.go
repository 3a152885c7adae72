package linkargs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ErrResponseFileEncoding is returned when an MSVC response file is not UTF-16LE with a BOM
var ErrResponseFileEncoding = errors.New("linker response file is not UTF-16LE")

var utf16BOM = []byte{0xff, 0xfe}

// ResponseFile returns the path of a rustc linker response file argument
func ResponseFile(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "@") || !strings.HasSuffix(arg, "linker-arguments") {
		return "", false
	}
	return arg[1:], true
}

// RewriteResponseFile filters the arguments stored in a response file and writes them back
// using the file's encoding and line ending.
func RewriteResponseFile(path string, ctx *Context) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat response file %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read response file %s: %w", path, err)
	}

	utf16 := ctx.Target != nil && ctx.Target.IsWindowsMSVC()
	if utf16 {
		if !bytes.HasPrefix(data, utf16BOM) {
			return fmt.Errorf("%w: %s", ErrResponseFileEncoding, path)
		}
		data, err = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrResponseFileEncoding, path, err)
		}
	}

	out := []byte(rewriteLines(string(data), ctx))

	if utf16 {
		out, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes(out)
		if err != nil {
			return fmt.Errorf("failed to encode response file %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, out, fi.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write response file %s: %w", path, err)
	}
	return nil
}

func rewriteLines(text string, ctx *Context) string {
	sep := "\n"
	if strings.Contains(text, "\r\n") {
		sep = "\r\n"
	}
	lines := strings.Split(text, sep)
	trailing := len(lines) > 0 && lines[len(lines)-1] == ""
	if trailing {
		lines = lines[:len(lines)-1]
	}
	out := filterLines(lines, ctx)
	if trailing {
		out = append(out, "")
	}
	return strings.Join(out, sep)
}
