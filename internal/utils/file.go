package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Cp copies a file from src to dest
func Cp(src, dst string) error {
	from, err := os.Open(src)
	if err != nil {
		return err
	}
	defer from.Close()

	fi, err := from.Stat()
	if err != nil {
		return err
	}

	to, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	defer to.Close()

	_, err = io.Copy(to, from)

	return err
}

// WriteIfChanged writes data to path unless the file already holds exactly data,
// so an unchanged file keeps its mtime. It reports whether a write happened.
func WriteIfChanged(path string, data []byte, perm os.FileMode) (bool, error) {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	// WriteFile leaves the mode of an existing file alone
	if err := os.Chmod(path, perm); err != nil {
		return false, errors.Wrapf(err, "failed to chmod %s", path)
	}
	return true, nil
}
