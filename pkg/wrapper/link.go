package wrapper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/internal/utils"
)

// LinkTool makes dst resolve to exe. It tries a symlink, then a hardlink, then a copy, and
// leaves dst alone when it already points at exe.
func LinkTool(exe, dst string) error {
	if linked(exe, dst) {
		return nil
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale %s: %w", dst, err)
	}

	err := os.Symlink(exe, dst)
	if err == nil || (errors.Is(err, fs.ErrExist) && linked(exe, dst)) {
		return nil
	}
	log.WithError(err).Debugf("symlink %s failed, trying a hardlink", dst)

	err = os.Link(exe, dst)
	if err == nil || (errors.Is(err, fs.ErrExist) && linked(exe, dst)) {
		return nil
	}
	log.WithError(err).Debugf("hardlink %s failed, copying", dst)

	if err := utils.Cp(exe, dst); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", exe, dst, err)
	}
	return nil
}

func linked(exe, dst string) bool {
	fi, err := os.Lstat(dst)
	if err != nil {
		return false
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(dst)
		return err == nil && target == exe
	}
	efi, err := os.Stat(exe)
	if err != nil {
		return false
	}
	return os.SameFile(fi, efi)
}
