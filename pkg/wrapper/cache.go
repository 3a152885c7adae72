package wrapper

import (
	"os"
	"path/filepath"
)

// CacheDir returns override when set, otherwise the per-version directory under the user
// cache directory (or the working directory when there is none).
func CacheDir(override, appVersion string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	if appVersion == "" {
		appVersion = "dev"
	}
	base, err := os.UserCacheDir()
	if err != nil {
		if base, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(base, "cargo-zigbuild", appVersion), nil
}
