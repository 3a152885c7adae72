// Package config is used to load the configuration
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/blacktop/zigbuild/pkg/toolchain"
	"github.com/caarlos0/env/v8"
	"github.com/spf13/viper"
)

// Config is the configuration struct
type Config struct {
	ZigPath      string `env:"CARGO_ZIGBUILD_ZIG_PATH" mapstructure:"zig-path"`
	PythonPath   string `env:"CARGO_ZIGBUILD_PYTHON_PATH" mapstructure:"python-path"`
	CacheDir     string `env:"CARGO_ZIGBUILD_CACHE_DIR" mapstructure:"cache-dir"`
	RustcVersion string `env:"CARGO_ZIGBUILD_RUSTC_VERSION" mapstructure:"-"`
	Cargo        string `env:"CARGO" mapstructure:"cargo"`
	Rustc        string `env:"RUSTC" mapstructure:"rustc"`
	SDKRoot      string `env:"SDKROOT" mapstructure:"-"`
	Exe          string `env:"CARGO_BIN_EXE_cargo-zigbuild" mapstructure:"-"`
	EnableZigAr  bool   `mapstructure:"enable-zig-ar"`
}

func (c *Config) verify() error {
	if c.PythonPath == "" {
		c.PythonPath = "python3"
	}
	if c.Cargo == "" {
		c.Cargo = "cargo"
	}
	if c.Rustc == "" {
		c.Rustc = "rustc"
	}
	if c.Exe == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("config: failed to locate executable: %v", err)
		}
		c.Exe = exe
	}
	if !filepath.IsAbs(c.Exe) {
		exe, err := filepath.Abs(c.Exe)
		if err != nil {
			return fmt.Errorf("config: failed to resolve %s: %v", c.Exe, err)
		}
		c.Exe = exe
	}
	if c.ZigPath != "" {
		if _, err := os.Stat(c.ZigPath); err != nil {
			if _, lerr := exec.LookPath(c.ZigPath); lerr != nil {
				return fmt.Errorf("config: zig path %s: %v", c.ZigPath, err)
			}
		}
	}
	return nil
}

// LoadConfig loads settings bound through viper (flags, ZIGBUILD_* variables, the config file)
// and lets the CARGO_ZIGBUILD_* environment variables override them.
func LoadConfig() (*Config, error) {
	c := &Config{}

	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}

// Toolchain returns a fresh toolchain context for one invocation
func (c *Config) Toolchain() *toolchain.Context {
	return &toolchain.Context{
		ZigPath:      c.ZigPath,
		PythonPath:   c.PythonPath,
		Rustc:        c.Rustc,
		RustcVersion: c.RustcVersion,
	}
}
