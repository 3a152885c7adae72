package toolchain

import (
	"github.com/hashicorp/go-version"
)

// Context resolves zig and rustc at most once per invocation
type Context struct {
	ZigPath      string
	PythonPath   string
	Rustc        string
	RustcVersion string // overrides querying rustc for its version

	zig   *Zig
	rustc *Rustc
}

// Zig returns the located zig toolchain
func (c *Context) Zig() (*Zig, error) {
	if c.zig != nil {
		return c.zig, nil
	}
	z, err := FindZig(c.ZigPath, c.PythonPath)
	if err != nil {
		return nil, err
	}
	c.zig = z
	return z, nil
}

// RustcInfo returns the host rustc. With RustcVersion set rustc is not run and the host is unknown.
func (c *Context) RustcInfo() (*Rustc, error) {
	if c.rustc != nil {
		return c.rustc, nil
	}
	if c.RustcVersion != "" {
		v, err := version.NewVersion(c.RustcVersion)
		if err != nil {
			return nil, err
		}
		c.rustc = &Rustc{Version: v}
		return c.rustc, nil
	}
	r, err := QueryRustc(c.Rustc)
	if err != nil {
		return nil, err
	}
	c.rustc = r
	return r, nil
}
