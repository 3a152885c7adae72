package cargo

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/blacktop/zigbuild/pkg/toolchain"
)

const rustcVerbose = `rustc 1.82.0 (f6e511eec 2024-10-15)
binary: rustc
host: x86_64-unknown-linux-gnu
release: 1.82.0
`

const cSearch = `clang version 18.1.6
#include "..." search starts here:
#include <...> search starts here:
 /zig/lib/include
 /zig/lib/libc/include/x86_64-linux-gnu
 /zig/lib/libc/include/generic-glibc
End of search list.
`

const cxxSearch = `clang version 18.1.6
#include <...> search starts here:
 /zig/lib/libcxx/include
 /zig/lib/libcxxabi/include
 /zig/lib/include
 /zig/lib/libc/include/x86_64-linux-gnu
 /zig/lib/libc/include/generic-glibc
End of search list.
`

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestApplier(t *testing.T) *Applier {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses shell scripts as fake toolchains")
	}
	dir := t.TempDir()
	tc := &toolchain.Context{
		ZigPath: writeScript(t, dir, "zig", "echo 0.13.0\n"),
		Rustc:   writeScript(t, dir, "rustc", "cat <<'EOF'\n"+rustcVerbose+"EOF\n"),
	}
	a := NewApplier(tc, writeScript(t, dir, "zigbuild", "exit 0\n"), filepath.Join(dir, "cache"), "")
	a.probe = func(cc, lang string, _ []string) (string, error) {
		if lang == "c++" {
			return cxxSearch, nil
		}
		return cSearch, nil
	}
	return a
}

func toMap(vars []Var) map[string]string {
	m := make(map[string]string, len(vars))
	for _, v := range vars {
		m[v.Key] = v.Value
	}
	return m
}

func TestEnvironment(t *testing.T) {
	a := newTestApplier(t)

	vars, err := a.Environment(&Options{
		Targets:     []string{"aarch64-unknown-linux-gnu.2.17"},
		EnableZigAr: true,
		Env:         []string{"PATH=/usr/bin", "CXX_aarch64_unknown_linux_gnu=/usr/bin/my-c++"},
	})
	if err != nil {
		t.Fatalf("Environment() error = %v", err)
	}
	env := toMap(vars)

	cc := env["CC_aarch64_unknown_linux_gnu"]
	if !strings.HasPrefix(filepath.Base(cc), "zigcc-aarch64-unknown-linux-gnu-") {
		t.Errorf("CC_aarch64_unknown_linux_gnu = %s", cc)
	}
	if env["CARGO_TARGET_AARCH64_UNKNOWN_LINUX_GNU_LINKER"] != cc {
		t.Errorf("linker = %s, want %s", env["CARGO_TARGET_AARCH64_UNKNOWN_LINUX_GNU_LINKER"], cc)
	}
	if _, ok := env["CXX_aarch64_unknown_linux_gnu"]; ok {
		t.Error("CXX_aarch64_unknown_linux_gnu was overridden")
	}
	if filepath.Base(env["RANLIB_aarch64_unknown_linux_gnu"]) != "ranlib" {
		t.Errorf("RANLIB = %s", env["RANLIB_aarch64_unknown_linux_gnu"])
	}
	if filepath.Base(env["AR_aarch64_unknown_linux_gnu"]) != "ar" {
		t.Errorf("AR = %s", env["AR_aarch64_unknown_linux_gnu"])
	}
	if env["CARGO_ZIGBUILD_RUSTC_VERSION"] != "1.82.0" {
		t.Errorf("CARGO_ZIGBUILD_RUSTC_VERSION = %s", env["CARGO_ZIGBUILD_RUSTC_VERSION"])
	}
	if !strings.HasSuffix(env["CMAKE_TOOLCHAIN_FILE_aarch64_unknown_linux_gnu"], "aarch64-unknown-linux-gnu-toolchain.cmake") {
		t.Errorf("CMAKE_TOOLCHAIN_FILE = %s", env["CMAKE_TOOLCHAIN_FILE_aarch64_unknown_linux_gnu"])
	}

	wantBindgen := "-nostdinc -cxx-isystem /zig/lib/libcxx/include -cxx-isystem /zig/lib/libcxxabi/include " +
		"-isystem /zig/lib/include -isystem /zig/lib/libc/include/x86_64-linux-gnu -isystem /zig/lib/libc/include/generic-glibc " +
		"-D__GLIBC_MINOR__=17"
	if env["BINDGEN_EXTRA_CLANG_ARGS_aarch64_unknown_linux_gnu"] != wantBindgen {
		t.Errorf("BINDGEN_EXTRA_CLANG_ARGS_aarch64_unknown_linux_gnu = %s", env["BINDGEN_EXTRA_CLANG_ARGS_aarch64_unknown_linux_gnu"])
	}
	if env["BINDGEN_EXTRA_CLANG_ARGS"] != wantBindgen {
		t.Errorf("BINDGEN_EXTRA_CLANG_ARGS = %s", env["BINDGEN_EXTRA_CLANG_ARGS"])
	}
	if _, ok := env["CARGO_TARGET_APPLIES_TO_HOST"]; ok {
		t.Error("CARGO_TARGET_APPLIES_TO_HOST set for a non host target")
	}
}

func TestEnvironmentMultipleTargets(t *testing.T) {
	a := newTestApplier(t)

	vars, err := a.Environment(&Options{
		Targets: []string{"x86_64-pc-windows-gnu", "wasm32-wasip1", "x86_64-unknown-linux-gnu", "x86_64-unknown-linux-gnu.2.17"},
		Env:     []string{"CMAKE_TOOLCHAIN_FILE=/mine.cmake"},
	})
	if err != nil {
		t.Fatalf("Environment() error = %v", err)
	}
	env := toMap(vars)

	if env["WINAPI_NO_BUNDLED_LIBRARIES"] != "1" {
		t.Error("WINAPI_NO_BUNDLED_LIBRARIES not set for windows-gnu")
	}
	if _, ok := env["CARGO_TARGET_WASM32_WASIP1_LINKER"]; ok {
		t.Error("linker set for wasm")
	}
	if _, ok := env["CC_wasm32_wasip1"]; !ok {
		t.Error("CC not set for wasm")
	}
	if _, ok := env["AR_x86_64_pc_windows_gnu"]; ok {
		t.Error("AR set without EnableZigAr")
	}
	for k := range env {
		if strings.HasPrefix(k, "CMAKE_TOOLCHAIN_FILE") {
			t.Errorf("%s set although CMAKE_TOOLCHAIN_FILE was", k)
		}
	}
	if _, ok := env["BINDGEN_EXTRA_CLANG_ARGS"]; ok {
		t.Error("global BINDGEN_EXTRA_CLANG_ARGS set for several targets")
	}
	if env["CARGO_UNSTABLE_TARGET_APPLIES_TO_HOST"] != "true" || env["CARGO_TARGET_APPLIES_TO_HOST"] != "false" {
		t.Error("host target with an ABI suffix should separate host and target config")
	}
	if !strings.Contains(env["CC_x86_64_unknown_linux_gnu"], "zigcc-x86_64-unknown-linux-gnu-") {
		t.Errorf("CC_x86_64_unknown_linux_gnu = %s", env["CC_x86_64_unknown_linux_gnu"])
	}
}

func TestEnvironmentHostOnly(t *testing.T) {
	a := newTestApplier(t)

	vars, err := a.Environment(&Options{Targets: []string{"x86_64-unknown-linux-gnu"}})
	if err != nil {
		t.Fatalf("Environment() error = %v", err)
	}
	for _, v := range vars {
		if v.Key != "CARGO_ZIGBUILD_RUSTC_VERSION" {
			t.Errorf("unexpected %s for the host target", v)
		}
	}
}

func TestApply(t *testing.T) {
	a := newTestApplier(t)

	cmd := exec.Command("cargo", "build")
	if err := a.Apply(cmd, &Options{
		Targets: []string{"aarch64-unknown-linux-musl"},
		Env:     []string{"HOME=/home/user"},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	joined := strings.Join(cmd.Env, "\n")
	for _, want := range []string{"HOME=/home/user", "CC_aarch64_unknown_linux_musl=", "CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER="} {
		if !strings.Contains(joined, want) {
			t.Errorf("cmd.Env missing %s", want)
		}
	}
}

func TestApplyKeepsCommandEnv(t *testing.T) {
	a := newTestApplier(t)

	cmd := exec.Command("cargo", "build")
	cmd.Env = []string{"CC_aarch64_unknown_linux_musl=/mine/cc", "HOME=/from/cmd"}
	if err := a.Apply(cmd, &Options{
		Targets: []string{"aarch64-unknown-linux-musl"},
		Env:     []string{"HOME=/home/user", "CXX_aarch64_unknown_linux_musl=/parent/c++"},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got := make(map[string][]string)
	for _, kv := range cmd.Env {
		k, v, _ := strings.Cut(kv, "=")
		got[k] = append(got[k], v)
	}
	for key, want := range map[string]string{
		"CC_aarch64_unknown_linux_musl":  "/mine/cc",
		"CXX_aarch64_unknown_linux_musl": "/parent/c++",
		"HOME":                           "/from/cmd",
	} {
		if !reflect.DeepEqual(got[key], []string{want}) {
			t.Errorf("%s = %v, want [%s]", key, got[key], want)
		}
	}
	if len(got["CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER"]) != 1 {
		t.Error("linker not staged next to the command's own variables")
	}
}

func TestEnvironmentToolPath(t *testing.T) {
	tests := []struct {
		raw      string
		wantPath bool
	}{
		{"aarch64-apple-darwin", true},
		{"x86_64-pc-windows-gnu", true},
		{"aarch64-unknown-linux-musl", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := newTestApplier(t)
			vars, err := a.Environment(&Options{
				Targets: []string{tt.raw},
				Env:     []string{"PATH=/usr/bin"},
			})
			if err != nil {
				t.Fatalf("Environment() error = %v", err)
			}
			path, ok := toMap(vars)["PATH"]
			if ok != tt.wantPath {
				t.Fatalf("PATH staged = %v, want %v", ok, tt.wantPath)
			}
			if !tt.wantPath {
				return
			}
			dirs := filepath.SplitList(path)
			if len(dirs) != 2 || dirs[1] != "/usr/bin" {
				t.Fatalf("PATH = %s, want the tool dir in front of /usr/bin", path)
			}
			for _, tool := range []string{"install_name_tool", "dlltool"} {
				if _, err := os.Lstat(filepath.Join(dirs[0], tool)); err != nil {
					t.Errorf("%s not on PATH: %v", tool, err)
				}
			}
			if _, err := os.Lstat(filepath.Join(dirs[0], "ar")); err == nil {
				t.Error("ar must not be put on PATH")
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantArgs []string
		wantOpts *Options
	}{
		{
			name:     "suffix stripped",
			args:     []string{"--release", "--target", "x86_64-unknown-linux-gnu.2.17", "--enable-zig-ar", "-p", "foo"},
			wantArgs: []string{"--release", "--target", "x86_64-unknown-linux-gnu", "-p", "foo"},
			wantOpts: &Options{Targets: []string{"x86_64-unknown-linux-gnu.2.17"}, Release: true, EnableZigAr: true},
		},
		{
			name:     "equals forms",
			args:     []string{"--target=aarch64-apple-darwin", "--manifest-path=sub/Cargo.toml", "--profile", "dist", "--target-dir", "out"},
			wantArgs: []string{"--target", "aarch64-apple-darwin", "--manifest-path=sub/Cargo.toml", "--profile", "dist", "--target-dir", "out"},
			wantOpts: &Options{Targets: []string{"aarch64-apple-darwin"}, ManifestPath: "sub/Cargo.toml", Profile: "dist", TargetDir: "out"},
		},
		{
			name:     "stops at double dash",
			args:     []string{"--target", "x86_64-unknown-linux-musl", "--", "--target", "x"},
			wantArgs: []string{"--target", "x86_64-unknown-linux-musl", "--", "--target", "x"},
			wantOpts: &Options{Targets: []string{"x86_64-unknown-linux-musl"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotArgs, gotOpts := ParseArgs(tt.args)
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("ParseArgs() args = %v, want %v", gotArgs, tt.wantArgs)
			}
			if !reflect.DeepEqual(gotOpts, tt.wantOpts) {
				t.Errorf("ParseArgs() opts = %+v, want %+v", gotOpts, tt.wantOpts)
			}
		})
	}
}

func TestParseSearchDirs(t *testing.T) {
	want := []string{"/zig/lib/include", "/zig/lib/libc/include/x86_64-linux-gnu", "/zig/lib/libc/include/generic-glibc"}
	if got := parseSearchDirs(cSearch); !reflect.DeepEqual(got, want) {
		t.Errorf("parseSearchDirs() = %v, want %v", got, want)
	}
	mac := "#include <...> search starts here:\n /sdk/usr/include\n /sdk/System/Library/Frameworks (framework directory)\nEnd of search list.\n"
	if got := parseSearchDirs(mac); !reflect.DeepEqual(got, []string{"/sdk/usr/include"}) {
		t.Errorf("parseSearchDirs() = %v", got)
	}
}
