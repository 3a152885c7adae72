package linkargs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/hashicorp/go-version"
	"golang.org/x/text/encoding/unicode"
)

func mustTarget(t *testing.T, raw string, zig *version.Version) *target.Spec {
	t.Helper()
	s, err := target.Parse(raw, zig)
	if err != nil {
		t.Fatalf("target.Parse(%s) error = %v", raw, err)
	}
	return s
}

func TestFilterArgs(t *testing.T) {
	zig13 := version.Must(version.NewVersion("0.13.0"))
	zig14 := version.Must(version.NewVersion("0.14.0"))
	zig11 := version.Must(version.NewVersion("0.11.0"))
	rustc := version.Must(version.NewVersion("1.75.0"))

	type args struct {
		target string
		zig    *version.Version
		in     []string
	}
	tests := []struct {
		name string
		args args
		want []string
	}{
		{
			name: "gcc_s becomes unwind",
			args: args{"x86_64-unknown-linux-gnu", zig13, []string{"-lgcc_s", "-lc"}},
			want: []string{"-lunwind", "-lc"},
		},
		{
			name: "musl drops libc and crt objects",
			args: args{"x86_64-unknown-linux-musl", zig13, []string{
				"/rustlib/x86_64-unknown-linux-musl/lib/self-contained/crt1.o",
				"-lc", "-lm", "-o", "out",
			}},
			want: []string{"-lm", "-o", "out"},
		},
		{
			name: "arm baseline drops march",
			args: args{"arm-unknown-linux-gnueabihf", zig13, []string{"-march=armv6", "main.o"}},
			want: []string{"main.o"},
		},
		{
			name: "arm drops compiler builtins",
			args: args{"arm-unknown-linux-gnueabihf", zig13, []string{"/deps/libcompiler_builtins-9a1b.rlib", "main.o"}},
			want: []string{"main.o"},
		},
		{
			name: "riscv march",
			args: args{"riscv64gc-unknown-linux-gnu", zig13, []string{"-march=rv64gc"}},
			want: []string{"-march=generic_rv64"},
		},
		{
			name: "aarch64 march becomes mcpu",
			args: args{"aarch64-unknown-linux-gnu", zig13, []string{"-march=armv8-a+lse+no-outline-atomics"}},
			want: []string{"-mcpu=generic+lse+no_outline_atomics"},
		},
		{
			name: "aarch64 crypto keeps assembler flag",
			args: args{"aarch64-unknown-linux-gnu", zig13, []string{"-march=armv8-a+crypto"}},
			want: []string{"-mcpu=generic+crypto", "-Xassembler", "-march=armv8-a+crypto"},
		},
		{
			name: "x86_64 without baseline keeps march",
			args: args{"x86_64-unknown-linux-gnu", zig13, []string{"-march=x86-64-v3"}},
			want: []string{"-march=x86-64-v3"},
		},
		{
			name: "windows gnu",
			args: args{"x86_64-pc-windows-gnu", zig13, []string{
				"-lgcc_eh", "-Wl,--disable-auto-image-base", "-Wl,--large-address-aware",
				"-Wl,--dynamicbase", "-Wl,C:\\tmp\\list.def", "-lwindows", "-l:libpthread.a",
				"-lgcc", "-Wl,-Bdynamic", "-lkernel32",
			}},
			want: []string{"-lc++", "-Wl,-search_paths_first", "-lkernel32"},
		},
		{
			name: "windows gnu x86 drops gcc_eh on zig 0.14",
			args: args{"i686-pc-windows-gnu", zig14, []string{"-lgcc_eh"}},
			want: []string{},
		},
		{
			name: "windows gnu x86 maps gcc_eh before zig 0.14",
			args: args{"i686-pc-windows-gnu", zig13, []string{"-lgcc_eh"}},
			want: []string{"-lc++"},
		},
		{
			name: "apple exported symbols on zig 0.11",
			args: args{"aarch64-apple-darwin", zig11, []string{
				"-Wl,-exported_symbols_list", "-Wl,/tmp/list", "-Wl,-exported_symbols_list,/tmp/list2", "-Wl,-dylib", "lib.o",
			}},
			want: []string{"lib.o"},
		},
		{
			name: "apple exported symbols kept on zig 0.13",
			args: args{"aarch64-apple-darwin", zig13, []string{"-Wl,-exported_symbols_list,/tmp/list"}},
			want: []string{"-Wl,-exported_symbols_list,/tmp/list"},
		},
		{
			name: "freebsd system libs",
			args: args{"x86_64-unknown-freebsd", zig13, []string{"-lkvm", "-lmemstat", "-lprocstat", "-ldevstat", "-lutil"}},
			want: []string{"-lutil"},
		},
		{
			name: "dynamic lookup appended once",
			args: args{"x86_64-apple-darwin", zig13, []string{"-undefined", "dynamic_lookup"}},
			want: []string{"-undefined", "dynamic_lookup", "-Wl,-undefined=dynamic_lookup"},
		},
		{
			name: "dynamic lookup already present",
			args: args{"x86_64-apple-darwin", zig13, []string{"-Wl,-undefined=dynamic_lookup"}},
			want: []string{"-Wl,-undefined=dynamic_lookup"},
		},
		{
			name: "gnu ld only flags",
			args: args{"x86_64-unknown-linux-gnu", zig13, []string{"-Wl,--no-undefined-version", "-Wl,-znostart-stop-gc", "-Wl,--as-needed"}},
			want: []string{"-Wl,--as-needed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{
				Target: mustTarget(t, tt.args.target, tt.args.zig),
				Rustc:  rustc,
				Zig:    tt.args.zig,
			}
			got, err := FilterArgs(tt.args.in, ctx)
			if err != nil {
				t.Fatalf("FilterArgs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterMuslLiblibc(t *testing.T) {
	arg := "/deps/liblibc-1234.rlib"
	old := &Context{
		Target: mustTarget(t, "x86_64-unknown-linux-musl", nil),
		Rustc:  version.Must(version.NewVersion("1.58.1")),
	}
	if act := Filter(arg, old); act.Kind != Drop {
		t.Errorf("Filter() kind = %v, want Drop for rustc 1.58", act.Kind)
	}
	cur := &Context{
		Target: old.Target,
		Rustc:  version.Must(version.NewVersion("1.59.0")),
	}
	if act := Filter(arg, cur); act.Kind != KeepArgs {
		t.Errorf("Filter() kind = %v, want KeepArgs for rustc 1.59", act.Kind)
	}
}

func TestRewriteResponseFile(t *testing.T) {
	dir := t.TempDir()
	ctx := &Context{Target: mustTarget(t, "x86_64-unknown-linux-musl", nil)}

	path := filepath.Join(dir, "linker-arguments")
	if err := os.WriteFile(path, []byte("-lc\r\n-lgcc_s\r\n-undefined\r\ndynamic_lookup\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FilterArgs([]string{"@" + path, "-lc"}, ctx)
	if err != nil {
		t.Fatalf("FilterArgs() error = %v", err)
	}
	if want := []string{"@" + path}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilterArgs() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "-lunwind\r\n-undefined\r\ndynamic_lookup\r\n-Wl,-undefined=dynamic_lookup\r\n"
	if string(data) != want {
		t.Errorf("response file = %q, want %q", data, want)
	}
}

func TestRewriteResponseFileUTF16(t *testing.T) {
	dir := t.TempDir()
	ctx := &Context{Target: mustTarget(t, "x86_64-pc-windows-msvc", nil)}

	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	in, err := enc.Bytes([]byte("kernel32.lib\n-lgcc_s\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "linker-arguments")
	if err := os.WriteFile(path, in, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RewriteResponseFile(path, ctx); err != nil {
		t.Fatalf("RewriteResponseFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, utf16BOM) {
		t.Fatalf("response file lost its BOM: % x", data[:2])
	}
	text, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "kernel32.lib\n-lunwind\n" {
		t.Errorf("response file = %q", text)
	}

	if err := os.WriteFile(path, []byte("kernel32.lib\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RewriteResponseFile(path, ctx); !errors.Is(err, ErrResponseFileEncoding) {
		t.Errorf("RewriteResponseFile() error = %v, want ErrResponseFileEncoding", err)
	}
}
