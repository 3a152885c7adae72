package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestUnique(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "Test Unique",
			args: []string{"a", "b", "a", "", "c", "b"},
			want: []string{"a", "b", "c"},
		},
		{
			name: "Test Unique empty",
			args: nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unique(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unique() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommonPrefixSuffix(t *testing.T) {
	type args struct {
		a []string
		b []string
	}
	tests := []struct {
		name       string
		args       args
		wantPrefix int
		wantSuffix int
	}{
		{
			name:       "Test c++ dirs ahead of c dirs",
			args:       args{a: []string{"/zig/include", "/zig/libc"}, b: []string{"/zig/libcxx", "/zig/libcxxabi", "/zig/include", "/zig/libc"}},
			wantPrefix: 0,
			wantSuffix: 2,
		},
		{
			name:       "Test equal",
			args:       args{a: []string{"a", "b"}, b: []string{"a", "b"}},
			wantPrefix: 2,
			wantSuffix: 2,
		},
		{
			name:       "Test disjoint",
			args:       args{a: []string{"a"}, b: []string{"b"}},
			wantPrefix: 0,
			wantSuffix: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommonPrefix(tt.args.a, tt.args.b); got != tt.wantPrefix {
				t.Errorf("CommonPrefix() = %v, want %v", got, tt.wantPrefix)
			}
			if got := CommonSuffix(tt.args.a, tt.args.b); got != tt.wantSuffix {
				t.Errorf("CommonSuffix() = %v, want %v", got, tt.wantSuffix)
			}
		})
	}
}

func TestWriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "file.sh")

	wrote, err := WriteIfChanged(path, []byte("echo one\n"), 0o700)
	if err != nil || !wrote {
		t.Fatalf("WriteIfChanged() = %v, %v", wrote, err)
	}

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	wrote, err = WriteIfChanged(path, []byte("echo one\n"), 0o700)
	if err != nil || wrote {
		t.Fatalf("WriteIfChanged() on identical content = %v, %v", wrote, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.ModTime().Equal(old) {
		t.Errorf("mtime changed to %v, want %v", fi.ModTime(), old)
	}

	wrote, err = WriteIfChanged(path, []byte("echo two\n"), 0o700)
	if err != nil || !wrote {
		t.Fatalf("WriteIfChanged() on new content = %v, %v", wrote, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo two\n" {
		t.Errorf("content = %q", data)
	}
}
