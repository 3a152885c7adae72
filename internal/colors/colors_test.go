package colors

import (
	"testing"

	"github.com/fatih/color"
)

func TestFaint(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	on, off := true, false
	tests := []struct {
		name  string
		force *bool
		start bool
		want  string
	}{
		{"forced on", &on, true, "\x1b[2m# aarch64-apple-darwin\x1b[0m"},
		{"forced off", &off, false, "# aarch64-apple-darwin"},
		{"nil keeps disabled", nil, true, "# aarch64-apple-darwin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = tt.start
			Init(tt.force)
			if got := Faint().Sprint("# aarch64-apple-darwin"); got != tt.want {
				t.Errorf("Faint().Sprint() = %q, want %q", got, tt.want)
			}
		})
	}
}
