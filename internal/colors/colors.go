// Package colors provides color output with TTY-aware defaults.
//
// Colors are disabled when stdout is not a terminal. Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected color setting when forceColor is non-nil
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Faint is used for comment lines in `env` output
func Faint() *color.Color { return color.New(color.Faint) }
