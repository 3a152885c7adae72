// Package linkargs rewrites the compiler and linker arguments rustc hands to a C compiler
// into a form zig accepts.
package linkargs

import (
	"slices"
	"strings"
)

const dynamicLookup = "-Wl,-undefined=dynamic_lookup"

// FilterArgs filters a full argument list, rewriting any linker response files in place.
func FilterArgs(args []string, ctx *Context) ([]string, error) {
	var rerr error
	out := fold(args, func(arg string) *Action {
		if path, ok := ResponseFile(arg); ok {
			if err := RewriteResponseFile(path, ctx); err != nil && rerr == nil {
				rerr = err
			}
			return Keep(arg)
		}
		return Filter(arg, ctx)
	})
	if rerr != nil {
		return nil, rerr
	}
	return appendDynamicLookup(args, out), nil
}

func filterLines(lines []string, ctx *Context) []string {
	out := fold(lines, func(arg string) *Action {
		return Filter(arg, ctx)
	})
	return appendDynamicLookup(lines, out)
}

// wantsDynamicLookup reports whether args ask for `-undefined dynamic_lookup` in either spelling
func wantsDynamicLookup(args []string) bool {
	for i, arg := range args {
		switch arg {
		case "-Wl,-undefined,dynamic_lookup", dynamicLookup:
			return true
		case "-undefined", "-Wl,-undefined":
			if i+1 < len(args) && strings.HasSuffix(args[i+1], "dynamic_lookup") {
				return true
			}
		}
	}
	return false
}

func appendDynamicLookup(in, out []string) []string {
	if wantsDynamicLookup(in) && !slices.Contains(out, dynamicLookup) {
		out = append(out, dynamicLookup)
	}
	return out
}
