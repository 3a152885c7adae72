package linkargs

import (
	"strings"

	"github.com/blacktop/zigbuild/pkg/target"
	"github.com/hashicorp/go-version"
)

// Context carries what the rules need to know about the link being performed
type Context struct {
	Target *target.Spec
	Rustc  *version.Version // nil when unknown
	Zig    *version.Version // nil when unknown
}

// Rule is a single entry of the rule table. Version constraints only match when the
// corresponding version is known.
type Rule struct {
	Name    string
	Zig     version.Constraints
	Rustc   version.Constraints
	Applies func(*target.Spec) bool
	Apply   func(arg string, ctx *Context) *Action
}

func (r *Rule) matches(ctx *Context) bool {
	if r.Zig != nil && !check(r.Zig, ctx.Zig) {
		return false
	}
	if r.Rustc != nil && !check(r.Rustc, ctx.Rustc) {
		return false
	}
	if r.Applies != nil && (ctx.Target == nil || !r.Applies(ctx.Target)) {
		return false
	}
	return true
}

func check(c version.Constraints, v *version.Version) bool {
	if v == nil {
		return false
	}
	return c.Check(v.Core())
}

func mustConstraint(c string) version.Constraints {
	cs, err := version.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

func dropIf(pred func(string) bool) func(string, *Context) *Action {
	return func(arg string, _ *Context) *Action {
		if pred(arg) {
			return dropAction
		}
		return nil
	}
}

func oneOf(values ...string) func(string) bool {
	return func(arg string) bool {
		for _, v := range values {
			if arg == v {
				return true
			}
		}
		return false
	}
}

func isWindowsGNU32(t *target.Spec) bool { return t.IsWindowsGNU() && t.IsX86() }

// Rules is the rule table in priority order; the first rule returning an action wins.
var Rules = []Rule{
	{
		Name: "unwind",
		Apply: func(arg string, _ *Context) *Action {
			if arg == "-lgcc_s" {
				return Keep("-lunwind")
			}
			return nil
		},
	},
	{
		Name: "compiler-builtins",
		Applies: func(t *target.Spec) bool {
			return t.IsARM() || t.IsWindowsGNU()
		},
		Apply: dropIf(func(arg string) bool {
			return strings.Contains(arg, "compiler_builtins-") && strings.HasSuffix(arg, ".rlib")
		}),
	},
	{
		Name:    "windows-gnu-gcc-eh-x86",
		Zig:     mustConstraint(">= 0.14"),
		Applies: isWindowsGNU32,
		Apply:   dropIf(oneOf("-lgcc_eh")),
	},
	{
		Name:    "windows-gnu-gcc-eh",
		Applies: (*target.Spec).IsWindowsGNU,
		Apply: func(arg string, _ *Context) *Action {
			if arg == "-lgcc_eh" {
				return Keep("-lc++")
			}
			return nil
		},
	},
	{
		Name:    "windows-gnu-bdynamic",
		Zig:     mustConstraint(">= 0.11"),
		Applies: (*target.Spec).IsWindowsGNU,
		Apply: func(arg string, _ *Context) *Action {
			if arg == "-Wl,-Bdynamic" {
				return Keep("-Wl,-search_paths_first")
			}
			return nil
		},
	},
	{
		Name:    "windows-gnu-unsupported",
		Applies: (*target.Spec).IsWindowsGNU,
		Apply: dropIf(func(arg string) bool {
			switch arg {
			case "-Wl,--disable-auto-image-base",
				"-Wl,--large-address-aware",
				"-Wl,--dynamicbase",
				"-lwindows",
				"-l:libpthread.a",
				"-lgcc":
				return true
			}
			return strings.HasPrefix(arg, "-Wl,") && strings.HasSuffix(arg, "list.def")
		}),
	},
	{
		Name:    "musl-self-contained",
		Applies: (*target.Spec).IsMusl,
		Apply: dropIf(func(arg string) bool {
			return strings.Contains(arg, "self-contained") && strings.Contains(arg, "crt") && strings.HasSuffix(arg, ".o")
		}),
	},
	{
		Name:    "musl-liblibc",
		Rustc:   mustConstraint("< 1.59"),
		Applies: (*target.Spec).IsMusl,
		Apply: dropIf(func(arg string) bool {
			return strings.Contains(arg, "liblibc-") && strings.HasSuffix(arg, ".rlib")
		}),
	},
	{
		Name:    "musl-libc",
		Applies: (*target.Spec).IsMusl,
		Apply:   dropIf(oneOf("-lc")),
	},
	{
		Name:  "march",
		Apply: rewriteMarch,
	},
	{
		Name:    "apple-exported-symbols",
		Zig:     mustConstraint("< 0.12"),
		Applies: (*target.Spec).IsApple,
		Apply: func(arg string, _ *Context) *Action {
			switch {
			case arg == "-Wl,-exported_symbols_list":
				return dropWithNextAction
			case strings.HasPrefix(arg, "-Wl,-exported_symbols_list,"):
				return dropAction
			}
			return nil
		},
	},
	{
		Name:    "apple-dylib",
		Applies: (*target.Spec).IsApple,
		Apply:   dropIf(oneOf("-Wl,-dylib")),
	},
	{
		Name:    "freebsd-libs",
		Applies: (*target.Spec).IsFreeBSD,
		Apply:   dropIf(oneOf("-lkvm", "-lmemstat", "-lprocstat", "-ldevstat")),
	},
	{
		Name: "gnu-ld-only",
		Applies: func(t *target.Spec) bool {
			return !t.IsWindows()
		},
		Apply: dropIf(oneOf("-Wl,--no-undefined-version", "-Wl,-znostart-stop-gc")),
	},
}

func rewriteMarch(arg string, ctx *Context) *Action {
	if !strings.HasPrefix(arg, "-march=") || ctx.Target == nil {
		return nil
	}
	t := ctx.Target
	switch {
	case t.IsRISCV64():
		return Keep("-march=generic_rv64")
	case t.IsRISCV32():
		return Keep("-march=generic_rv32")
	case t.IsAArch64():
		march := strings.TrimPrefix(arg, "-march=")
		if !strings.HasPrefix(march, "armv8") {
			return nil
		}
		_, feats, _ := strings.Cut(march, "+")
		cpu := "-mcpu=generic"
		if feats != "" {
			cpu += "+" + strings.ReplaceAll(feats, "-", "_")
		}
		if strings.Contains("+"+feats+"+", "+crypto+") {
			return Keep(cpu, "-Xassembler", arg)
		}
		return Keep(cpu)
	case t.CPU != "":
		return dropAction
	}
	return nil
}

// Filter returns the action for a single argument
func Filter(arg string, ctx *Context) *Action {
	for i := range Rules {
		r := &Rules[i]
		if !r.matches(ctx) {
			continue
		}
		if act := r.Apply(arg, ctx); act != nil {
			return act
		}
	}
	return Keep(arg)
}
