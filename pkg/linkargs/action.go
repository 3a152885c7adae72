package linkargs

// Kind of an Action
type Kind int

const (
	// KeepArgs replaces the argument with Args (possibly the argument itself)
	KeepArgs Kind = iota
	// Drop removes the argument
	Drop
	// DropWithNext removes the argument and the one following it
	DropWithNext
)

// Action is the outcome of filtering a single argument
type Action struct {
	Kind Kind
	Args []string
}

// Keep returns an action that emits args in place of the filtered argument
func Keep(args ...string) *Action {
	return &Action{Kind: KeepArgs, Args: args}
}

var (
	dropAction         = &Action{Kind: Drop}
	dropWithNextAction = &Action{Kind: DropWithNext}
)

// fold applies f to every argument and assembles the surviving ones.
func fold(args []string, f func(string) *Action) []string {
	out := make([]string, 0, len(args))
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		act := f(arg)
		switch act.Kind {
		case KeepArgs:
			out = append(out, act.Args...)
		case DropWithNext:
			skip = true
		}
	}
	return out
}
