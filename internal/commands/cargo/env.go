package cargo

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// Var is a single environment assignment
type Var struct {
	Key   string
	Value string
}

func (v Var) String() string {
	return v.Key + "=" + v.Value
}

// envSet stages assignments on top of a parent environment without overriding anything
// the parent or an earlier assignment already set.
type envSet struct {
	parent map[string]string
	staged []Var
	index  map[string]int
}

func newEnvSet(environ []string) *envSet {
	e := &envSet{
		parent: make(map[string]string, len(environ)),
		index:  make(map[string]int),
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			e.parent[k] = v
		}
	}
	return e
}

// overlay replaces parent values with the KEY=VALUE pairs in environ
func (e *envSet) overlay(environ []string) {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			e.parent[k] = v
		}
	}
}

func (e *envSet) lookup(key string) (string, bool) {
	if i, ok := e.index[key]; ok {
		return e.staged[i].Value, true
	}
	v, ok := e.parent[key]
	return v, ok
}

func (e *envSet) isSet(keys ...string) bool {
	for _, k := range keys {
		if _, ok := e.lookup(k); ok {
			return true
		}
	}
	return false
}

// setDefault stages key=value unless key is already set. It reports whether it staged.
func (e *envSet) setDefault(key, value string) bool {
	if e.isSet(key) {
		return false
	}
	e.index[key] = len(e.staged)
	e.staged = append(e.staged, Var{Key: key, Value: value})
	return true
}

// prependPath puts dir first on PATH unless it is already listed
func (e *envSet) prependPath(dir string) {
	cur, _ := e.lookup("PATH")
	if slices.Contains(filepath.SplitList(cur), dir) {
		return
	}
	val := dir
	if cur != "" {
		val += string(os.PathListSeparator) + cur
	}
	if i, ok := e.index["PATH"]; ok {
		e.staged[i].Value = val
		return
	}
	e.index["PATH"] = len(e.staged)
	e.staged = append(e.staged, Var{Key: "PATH", Value: val})
}

func (e *envSet) environ() []string {
	out := make([]string, 0, len(e.parent)+len(e.staged))
	for k, v := range e.parent {
		if _, ok := e.index[k]; ok {
			continue
		}
		out = append(out, k+"="+v)
	}
	for _, v := range e.staged {
		out = append(out, v.String())
	}
	return out
}

// applyTo sets cmd.Env to the parent environment plus the staged assignments
func (e *envSet) applyTo(cmd *exec.Cmd) {
	cmd.Env = e.environ()
}

func (e *envSet) String() string {
	var sb strings.Builder
	for _, v := range e.staged {
		fmt.Fprintln(&sb, v)
	}
	return sb.String()
}
