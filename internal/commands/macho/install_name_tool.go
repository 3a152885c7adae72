// Package macho implements an install_name_tool compatible front end for the load command editor.
package macho

import (
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/zigbuild/pkg/macho"
)

var (
	// ErrNoInputFile is returned when no file to edit was given
	ErrNoInputFile = errors.New("no input file specified")
	// ErrMultipleInputFiles is returned when more than one file to edit was given
	ErrMultipleInputFiles = errors.New("more than one input file specified")
)

// Invocation is a parsed install_name_tool command line
type Invocation struct {
	Ops  []macho.Op
	File string
}

// ParseArgs parses install_name_tool arguments
func ParseArgs(args []string) (*Invocation, error) {
	var inv Invocation

	need := func(i, n int, opt string) error {
		if i+n >= len(args) {
			return fmt.Errorf("missing argument(s) to %s option", opt)
		}
		return nil
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-id":
			if err := need(i, 1, arg); err != nil {
				return nil, err
			}
			inv.Ops = append(inv.Ops, macho.Op{Kind: macho.OpChangeID, New: args[i+1]})
			i++
		case "-change":
			if err := need(i, 2, arg); err != nil {
				return nil, err
			}
			inv.Ops = append(inv.Ops, macho.Op{Kind: macho.OpChangeDependency, Old: args[i+1], New: args[i+2]})
			i += 2
		case "-rpath":
			if err := need(i, 2, arg); err != nil {
				return nil, err
			}
			inv.Ops = append(inv.Ops, macho.Op{Kind: macho.OpChangeRpath, Old: args[i+1], New: args[i+2]})
			i += 2
		case "-add_rpath":
			if err := need(i, 1, arg); err != nil {
				return nil, err
			}
			inv.Ops = append(inv.Ops, macho.Op{Kind: macho.OpAddRpath, New: args[i+1]})
			i++
		case "-delete_rpath":
			if err := need(i, 1, arg); err != nil {
				return nil, err
			}
			inv.Ops = append(inv.Ops, macho.Op{Kind: macho.OpDeleteRpath, Old: args[i+1]})
			i++
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			if inv.File != "" {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleInputFiles, inv.File, arg)
			}
			inv.File = arg
		}
	}

	if inv.File == "" {
		return nil, ErrNoInputFile
	}

	return &inv, nil
}

// InstallNameTool edits the file named in args in place
func InstallNameTool(args []string) error {
	inv, err := ParseArgs(args)
	if err != nil {
		return err
	}
	return inv.Run()
}

// Run applies the parsed edits with a single read and a single write of the file
func (inv *Invocation) Run() error {
	fi, err := os.Stat(inv.File)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", inv.File, err)
	}
	data, err := os.ReadFile(inv.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inv.File, err)
	}

	for _, op := range inv.Ops {
		log.WithField("file", inv.File).Debugf("install_name_tool %s", op)
	}

	out, err := macho.Edit(data, inv.Ops)
	if err != nil {
		return fmt.Errorf("failed to edit %s: %w", inv.File, err)
	}

	if err := os.WriteFile(inv.File, out, fi.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", inv.File, err)
	}
	return nil
}
