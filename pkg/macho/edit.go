// Package macho edits the install name, dependency and runpath load commands of Mach-O files.
package macho

import (
	"fmt"

	"github.com/blacktop/go-macho/types"
)

// OpKind is the kind of an edit
type OpKind int

const (
	OpChangeID OpKind = iota
	OpChangeDependency
	OpAddRpath
	OpDeleteRpath
	OpChangeRpath
)

// Op is a single load command edit
type Op struct {
	Kind OpKind
	Old  string
	New  string
}

func (o Op) String() string {
	switch o.Kind {
	case OpChangeID:
		return fmt.Sprintf("-id %s", o.New)
	case OpChangeDependency:
		return fmt.Sprintf("-change %s %s", o.Old, o.New)
	case OpAddRpath:
		return fmt.Sprintf("-add_rpath %s", o.New)
	case OpDeleteRpath:
		return fmt.Sprintf("-delete_rpath %s", o.Old)
	case OpChangeRpath:
		return fmt.Sprintf("-rpath %s %s", o.Old, o.New)
	}
	return fmt.Sprintf("unknown op %d", o.Kind)
}

// Apply runs the edit against img
func (o Op) Apply(img *Image) error {
	switch o.Kind {
	case OpChangeID:
		return ChangeID(img, o.New)
	case OpChangeDependency:
		return ChangeDependency(img, o.Old, o.New)
	case OpAddRpath:
		return AddRpath(img, o.New)
	case OpDeleteRpath:
		return DeleteRpath(img, o.Old)
	case OpChangeRpath:
		return ChangeRpath(img, o.Old, o.New)
	}
	return fmt.Errorf("unknown op %d", o.Kind)
}

func (img *Image) replaceCommand(old LoadCommand, cmd []byte) error {
	img.removeCommand(old.Offset, old.Size)
	if err := img.insertCommand(old.Offset, cmd); err != nil {
		return err
	}
	return img.parseCommands()
}

// ChangeID sets the LC_ID_DYLIB install name
func ChangeID(img *Image, name string) error {
	for _, lc := range img.Commands {
		if lc.Cmd != types.LC_ID_DYLIB {
			continue
		}
		cmd, err := img.buildDylibCommand(lc, name)
		if err != nil {
			return err
		}
		return img.replaceCommand(lc, cmd)
	}
	return fmt.Errorf("%w: LC_ID_DYLIB", ErrLoadCommandNotFound)
}

// ChangeDependency renames every dylib dependency named old
func ChangeDependency(img *Image, old, name string) error {
	found := false
	for i := 0; i < len(img.Commands); i++ {
		lc := img.Commands[i]
		if !isDylibCommand(lc.Cmd) || lc.Cmd == types.LC_ID_DYLIB || lc.Name != old {
			continue
		}
		cmd, err := img.buildDylibCommand(lc, name)
		if err != nil {
			return err
		}
		if err := img.replaceCommand(lc, cmd); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return fmt.Errorf("%w: dylib %s", ErrLoadCommandNotFound, old)
	}
	return nil
}

// AddRpath appends an LC_RPATH after the last load command
func AddRpath(img *Image, path string) error {
	if err := img.insertCommand(img.commandsEnd(), img.buildRpathCommand(path)); err != nil {
		return err
	}
	return img.parseCommands()
}

func (img *Image) findRpath(path string) (LoadCommand, error) {
	for _, lc := range img.Commands {
		if lc.Cmd == types.LC_RPATH && lc.Name == path {
			return lc, nil
		}
	}
	return LoadCommand{}, fmt.Errorf("%w: rpath %s", ErrLoadCommandNotFound, path)
}

// DeleteRpath removes the LC_RPATH for path
func DeleteRpath(img *Image, path string) error {
	lc, err := img.findRpath(path)
	if err != nil {
		return err
	}
	img.removeCommand(lc.Offset, lc.Size)
	return img.parseCommands()
}

// ChangeRpath replaces the LC_RPATH for old with one for path
func ChangeRpath(img *Image, old, path string) error {
	lc, err := img.findRpath(old)
	if err != nil {
		return err
	}
	return img.replaceCommand(lc, img.buildRpathCommand(path))
}

// Edit applies ops in order to a thin or fat Mach-O and returns the edited bytes.
// The load command table is parsed again before every op.
func Edit(data []byte, ops []Op) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	if IsFat(out) {
		return out, editFat(out, ops)
	}
	return out, editThin(out, ops)
}

func editThin(data []byte, ops []Op) error {
	for _, op := range ops {
		img, err := NewImage(data)
		if err != nil {
			return err
		}
		if err := op.Apply(img); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
