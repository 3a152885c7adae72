package macho

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blacktop/go-macho/types"
)

var (
	// ErrNotMachO is returned for data that does not start with a Mach-O magic
	ErrNotMachO = errors.New("not a Mach-O file")
	// ErrLoadCommandNotFound is returned when an edit names a load command the image does not have
	ErrLoadCommandNotFound = errors.New("load command not found")
	// ErrNoSpace is returned when the padding after the load commands is too small for an insert
	ErrNoSpace = errors.New("not enough padding after load commands")
)

// LoadCommand is the location of a single load command within an image
type LoadCommand struct {
	Cmd    types.LoadCmd
	Offset int
	Size   int
	Name   string // dylib name or rpath, empty for other commands
}

// Image is a single architecture Mach-O held in memory
type Image struct {
	Data      []byte
	Header    types.FileHeader
	ByteOrder binary.ByteOrder
	Commands  []LoadCommand
}

// NewImage parses the header and load command table of data. The image edits data in place.
func NewImage(data []byte) (*Image, error) {
	if len(data) < types.FileHeaderSize32 {
		return nil, ErrNotMachO
	}

	img := &Image{Data: data}

	switch types.Magic(binary.LittleEndian.Uint32(data)) {
	case types.Magic32, types.Magic64:
		img.ByteOrder = binary.LittleEndian
	default:
		switch types.Magic(binary.BigEndian.Uint32(data)) {
		case types.Magic32, types.Magic64:
			img.ByteOrder = binary.BigEndian
		default:
			return nil, ErrNotMachO
		}
	}

	if err := binary.Read(bytes.NewReader(data), img.ByteOrder, &img.Header); err != nil {
		return nil, fmt.Errorf("failed to read mach-o header: %w", err)
	}
	if err := img.parseCommands(); err != nil {
		return nil, err
	}

	return img, nil
}

// Is64 reports whether the image uses 64-bit pointers
func (img *Image) Is64() bool {
	return img.Header.Magic == types.Magic64
}

func (img *Image) headerSize() int {
	if img.Is64() {
		return types.FileHeaderSize64
	}
	return types.FileHeaderSize32
}

// commandsEnd is the offset one past the last load command
func (img *Image) commandsEnd() int {
	return img.headerSize() + int(img.Header.SizeCommands)
}

func (img *Image) align(sz int) int {
	a := 4
	if img.Is64() {
		a = 8
	}
	if sz%a != 0 {
		sz += a - sz%a
	}
	return sz
}

func (img *Image) parseCommands() error {
	img.Commands = img.Commands[:0]

	end := img.commandsEnd()
	if end > len(img.Data) {
		return fmt.Errorf("load commands extend past end of file (%d > %d)", end, len(img.Data))
	}

	off := img.headerSize()
	for i := uint32(0); i < img.Header.NCommands; i++ {
		if off+8 > end {
			return fmt.Errorf("load command %d at %#x is truncated", i, off)
		}
		cmd := types.LoadCmd(img.ByteOrder.Uint32(img.Data[off:]))
		size := int(img.ByteOrder.Uint32(img.Data[off+4:]))
		if size < 8 || off+size > end {
			return fmt.Errorf("load command %d (%s) at %#x has invalid size %d", i, cmd, off, size)
		}
		lc := LoadCommand{Cmd: cmd, Offset: off, Size: size}
		switch {
		case cmd == types.LC_RPATH:
			lc.Name = img.stringAt(off, size, img.ByteOrder.Uint32(img.Data[off+8:]))
		case isDylibCommand(cmd):
			lc.Name = img.stringAt(off, size, img.ByteOrder.Uint32(img.Data[off+8:]))
		}
		img.Commands = append(img.Commands, lc)
		off += size
	}

	return nil
}

func (img *Image) stringAt(off, size int, strOff uint32) string {
	if int(strOff) >= size {
		return ""
	}
	b := img.Data[off+int(strOff) : off+size]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (img *Image) putHeader() {
	img.ByteOrder.PutUint32(img.Data[16:], img.Header.NCommands)
	img.ByteOrder.PutUint32(img.Data[20:], img.Header.SizeCommands)
}

// removeCommand deletes the command at off and zero fills the freed space at the end of the
// command area so nothing after it moves.
func (img *Image) removeCommand(off, size int) {
	end := img.commandsEnd()
	copy(img.Data[off:], img.Data[off+size:end])
	clear(img.Data[end-size : end])

	img.Header.NCommands--
	img.Header.SizeCommands -= uint32(size)
	img.putHeader()
}

// insertCommand places cmd at off, consuming an equal amount of the zero padding that follows
// the command area.
func (img *Image) insertCommand(off int, cmd []byte) error {
	end := img.commandsEnd()
	if end+len(cmd) > len(img.Data) {
		return fmt.Errorf("%w: need %d bytes", ErrNoSpace, len(cmd))
	}
	for _, b := range img.Data[end : end+len(cmd)] {
		if b != 0 {
			return fmt.Errorf("%w: need %d bytes", ErrNoSpace, len(cmd))
		}
	}

	copy(img.Data[off+len(cmd):end+len(cmd)], img.Data[off:end])
	copy(img.Data[off:], cmd)

	img.Header.NCommands++
	img.Header.SizeCommands += uint32(len(cmd))
	img.putHeader()

	return nil
}

func (img *Image) buildRpathCommand(path string) []byte {
	hdr := binary.Size(types.RpathCmd{})
	size := img.align(hdr + len(path) + 1)

	var buf bytes.Buffer
	binary.Write(&buf, img.ByteOrder, types.RpathCmd{
		LoadCmd:    types.LC_RPATH,
		Len:        uint32(size),
		PathOffset: uint32(hdr),
	})
	buf.WriteString(path)
	buf.Write(make([]byte, size-buf.Len()))

	return buf.Bytes()
}

// buildDylibCommand builds a dylib command named name, keeping the timestamp and versions of old
func (img *Image) buildDylibCommand(old LoadCommand, name string) ([]byte, error) {
	var dc types.DylibCmd
	if err := binary.Read(bytes.NewReader(img.Data[old.Offset:old.Offset+old.Size]), img.ByteOrder, &dc); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", old.Cmd, err)
	}

	hdr := binary.Size(types.DylibCmd{})
	size := img.align(hdr + len(name) + 1)

	dc.Len = uint32(size)
	dc.NameOffset = uint32(hdr)

	var buf bytes.Buffer
	binary.Write(&buf, img.ByteOrder, dc)
	buf.WriteString(name)
	buf.Write(make([]byte, size-buf.Len()))

	return buf.Bytes(), nil
}

func isDylibCommand(cmd types.LoadCmd) bool {
	switch cmd {
	case types.LC_ID_DYLIB,
		types.LC_LOAD_DYLIB,
		types.LC_LOAD_WEAK_DYLIB,
		types.LC_REEXPORT_DYLIB,
		types.LC_LAZY_LOAD_DYLIB,
		types.LC_LOAD_UPWARD_DYLIB:
		return true
	}
	return false
}

// ID returns the install name of a dylib
func (img *Image) ID() (string, bool) {
	for _, lc := range img.Commands {
		if lc.Cmd == types.LC_ID_DYLIB {
			return lc.Name, true
		}
	}
	return "", false
}

// Rpaths returns the runpath search paths in load command order
func (img *Image) Rpaths() []string {
	var paths []string
	for _, lc := range img.Commands {
		if lc.Cmd == types.LC_RPATH {
			paths = append(paths, lc.Name)
		}
	}
	return paths
}

// Dependencies returns the install names of linked dylibs
func (img *Image) Dependencies() []string {
	var deps []string
	for _, lc := range img.Commands {
		if isDylibCommand(lc.Cmd) && lc.Cmd != types.LC_ID_DYLIB {
			deps = append(deps, lc.Name)
		}
	}
	return deps
}
