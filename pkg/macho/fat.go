package macho

import (
	"encoding/binary"
	"fmt"

	"github.com/blacktop/go-macho/types"
)

const fatArchSize = 5 * 4

// FatArch is one slice of a universal binary
type FatArch struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype
	Offset uint32
	Size   uint32
	Align  uint32
}

// IsFat reports whether data starts with a universal binary header
func IsFat(data []byte) bool {
	return len(data) >= 8 && types.Magic(binary.BigEndian.Uint32(data)) == types.MagicFat
}

// FatArches returns the slice table of a universal binary
func FatArches(data []byte) ([]FatArch, error) {
	if !IsFat(data) {
		return nil, fmt.Errorf("not a universal binary")
	}
	n := int(binary.BigEndian.Uint32(data[4:]))
	if 8+n*fatArchSize > len(data) {
		return nil, fmt.Errorf("universal header lists %d slices past end of file", n)
	}
	arches := make([]FatArch, 0, n)
	for i := 0; i < n; i++ {
		b := data[8+i*fatArchSize:]
		fa := FatArch{
			CPU:    types.CPU(binary.BigEndian.Uint32(b[0:])),
			SubCPU: types.CPUSubtype(binary.BigEndian.Uint32(b[4:])),
			Offset: binary.BigEndian.Uint32(b[8:]),
			Size:   binary.BigEndian.Uint32(b[12:]),
			Align:  binary.BigEndian.Uint32(b[16:]),
		}
		if uint64(fa.Offset)+uint64(fa.Size) > uint64(len(data)) {
			return nil, fmt.Errorf("slice %d (%#x+%#x) extends past end of file", i, fa.Offset, fa.Size)
		}
		arches = append(arches, fa)
	}
	return arches, nil
}

// editFat edits every slice independently, last slice first, and splices the result back.
func editFat(data []byte, ops []Op) error {
	arches, err := FatArches(data)
	if err != nil {
		return err
	}
	for i := len(arches) - 1; i >= 0; i-- {
		fa := arches[i]
		slice := make([]byte, fa.Size)
		copy(slice, data[fa.Offset:fa.Offset+fa.Size])
		if err := editThin(slice, ops); err != nil {
			return fmt.Errorf("slice %d: %w", i, err)
		}
		copy(data[fa.Offset:], slice)
	}
	return nil
}
