package pio

import "errors"

// PIO program memory errors.
var (
	ErrOutOfProgramSpace = errors.New("pio: out of program space")
	ErrNoSpaceAtOffset   = errors.New("pio: program space unavailable at offset")
)

// programSpace tracks the 32 instruction slots of one PIO block.
type programSpace uint32

func programMask(n int) uint32 {
	if n >= 32 {
		return 0xffffffff
	}
	return uint32(1)<<n - 1
}

// find returns the offset where a program of n instructions fits. origin is
// the required offset, or -1 when the program is relocatable; relocatable
// programs are placed as high as possible.
func (s programSpace) find(n int, origin int8) (uint8, error) {
	if n == 0 || n > 32 {
		return 0, ErrOutOfProgramSpace
	}
	mask := programMask(n)
	if origin >= 0 {
		if int(origin) > 32-n || uint32(s)&(mask<<uint(origin)) != 0 {
			return 0, ErrNoSpaceAtOffset
		}
		return uint8(origin), nil
	}
	for i := 32 - n; i >= 0; i-- {
		if uint32(s)&(mask<<uint(i)) == 0 {
			return uint8(i), nil
		}
	}
	return 0, ErrOutOfProgramSpace
}

func (s *programSpace) reserve(offset uint8, n int) {
	*s |= programSpace(programMask(n) << offset)
}

func (s *programSpace) release(offset uint8, n int) {
	*s &^= programSpace(programMask(n) << offset)
}

// relocate returns the program as loaded at offset: jump targets are
// relative to the start of the program and get offset added.
func relocate(instructions []uint16, offset uint8) []uint16 {
	out := make([]uint16, len(instructions))
	for i, instr := range instructions {
		if instr&_INSTR_BITS_Msk == _INSTR_BITS_JMP {
			instr += uint16(offset)
		}
		out[i] = instr
	}
	return out
}
