package pio

import (
	"errors"
	"math"
)

// Major opcode bits of each instruction, see RP2040 datasheet 3.4.
const (
	_INSTR_BITS_JMP  = 0x0000
	_INSTR_BITS_WAIT = 0x2000
	_INSTR_BITS_IN   = 0x4000
	_INSTR_BITS_OUT  = 0x6000
	_INSTR_BITS_PUSH = 0x8000
	_INSTR_BITS_PULL = 0x8080
	_INSTR_BITS_MOV  = 0xa000
	_INSTR_BITS_IRQ  = 0xc000
	_INSTR_BITS_SET  = 0xe000

	// Bit mask for instruction code
	_INSTR_BITS_Msk = 0xe000
)

// SrcDest is the source or destination operand of IN, OUT, MOV and SET.
// Several encodings mean different things depending on the instruction.
type SrcDest uint8

const (
	SrcDestPins    SrcDest = 0
	SrcDestX       SrcDest = 1
	SrcDestY       SrcDest = 2
	SrcDestNull    SrcDest = 3
	SrcDestPinDirs SrcDest = 4
	SrcDestISR     SrcDest = 6
	SrcDestOSR     SrcDest = 7
)

type JmpCond uint8

const (
	// No condition, always jumps.
	JmpAlways JmpCond = iota
	// Jump if X is zero.
	JmpXZero
	// Jump if X is not zero, prior to decrement of X.
	JmpXNZeroDec
	// Jump if Y is zero.
	JmpYZero
	// Jump if Y is not zero, prior to decrement of Y.
	JmpYNZeroDec
	// Jump if X is not equal to Y.
	JmpXNotEqualY
	// Jump if EXECCTRL_JMP_PIN is high.
	JmpPinInput
	// Jump while the OSR still holds bits below the pull threshold.
	JmpOSRNotEmpty
)

var (
	ErrClkDivTooLarge = errors.New("pio: clock divider above 65535")
	ErrClkDivTooSmall = errors.New("pio: state machine faster than the system clock")
)

func encodeInstrAndArgs(instr uint16, arg1 uint8, arg2 uint8) uint16 {
	return instr | (uint16(arg1&7) << 5) | uint16(arg2&0x1f)
}

func encodeInstrAndSrcDest(instr uint16, dest SrcDest, value uint8) uint16 {
	return encodeInstrAndArgs(instr, uint8(dest), value)
}

// EncodeDelay returns the delay field for cycles extra cycles, to be ORed
// into an instruction. No side-set bits are assumed.
func EncodeDelay(cycles uint8) uint16 {
	return uint16(cycles&0x1f) << 8
}

func EncodeJmp(addr uint8, condition JmpCond) uint16 {
	return encodeInstrAndArgs(_INSTR_BITS_JMP, uint8(condition), addr)
}

func EncodeOut(dest SrcDest, bitCount uint8) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_OUT, dest, bitCount)
}

func EncodePull(ifEmpty bool, block bool) uint16 {
	arg := boolAsU8(ifEmpty)<<1 | boolAsU8(block)
	return encodeInstrAndArgs(_INSTR_BITS_PULL, arg, 0)
}

func EncodeMov(dest SrcDest, src SrcDest) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_MOV, dest, uint8(src)&7)
}

func EncodeSet(dest SrcDest, value uint8) uint16 {
	return encodeInstrAndSrcDest(_INSTR_BITS_SET, dest, value)
}

// EncodeNOP is mov y, y.
func EncodeNOP() uint16 {
	return EncodeMov(SrcDestY, SrcDestY)
}

// SerialProgram shifts the TX FIFO out on one pin, one bit per state machine
// cycle. With autopull at 8 bits each byte written to the FIFO becomes eight
// bit cells, MSB first. When the FIFO runs dry the out stalls and the pin
// keeps the last bit shifted.
func SerialProgram() []uint16 {
	return []uint16{
		EncodeOut(SrcDestPins, 1), // 0: out pins, 1
	}
}

// ClkDivFromFrequency calculates the CLKDIV register values for a state
// machine running at freq with the system clock at cpuFreq, both in Hz.
func ClkDivFromFrequency(freq, cpuFreq uint32) (whole uint16, frac uint8, err error) {
	if freq == 0 {
		return 0, 0, ErrClkDivTooLarge
	}
	//  freq = 256*clockfreq / (256*whole + frac)
	//  256*whole + frac = 256*clockfreq / freq
	return splitClkdiv(256 * uint64(cpuFreq) / uint64(freq))
}

func splitClkdiv(clkdiv uint64) (whole uint16, frac uint8, err error) {
	if clkdiv > 256*math.MaxUint16 {
		return 0, 0, ErrClkDivTooLarge
	} else if clkdiv < 256 {
		return 0, 0, ErrClkDivTooSmall
	}
	return uint16(clkdiv / 256), uint8(clkdiv % 256), nil
}

func boolAsU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
