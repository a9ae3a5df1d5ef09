//go:build rp2040

// Package pio drives the RP2040 programmable I/O blocks: program memory,
// state machine setup and the TX FIFO that a DMA channel feeds.
package pio

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// RP2040 PIO peripheral handles.
var (
	PIO0 = &PIO{
		hw: rp.PIO0,
	}
	PIO1 = &PIO{
		hw: rp.PIO1,
	}
)

var errStateMachineClaimed = errors.New("pio: state machine already claimed")

const (
	badStateMachineIndex = "invalid state machine index"
	badPIO               = "invalid PIO"
)

// PIO represents one of the two PIO peripherals in the RP2040
type PIO struct {
	hw *rp.PIO0_Type
	// Used instruction slots.
	space programSpace
	// Bitmask of claimed state machines.
	claimedSMMask uint8
}

// BlockIndex returns 0 or 1 depending on whether the underlying device is PIO0 or PIO1.
func (pio *PIO) BlockIndex() uint8 {
	switch pio.hw {
	case rp.PIO0:
		return 0
	case rp.PIO1:
		return 1
	}
	panic(badPIO)
}

// StateMachine returns a state machine by index.
func (pio *PIO) StateMachine(index uint8) StateMachine {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	return StateMachine{pio: pio, index: index}
}

// ClaimStateMachine returns an unused state machine, or an error if all
// four are claimed.
func (pio *PIO) ClaimStateMachine() (sm StateMachine, err error) {
	for i := uint8(0); i < 4; i++ {
		sm = pio.StateMachine(i)
		if sm.TryClaim() {
			return sm, nil
		}
	}
	return StateMachine{}, errStateMachineClaimed
}

// AddProgram loads a program into PIO memory and returns the offset it was
// loaded at. origin is the required offset, or -1 if the program is
// relocatable.
func (pio *PIO) AddProgram(instructions []uint16, origin int8) (offset uint8, _ error) {
	offset, err := pio.space.find(len(instructions), origin)
	if err != nil {
		return 0, err
	}
	for i, instr := range relocate(instructions, offset) {
		pio.writeInstructionMemory(offset+uint8(i), instr)
	}
	pio.space.reserve(offset, len(instructions))
	return offset, nil
}

// RemoveProgram frees the slots of a program loaded with AddProgram. The
// slots are filled with jumps to offset so a state machine still running
// there spins in place.
func (pio *PIO) RemoveProgram(instructions []uint16, offset uint8) {
	trap := EncodeJmp(offset, JmpAlways)
	for i := range instructions {
		pio.writeInstructionMemory(offset+uint8(i), trap)
	}
	pio.space.release(offset, len(instructions))
}

func (pio *PIO) writeInstructionMemory(offset uint8, value uint16) {
	// INSTR_MEM0..31 are consecutive 32-bit registers, only the lower 16 bits used.
	start := unsafe.Pointer(&pio.hw.INSTR_MEM0)
	reg := (*volatile.Register32)(unsafe.Pointer(uintptr(start) + uintptr(offset)*4))
	reg.Set(uint32(value))
}

// PinMode returns the pin function routing a GPIO to this block.
func (pio *PIO) PinMode() machine.PinMode {
	return machine.PinPIO0 + machine.PinMode(pio.BlockIndex())
}

type statemachineHW struct {
	CLKDIV    volatile.Register32 // 0xC8 for SM0
	EXECCTRL  volatile.Register32 // 0xCC for SM0
	SHIFTCTRL volatile.Register32 // 0xD0 for SM0
	ADDR      volatile.Register32 // 0xD4 for SM0
	INSTR     volatile.Register32 // 0xD8 for SM0
	PINCTRL   volatile.Register32 // 0xDC for SM0
}

func (pio *PIO) smHW(index uint8) *statemachineHW {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	// 24 bytes (6 registers) per state machine
	const size = unsafe.Sizeof(statemachineHW{})
	base := uintptr(unsafe.Pointer(&pio.hw.SM0_CLKDIV))
	return (*statemachineHW)(unsafe.Pointer(base + uintptr(index)*size))
}
