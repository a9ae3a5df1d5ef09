//go:build rp2040

package pio

import (
	"device/rp"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// StateMachine represents one of the four state machines in a PIO
type StateMachine struct {
	pio   *PIO
	index uint8
}

// IsClaimed returns true if the state machine is claimed by other code.
func (sm StateMachine) IsClaimed() bool { return sm.pio.claimedSMMask&(1<<sm.index) != 0 }

// Unclaim releases the state machine for use by other code.
func (sm StateMachine) Unclaim() { sm.pio.claimedSMMask &^= 1 << sm.index }

// TryClaim claims the state machine and reports whether it was free.
func (sm StateMachine) TryClaim() bool {
	if sm.IsClaimed() {
		return false
	}
	sm.pio.claimedSMMask |= 1 << sm.index
	return true
}

// PIO returns the PIO that this state machine is part of.
func (sm StateMachine) PIO() *PIO { return sm.pio }

// StateMachineIndex returns the index of the state machine within the PIO.
func (sm StateMachine) StateMachineIndex() uint8 { return sm.index }

// TxDREQ returns the DMA request line paced by this state machine's TX FIFO.
func (sm StateMachine) TxDREQ() uint32 {
	return uint32(sm.pio.BlockIndex())*8 + uint32(sm.index)
}

// Init halts the state machine, applies cfg, clears its FIFOs and sticky
// debug flags and jumps to initialPC. It is left disabled.
func (sm StateMachine) Init(initialPC uint8, cfg StateMachineConfig) {
	sm.SetEnabled(false)
	sm.SetConfig(cfg)
	sm.ClearFIFOs()

	const fdebugMask = uint32((1 << rp.PIO0_FDEBUG_TXOVER_Pos) |
		(1 << rp.PIO0_FDEBUG_RXUNDER_Pos) |
		(1 << rp.PIO0_FDEBUG_TXSTALL_Pos) |
		(1 << rp.PIO0_FDEBUG_RXSTALL_Pos))
	sm.pio.hw.FDEBUG.Set(fdebugMask << sm.index)

	sm.Restart()
	sm.ClkDivRestart()
	sm.Exec(EncodeJmp(initialPC, JmpAlways))
}

// SetEnabled controls whether the state machine is running.
func (sm StateMachine) SetEnabled(enabled bool) {
	sm.pio.hw.CTRL.ReplaceBits(boolToBit(enabled), 0x1, sm.index)
}

// IsEnabled returns true if the state machine is running.
func (sm StateMachine) IsEnabled() bool {
	return sm.pio.hw.CTRL.HasBits(1 << (rp.PIO0_CTRL_SM_ENABLE_Pos + sm.index))
}

// Restart clears internal state such as shift counters.
func (sm StateMachine) Restart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_SM_RESTART_Pos + sm.index))
}

// ClkDivRestart zeroes the phase of the clock divider.
func (sm StateMachine) ClkDivRestart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_CLKDIV_RESTART_Pos + sm.index))
}

// SetConfig writes cfg to the state machine registers.
func (sm StateMachine) SetConfig(cfg StateMachineConfig) {
	hw := sm.pio.smHW(sm.index)
	hw.CLKDIV.Set(cfg.ClkDiv)
	hw.EXECCTRL.Set(cfg.ExecCtrl)
	hw.SHIFTCTRL.Set(cfg.ShiftCtrl)
	hw.PINCTRL.Set(cfg.PinCtrl)
}

// TxReg gets a pointer to the TX FIFO register for this state machine.
func (sm StateMachine) TxReg() *volatile.Register32 {
	start := uintptr(unsafe.Pointer(&sm.pio.hw.TXF0)) // 0x10
	return (*volatile.Register32)(unsafe.Pointer(start + uintptr(sm.index)*4))
}

// IsTxFIFOEmpty returns true if state machine's TX FIFO is empty.
func (sm StateMachine) IsTxFIFOEmpty() bool {
	return sm.pio.hw.FSTAT.Get()&(1<<(rp.PIO0_FSTAT_TXEMPTY_Pos+sm.index)) != 0
}

// ClearFIFOs clears the TX and RX FIFOs of a state machine.
func (sm StateMachine) ClearFIFOs() {
	shiftctl := &sm.pio.smHW(sm.index).SHIFTCTRL
	// FIFOs are flushed when this bit is changed. Xoring twice returns bit to original state.
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
}

// Exec immediately executes an instruction on the state machine.
func (sm StateMachine) Exec(instr uint16) {
	sm.pio.smHW(sm.index).INSTR.Set(uint32(instr))
}

// SetPinOutput makes pin an output of the state machine driven to level.
// It must be called before the state machine is enabled.
func (sm StateMachine) SetPinOutput(pin machine.Pin, level bool) {
	checkPinBaseAndCount(uint8(pin), 1)
	hw := sm.pio.smHW(sm.index)
	pinctrlSaved := hw.PINCTRL.Get()
	execctrlSaved := hw.EXECCTRL.Get()
	hw.EXECCTRL.ClearBits(1 << execctrlOutStickyPos)
	hw.PINCTRL.Set(1<<pinctrlSetCountPos | uint32(pin)<<pinctrlSetBasePos)
	sm.Exec(EncodeSet(SrcDestPins, boolAsU8(level)))
	sm.Exec(EncodeSet(SrcDestPinDirs, 1))
	hw.PINCTRL.Set(pinctrlSaved)
	hw.EXECCTRL.Set(execctrlSaved)
}

const regAliasXOR = 0x1 << 12

// xorBits writes through the atomic XOR alias of reg, see 2.1.2 of the
// RP2040 datasheet.
func xorBits(reg *volatile.Register32, bits uint32) {
	alias := uintptr(unsafe.Pointer(reg)) | regAliasXOR
	(*volatile.Register32)(unsafe.Pointer(alias)).Set(bits)
}
