package pio

// Register fields of a state machine, RP2040 datasheet 3.7.
const (
	clkdivFracPos = 8
	clkdivIntPos  = 16

	execctrlWrapBottomPos = 7
	execctrlWrapBottomMsk = 0x1f << execctrlWrapBottomPos
	execctrlWrapTopPos    = 12
	execctrlWrapTopMsk    = 0x1f << execctrlWrapTopPos
	execctrlOutStickyPos  = 17

	shiftctrlAutopushPos    = 16
	shiftctrlAutopullPos    = 17
	shiftctrlInShiftdirPos  = 18
	shiftctrlOutShiftdirPos = 19
	shiftctrlPushThreshPos  = 20
	shiftctrlPullThreshPos  = 25
	shiftctrlFjoinTxPos     = 30
	shiftctrlFjoinRxPos     = 31

	pinctrlOutBasePos  = 0
	pinctrlOutBaseMsk  = 0x1f << pinctrlOutBasePos
	pinctrlSetBasePos  = 5
	pinctrlSetBaseMsk  = 0x1f << pinctrlSetBasePos
	pinctrlOutCountPos = 20
	pinctrlOutCountMsk = 0x3f << pinctrlOutCountPos
	pinctrlSetCountPos = 26
	pinctrlSetCountMsk = 0x7 << pinctrlSetCountPos
)

// DefaultStateMachineConfig mirrors pio_get_default_sm_config in the C SDK.
func DefaultStateMachineConfig() StateMachineConfig {
	cfg := StateMachineConfig{}
	cfg.SetClkDivIntFrac(1, 0)
	cfg.SetWrap(0, 31)
	cfg.SetInShift(true, false, 32)
	cfg.SetOutShift(true, false, 32)
	return cfg
}

// SerialConfig returns the configuration that runs SerialProgram, loaded at
// offset, on pin with the given clock divider: MSB first, autopull every 8
// bits and the RX FIFO joined to TX.
func SerialConfig(offset, pin uint8, whole uint16, frac uint8) StateMachineConfig {
	cfg := DefaultStateMachineConfig()
	cfg.SetWrap(offset, offset)
	cfg.SetOutPins(pin, 1)
	cfg.SetSetPins(pin, 1)
	cfg.SetOutShift(false, true, 8)
	cfg.SetFIFOJoin(FifoJoinTx)
	cfg.SetClkDivIntFrac(whole, frac)
	return cfg
}

// StateMachineConfig holds the configuration registers of a PIO state
// machine.
type StateMachineConfig struct {
	// Frequency = clock freq / (CLKDIV_INT + CLKDIV_FRAC / 256)
	ClkDiv    uint32
	ExecCtrl  uint32
	ShiftCtrl uint32
	PinCtrl   uint32
}

// SetClkDivIntFrac sets the clock divider from a whole and fractional part.
func (cfg *StateMachineConfig) SetClkDivIntFrac(whole uint16, frac uint8) {
	cfg.ClkDiv = uint32(frac)<<clkdivFracPos | uint32(whole)<<clkdivIntPos
}

// SetWrap sets the wrap target and wrap instruction.
func (cfg *StateMachineConfig) SetWrap(wrapTarget uint8, wrap uint8) {
	cfg.ExecCtrl = cfg.ExecCtrl&^uint32(execctrlWrapTopMsk|execctrlWrapBottomMsk) |
		uint32(wrapTarget&0x1f)<<execctrlWrapBottomPos |
		uint32(wrap&0x1f)<<execctrlWrapTopPos
}

// SetInShift sets the ISR direction, autopush and push threshold. A
// threshold of 32 is encoded as 0.
func (cfg *StateMachineConfig) SetInShift(shiftRight bool, autoPush bool, pushThreshold uint16) {
	cfg.ShiftCtrl = cfg.ShiftCtrl&^uint32(1<<shiftctrlInShiftdirPos|1<<shiftctrlAutopushPos|0x1f<<shiftctrlPushThreshPos) |
		boolToBit(shiftRight)<<shiftctrlInShiftdirPos |
		boolToBit(autoPush)<<shiftctrlAutopushPos |
		uint32(pushThreshold&0x1f)<<shiftctrlPushThreshPos
}

// SetOutShift sets the OSR direction, autopull and pull threshold. A
// threshold of 32 is encoded as 0.
func (cfg *StateMachineConfig) SetOutShift(shiftRight bool, autoPull bool, pullThreshold uint16) {
	cfg.ShiftCtrl = cfg.ShiftCtrl&^uint32(1<<shiftctrlOutShiftdirPos|1<<shiftctrlAutopullPos|0x1f<<shiftctrlPullThreshPos) |
		boolToBit(shiftRight)<<shiftctrlOutShiftdirPos |
		boolToBit(autoPull)<<shiftctrlAutopullPos |
		uint32(pullThreshold&0x1f)<<shiftctrlPullThreshPos
}

// SetOutPins sets the pins an 'out pins' instruction drives.
func (cfg *StateMachineConfig) SetOutPins(base uint8, count uint8) {
	checkPinBaseAndCount(base, count)
	cfg.PinCtrl = cfg.PinCtrl&^uint32(pinctrlOutBaseMsk|pinctrlOutCountMsk) |
		uint32(base)<<pinctrlOutBasePos |
		uint32(count)<<pinctrlOutCountPos
}

// SetSetPins sets the pins a 'set pins' instruction drives.
func (cfg *StateMachineConfig) SetSetPins(base uint8, count uint8) {
	checkPinBaseAndCount(base, count)
	if count > 5 {
		panic("pio:set count too large")
	}
	cfg.PinCtrl = cfg.PinCtrl&^uint32(pinctrlSetBaseMsk|pinctrlSetCountMsk) |
		uint32(base)<<pinctrlSetBasePos |
		uint32(count)<<pinctrlSetCountPos
}

type FifoJoin uint8

const (
	// FifoJoinNone keeps separate RX and TX FIFOs of depth 4.
	FifoJoinNone FifoJoin = iota
	// FifoJoinTx joins both FIFOs into a single TX FIFO of depth 8.
	FifoJoinTx
	// FifoJoinRx joins both FIFOs into a single RX FIFO of depth 8.
	FifoJoinRx
)

// SetFIFOJoin sets the FIFO joining.
func (cfg *StateMachineConfig) SetFIFOJoin(join FifoJoin) {
	if join > FifoJoinRx {
		panic("pio:bad FIFO join")
	}
	cfg.ShiftCtrl = cfg.ShiftCtrl&^uint32(1<<shiftctrlFjoinTxPos|1<<shiftctrlFjoinRxPos) |
		uint32(join)<<shiftctrlFjoinTxPos
}

func checkPinBaseAndCount(base uint8, count uint8) {
	if base >= 32 {
		panic("pio:bad pin")
	} else if count > 32 {
		panic("pio:count too large")
	}
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
