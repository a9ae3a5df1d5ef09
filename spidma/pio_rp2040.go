//go:build rp2040

package spidma

import (
	"machine"
	"unsafe"

	"github.com/tinygo-org/wsdma/pio"
)

// PIOChannel streams transfers to a single pin through a PIO state machine
// running `out pins, 1`. Each byte the DMA channel writes to the TX FIFO is
// replicated across the 32-bit word; the state machine pulls eight bits at a
// time from the top, so bytes leave MSB first at clockHz bits per second,
// the same symbols a SPI MOSI line would carry.
type PIOChannel struct {
	stream  dmaStream
	sm      pio.StateMachine
	pin     machine.Pin
	clockHz uint32

	loaded bool
	offset uint8
}

// NewPIOChannel returns a channel driving pin from sm, fed by DMA channel ch.
// clockHz must be the ClockHz of the Timing the engine streams with.
func NewPIOChannel(sm pio.StateMachine, pin machine.Pin, clockHz uint32, ch uint8) (*PIOChannel, error) {
	if _, _, err := pio.ClkDivFromFrequency(clockHz, machine.CPUFrequency()); err != nil {
		return nil, err
	}
	stream, err := newDMAStream(ch, sm.TxDREQ())
	if err != nil {
		return nil, err
	}
	return &PIOChannel{stream: stream, sm: sm, pin: pin, clockHz: clockHz}, nil
}

// Configure implements Channel. The program is loaded on the first call;
// later calls only reset the state machine.
func (ch *PIOChannel) Configure(h Handler) error {
	if err := ch.stream.claim(); err != nil {
		return err
	}
	whole, frac, err := pio.ClkDivFromFrequency(ch.clockHz, machine.CPUFrequency())
	if err != nil {
		return err
	}
	block := ch.sm.PIO()
	if !ch.loaded {
		ch.offset, err = block.AddProgram(pio.SerialProgram(), -1)
		if err != nil {
			return err
		}
		ch.loaded = true
	}
	ch.pin.Configure(machine.PinConfig{Mode: block.PinMode()})
	ch.sm.SetPinOutput(ch.pin, false)
	ch.sm.Init(ch.offset, pio.SerialConfig(ch.offset, uint8(ch.pin), whole, frac))
	ch.sm.SetEnabled(true)
	ch.stream.configure(h, uintptr(unsafe.Pointer(ch.sm.TxReg())))
	return nil
}

// Start implements Channel.
func (ch *PIOChannel) Start(t Transfer) { ch.stream.start(t) }

// Busy implements Channel.
func (ch *PIOChannel) Busy() bool { return ch.stream.busy() }

// AckFault implements Channel.
func (ch *PIOChannel) AckFault() uint32 { return ch.stream.ackFault() }

// Disable implements Channel. The state machine keeps running and holds the
// pin low once its FIFO is empty.
func (ch *PIOChannel) Disable() { ch.stream.disable() }
