package spidma

import (
	"sync/atomic"

	"github.com/tinygo-org/wsdma/ws2812"
)

// Phase is what the engine is currently shifting out.
type Phase uint8

const (
	// PhaseFrame transmits the frame buffer from offset 0.
	PhaseFrame Phase = iota
	// PhaseReset holds the line low so the LEDs latch the frame.
	PhaseReset
)

func (p Phase) String() string {
	switch p {
	case PhaseFrame:
		return "frame"
	case PhaseReset:
		return "reset-gap"
	}
	return "unknown"
}

// FaultPolicy selects what the engine does after a transport fault.
type FaultPolicy uint8

const (
	// FaultContinue counts and acknowledges the fault, then keeps streaming.
	FaultContinue FaultPolicy = iota
	// FaultHalt stops re-arming transfers so the failure can be inspected.
	// The strip freezes on its last frame.
	FaultHalt
)

const (
	stateIdle uint32 = iota
	stateArmed
	stateHalted
)

// Stats are counters kept by the interrupt handler.
type Stats struct {
	// Frames is the number of frame phases that ran to completion.
	Frames uint32
	// Faults is the number of acknowledged transport faults.
	Faults uint32
	// LastFault is the status of the most recent fault.
	LastFault uint32
	// Spurious counts completion events received while the channel was busy.
	Spurious uint32
}

// Engine keeps a Channel streaming a frame buffer forever, with a reset gap
// after every frame.
//
// The frame buffer may only be written after the completion Flag has been
// observed set: the engine is then in the reset gap and does not read it.
type Engine struct {
	ch     Channel
	timing ws2812.Timing
	policy FaultPolicy

	frame []byte
	done  *Flag
	zero  [1]byte

	state atomic.Uint32
	phase atomic.Uint32

	frames    atomic.Uint32
	faults    atomic.Uint32
	lastFault atomic.Uint32
	spurious  atomic.Uint32
}

// New returns an engine that drives ch with the symbols and reset gap of t.
func New(ch Channel, t ws2812.Timing) *Engine {
	return &Engine{ch: ch, timing: t}
}

// SetFaultPolicy changes the fault policy. It is ignored while the engine runs.
func (e *Engine) SetFaultPolicy(p FaultPolicy) {
	if e.state.Load() == stateIdle {
		e.policy = p
	}
}

// Start clears frame to all-off, clears done and starts streaming. It must be
// called once before the frame is encoded, and not again without Stop.
func (e *Engine) Start(frame []byte, done *Flag) error {
	switch {
	case e.ch == nil:
		return ErrNoChannel
	case len(frame) == 0:
		return ErrNoBuffer
	case len(frame) < ws2812.BytesPerLED:
		return ErrShortBuffer
	case len(frame)%ws2812.BytesPerLED != 0:
		return ErrFrameLength
	case done == nil:
		return ErrNilFlag
	}
	if err := e.timing.Validate(); err != nil {
		return err
	}
	if e.state.Load() != stateIdle {
		return ErrArmed
	}
	if err := e.ch.Configure(e); err != nil {
		return err
	}
	for i := range frame {
		frame[i] = e.timing.Low
	}
	done.Clear()
	e.frame = frame
	e.done = done
	e.frames.Store(0)
	e.faults.Store(0)
	e.lastFault.Store(0)
	e.spurious.Store(0)
	e.phase.Store(uint32(PhaseFrame))
	e.state.Store(stateArmed)
	e.ch.Start(e.frameTransfer())
	return nil
}

// Stop disables the channel. When the channel is a Drainer, Stop returns only
// once the bus is idle, so the bus may be closed right after. The engine may
// be started again afterwards.
func (e *Engine) Stop() error {
	if e.state.Swap(stateIdle) == stateIdle {
		return ErrNotArmed
	}
	e.ch.Disable()
	if d, ok := e.ch.(Drainer); ok {
		d.Drain()
	}
	return nil
}

// Handle advances the transmit cycle. It is the interrupt handler of the
// channel: it only swaps the transfer source and re-arms.
func (e *Engine) Handle(ev Event) {
	switch ev {
	case EventTransferComplete:
		e.complete()
	case EventFault:
		e.fault()
	}
}

func (e *Engine) complete() {
	if e.state.Load() != stateArmed {
		return
	}
	if e.ch.Busy() {
		e.spurious.Add(1)
		return
	}
	if Phase(e.phase.Load()) == PhaseFrame {
		e.frames.Add(1)
		e.done.set()
		e.phase.Store(uint32(PhaseReset))
		e.ch.Start(e.resetTransfer())
		return
	}
	e.phase.Store(uint32(PhaseFrame))
	e.ch.Start(e.frameTransfer())
}

func (e *Engine) fault() {
	status := e.ch.AckFault()
	if status == 0 {
		return
	}
	e.faults.Add(1)
	e.lastFault.Store(status)
	if e.policy == FaultHalt && e.state.CompareAndSwap(stateArmed, stateHalted) {
		e.ch.Disable()
	}
}

func (e *Engine) frameTransfer() Transfer {
	return Transfer{Src: e.frame, Count: len(e.frame), Increment: true}
}

func (e *Engine) resetTransfer() Transfer {
	return Transfer{Src: e.zero[:], Count: e.timing.ResetLen}
}

// Phase returns the phase currently being transmitted.
func (e *Engine) Phase() Phase { return Phase(e.phase.Load()) }

// Running reports whether the engine is streaming.
func (e *Engine) Running() bool { return e.state.Load() == stateArmed }

// Err returns ErrHalted once a fault stopped the engine under FaultHalt.
func (e *Engine) Err() error {
	if e.state.Load() == stateHalted {
		return ErrHalted
	}
	return nil
}

// Timing returns the protocol constants the engine streams with.
func (e *Engine) Timing() ws2812.Timing { return e.timing }

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Frames:    e.frames.Load(),
		Faults:    e.faults.Load(),
		LastFault: e.lastFault.Load(),
		Spurious:  e.spurious.Load(),
	}
}
