//go:build rp2040

package spidma

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// Single DMA channel. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	// AL1_CTRL is CTRL without the trigger: writing it never starts the channel.
	AL1_CTRL volatile.Register32
	_        [11]volatile.Register32 // remaining aliases
}

// DMA channels usable on the RP2040.
var dmaChannels = (*[12]dmaChannelHW)(unsafe.Pointer(rp.DMA))

const (
	_DREQ_SPI0_TX = 0x10
	_DREQ_SPI1_TX = 0x12
)

const (
	ctrlErrorBits = rp.DMA_CH0_CTRL_TRIG_READ_ERROR | rp.DMA_CH0_CTRL_TRIG_WRITE_ERROR
)

var (
	errDMAChannel = errors.New("spidma:invalid DMA channel")
	errSPIBus     = errors.New("spidma:unsupported SPI bus")
	errDMAClaimed = errors.New("spidma:DMA interrupt already claimed")
)

type dmaTxSize uint32

const (
	dmaTxSize8 dmaTxSize = iota
	dmaTxSize16
	dmaTxSize32
)

type dmaChannelConfig struct {
	CTRL uint32
}

// dmaStream is a DMA channel writing transfers to a fixed peripheral FIFO
// paced by a DREQ line. Completion and bus errors are signalled on
// DMA_IRQ_0.
type dmaStream struct {
	hw      *dmaChannelHW
	channel uint8
	dreq    uint32
	dst     uintptr
	h       Handler
	fault   uint32
}

// The DMA_IRQ_0 line is shared by all channels; only one stream may own it.
var irqOwner *dmaStream

func newDMAStream(ch uint8, dreq uint32) (dmaStream, error) {
	if int(ch) >= len(dmaChannels) {
		return dmaStream{}, errDMAChannel
	}
	return dmaStream{hw: &dmaChannels[ch], channel: ch, dreq: dreq}, nil
}

// claim checks that the DMA interrupt is free for s.
func (s *dmaStream) claim() error {
	if irqOwner != nil && irqOwner != s {
		return errDMAClaimed
	}
	return nil
}

// configure routes completions of s to h. Transfers are written to dst.
func (s *dmaStream) configure(h Handler, dst uintptr) {
	s.abort()
	s.h = h
	s.dst = dst
	s.fault = 0
	irqOwner = s
	mask := uint32(1) << s.channel
	rp.DMA.INTS0.Set(mask) // drop a stale completion.
	rp.DMA.INTE0.SetBits(mask)
	irq := interrupt.New(rp.IRQ_DMA_IRQ_0, handleDMAIRQ)
	irq.SetPriority(0x40)
	irq.Enable()
}

func handleDMAIRQ(interrupt.Interrupt) {
	s := irqOwner
	if s == nil {
		return
	}
	mask := uint32(1) << s.channel
	if rp.DMA.INTS0.Get()&mask == 0 {
		return
	}
	rp.DMA.INTS0.Set(mask)
	if ctrl := s.hw.AL1_CTRL.Get(); ctrl&rp.DMA_CH0_CTRL_TRIG_AHB_ERROR != 0 {
		s.fault |= ctrl & ctrlErrorBits
		s.h.Handle(EventFault)
	}
	s.h.Handle(EventTransferComplete)
}

func (s *dmaStream) start(t Transfer) {
	hw := s.hw
	hw.READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&t.Src[0]))))
	hw.WRITE_ADDR.Set(uint32(s.dst))
	hw.TRANS_COUNT.Set(uint32(t.Count))
	var cc dmaChannelConfig
	cc.CTRL = hw.AL1_CTRL.Get() &^ ctrlErrorBits
	cc.setTREQ_SEL(s.dreq)
	cc.setTransferDataSize(dmaTxSize8)
	cc.setChainTo(uint32(s.channel))
	cc.setReadIncrement(t.Increment)
	cc.setWriteIncrement(false)
	cc.setIRQQuiet(false)
	cc.setEnable(true)
	hw.CTRL_TRIG.Set(cc.CTRL)
}

func (s *dmaStream) busy() bool {
	return s.hw.AL1_CTRL.Get()&rp.DMA_CH0_CTRL_TRIG_BUSY != 0
}

// ackFault returns the latched error bits and clears them. The bits are
// write-one-to-clear; they are cleared through AL1_CTRL so an idle channel
// is not retriggered.
func (s *dmaStream) ackFault() uint32 {
	status := s.fault
	s.fault = 0
	if status != 0 {
		s.hw.AL1_CTRL.Set(s.hw.AL1_CTRL.Get()&^ctrlErrorBits | status)
	}
	return status
}

func (s *dmaStream) disable() {
	mask := uint32(1) << s.channel
	rp.DMA.INTE0.ClearBits(mask)
	s.abort()
	rp.DMA.INTS0.Set(mask)
	var cc dmaChannelConfig
	cc.CTRL = s.hw.AL1_CTRL.Get() &^ ctrlErrorBits
	cc.setEnable(false)
	s.hw.AL1_CTRL.Set(cc.CTRL)
	if irqOwner == s {
		irqOwner = nil
	}
}

// DMAChannel streams transfers from memory into the TX FIFO of a hardware
// SPI peripheral.
type DMAChannel struct {
	stream dmaStream
	spi    *machine.SPI
	cfg    machine.SPIConfig
}

// NewDMAChannel returns a channel feeding spi from DMA channel ch. The bus is
// configured on Configure with cfg; cfg.Frequency must match the Timing the
// engine streams with.
func NewDMAChannel(spi *machine.SPI, cfg machine.SPIConfig, ch uint8) (*DMAChannel, error) {
	var dreq uint32
	switch spi {
	case machine.SPI0:
		dreq = _DREQ_SPI0_TX
	case machine.SPI1:
		dreq = _DREQ_SPI1_TX
	default:
		return nil, errSPIBus
	}
	stream, err := newDMAStream(ch, dreq)
	if err != nil {
		return nil, err
	}
	return &DMAChannel{stream: stream, spi: spi, cfg: cfg}, nil
}

// Configure implements Channel.
func (ch *DMAChannel) Configure(h Handler) error {
	if err := ch.stream.claim(); err != nil {
		return err
	}
	if err := ch.spi.Configure(ch.cfg); err != nil {
		return err
	}
	ch.spi.Bus.SSPDMACR.SetBits(rp.SPI0_SSPDMACR_TXDMAE)
	ch.stream.configure(h, uintptr(unsafe.Pointer(&ch.spi.Bus.SSPDR)))
	return nil
}

// Start implements Channel.
func (ch *DMAChannel) Start(t Transfer) { ch.stream.start(t) }

// Busy implements Channel.
func (ch *DMAChannel) Busy() bool { return ch.stream.busy() }

// AckFault implements Channel.
func (ch *DMAChannel) AckFault() uint32 { return ch.stream.ackFault() }

// Disable implements Channel.
func (ch *DMAChannel) Disable() { ch.stream.disable() }

// abort aborts the current transfer sequence on the channel and blocks until
// all in-flight transfers have been flushed through the address and data FIFOs.
// After this, it is safe to restart the channel.
func (s *dmaStream) abort() {
	chMask := uint32(1 << s.channel)
	rp.DMA.CHAN_ABORT.Set(chMask)
	retries := timeoutRetries
	for rp.DMA.CHAN_ABORT.Get()&chMask != 0 && retries > 0 {
		retries--
	}
	if retries == 0 {
		println("DMA abort timeout")
	}
}

const timeoutRetries = 0xffff * 8

// Select a Transfer Request signal. The channel uses the transfer request signal
// to pace its data transfer rate. 0x0 to 0x3a -> select DREQ n as TREQ
func (cc *dmaChannelConfig) setTREQ_SEL(dreq uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Msk)) | (uint32(dreq) << rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos)
}

// Chaining a channel to itself disables chaining.
func (cc *dmaChannelConfig) setChainTo(chainTo uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Msk)) | (chainTo << rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos)
}

func (cc *dmaChannelConfig) setTransferDataSize(size dmaTxSize) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Msk)) | (uint32(size) << rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Pos)
}

func (cc *dmaChannelConfig) setReadIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_READ_Pos, incr)
}

func (cc *dmaChannelConfig) setWriteIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_WRITE_Pos, incr)
}

func (cc *dmaChannelConfig) setIRQQuiet(irqQuiet bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_IRQ_QUIET_Pos, irqQuiet)
}

func (cc *dmaChannelConfig) setEnable(enable bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_EN_Pos, enable)
}

func setBitPos(cc *uint32, pos uint32, bit bool) {
	if bit {
		*cc = *cc | (1 << pos)
	} else {
		*cc = *cc & ^(1 << pos) // unset bit.
	}
}
