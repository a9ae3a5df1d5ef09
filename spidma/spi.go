package spidma

import (
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// Fault status bits reported by SPIChannel.AckFault.
const (
	FaultBus     uint32 = 1 << 0 // the bus returned an error from Tx
	FaultOverrun uint32 = 1 << 1 // a transfer was started while one was queued
)

// SPIChannel is a Channel for buses without a usable DMA controller. A
// goroutine pushes each transfer through a blocking drivers.SPI and raises
// the same events a DMA completion interrupt would.
type SPIChannel struct {
	bus drivers.SPI

	mu  sync.Mutex
	cur *spiRun

	busy  atomic.Bool
	fault atomic.Uint32

	// scratch holds expanded non-incrementing transfers. Only the run
	// goroutine touches it.
	scratch []byte
}

type spiRun struct {
	req  chan Transfer
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func (r *spiRun) stop() { r.once.Do(func() { close(r.quit) }) }

// NewSPIChannel returns a channel writing to bus. bus may be a machine.SPI,
// a periph.io port wrapped by host/spidev, or any other drivers.SPI.
func NewSPIChannel(bus drivers.SPI) *SPIChannel {
	return &SPIChannel{bus: bus}
}

// Configure implements Channel.
func (c *SPIChannel) Configure(h Handler) error {
	if c.bus == nil {
		return errNoBus
	}
	c.Disable()
	c.mu.Lock()
	prev := c.cur
	c.mu.Unlock()
	if prev != nil {
		<-prev.done
	}
	r := &spiRun{
		req:  make(chan Transfer, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	c.busy.Store(false)
	c.fault.Store(0)
	c.mu.Lock()
	c.cur = r
	c.mu.Unlock()
	go c.run(r, h)
	return nil
}

// Start implements Channel.
func (c *SPIChannel) Start(t Transfer) {
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()
	if r == nil {
		return
	}
	c.busy.Store(true)
	select {
	case r.req <- t:
	default:
		c.busy.Store(false)
		c.raise(FaultOverrun)
	}
}

// Busy implements Channel.
func (c *SPIChannel) Busy() bool { return c.busy.Load() }

// AckFault implements Channel.
func (c *SPIChannel) AckFault() uint32 { return c.fault.Swap(0) }

// Disable implements Channel. A transfer already on the bus runs to the end
// but raises no event. Disable does not wait for it; see Drain.
func (c *SPIChannel) Disable() {
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()
	if r != nil {
		r.stop()
	}
	c.busy.Store(false)
}

// Drain implements Drainer. It disables the channel and waits for the run
// goroutine to leave the bus.
func (c *SPIChannel) Drain() {
	c.Disable()
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()
	if r == nil {
		return
	}
	<-r.done
	c.busy.Store(false)
}

func (c *SPIChannel) raise(status uint32) {
	for {
		old := c.fault.Load()
		if c.fault.CompareAndSwap(old, old|status) {
			return
		}
	}
}

func (c *SPIChannel) run(r *spiRun, h Handler) {
	defer close(r.done)
	for {
		var t Transfer
		select {
		case <-r.quit:
			return
		case t = <-r.req:
		}
		select {
		case <-r.quit:
			return
		default:
		}
		err := c.bus.Tx(c.payload(t), nil)
		c.busy.Store(false)
		select {
		case <-r.quit:
			return
		default:
		}
		if err != nil {
			c.raise(FaultBus)
			h.Handle(EventFault)
		}
		h.Handle(EventTransferComplete)
	}
}

func (c *SPIChannel) payload(t Transfer) []byte {
	n := t.Count
	if t.Increment {
		if n > len(t.Src) {
			n = len(t.Src)
		}
		return t.Src[:n]
	}
	if cap(c.scratch) < n {
		c.scratch = make([]byte, n)
	}
	p := c.scratch[:n]
	var v byte
	if len(t.Src) > 0 {
		v = t.Src[0]
	}
	for i := range p {
		p[i] = v
	}
	return p
}
