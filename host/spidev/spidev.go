// Package spidev drives a strip from a Linux SPI port through periph.io.
//
// The kernel driver has no continuous DMA mode, so the port is wrapped as a
// drivers.SPI and handed to spidma.SPIChannel, which re-arms it from a
// goroutine.
package spidev

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus is an SPI connection usable as a drivers.SPI.
type Bus struct {
	conn   spi.Conn
	port   spi.PortCloser
	maxTx  int
	closed bool
}

// Open initializes the host drivers, opens the named port ("" for the first
// one) and connects in mode 0 at clockHz with 8 bit words.
func Open(name string, clockHz uint32) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "spidev: host init")
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "spidev: open port %q", name)
	}
	c, err := p.Connect(physic.Frequency(clockHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "spidev: connect at %d Hz", clockHz)
	}
	b := NewBus(c)
	b.port = p
	log.WithFields(log.Fields{"port": p.String(), "clock_hz": clockHz, "max_tx": b.maxTx}).Debug("spidev: connected")
	return b, nil
}

// NewBus wraps an already connected port.
func NewBus(c spi.Conn) *Bus {
	b := &Bus{conn: c}
	if l, ok := c.(conn.Limits); ok {
		b.maxTx = l.MaxTxSize()
	}
	return b
}

// Tx implements drivers.SPI. Write-only transfers larger than the port
// limit are split; the line stays low between chunks, which only stretches
// a bit cell's low time.
func (b *Bus) Tx(w, r []byte) error {
	if b.closed {
		return errors.New("spidev: bus closed")
	}
	if r != nil || b.maxTx <= 0 || len(w) <= b.maxTx {
		return errors.WithMessage(b.conn.Tx(w, r), "spidev: tx")
	}
	for len(w) > 0 {
		n := len(w)
		if n > b.maxTx {
			n = b.maxTx
		}
		if err := b.conn.Tx(w[:n], nil); err != nil {
			return errors.WithMessagef(err, "spidev: tx chunk of %d", n)
		}
		w = w[n:]
	}
	return nil
}

// Transfer implements drivers.SPI.
func (b *Bus) Transfer(c byte) (byte, error) {
	var rx [1]byte
	err := b.Tx([]byte{c}, rx[:])
	return rx[0], err
}

// Close releases the port.
func (b *Bus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if b.port == nil {
		return nil
	}
	return errors.Wrap(b.port.Close(), "spidev: close")
}
