package spidma

import (
	"errors"
	"runtime"
	"time"
)

var (
	ErrNoChannel   = errors.New("spidma:no transfer channel")
	ErrNoBuffer    = errors.New("spidma:empty frame buffer")
	ErrShortBuffer = errors.New("spidma:frame buffer shorter than one LED")
	ErrFrameLength = errors.New("spidma:frame buffer not a whole number of LEDs")
	ErrNilFlag     = errors.New("spidma:nil completion flag")
	ErrArmed       = errors.New("spidma:engine already started")
	ErrNotArmed    = errors.New("spidma:engine not started")
	ErrHalted      = errors.New("spidma:halted on transport fault")
	ErrStalled     = errors.New("spidma:no frame completed before timeout")

	errNoBus = errors.New("spidma:nil SPI bus")
)

func gosched() {
	runtime.Gosched()
}

type deadline struct {
	t time.Time
}

func (dl deadline) expired() bool {
	if dl.t.IsZero() {
		return false
	}
	return time.Since(dl.t) > 0
}

// newDeadline returns a deadline timeout from now. A timeout of zero or less
// never expires.
func newDeadline(timeout time.Duration) deadline {
	if timeout <= 0 {
		return deadline{}
	}
	return deadline{t: time.Now().Add(timeout)}
}
