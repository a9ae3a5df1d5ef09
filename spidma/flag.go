package spidma

import (
	"sync/atomic"
	"time"
)

// Flag is the completion signal shared between the engine and the code that
// refills the frame. The engine sets it each time a frame has been shifted
// out and never clears it.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) set() { f.v.Store(true) }

// IsSet reports whether a frame completed since the flag was last cleared.
func (f *Flag) IsSet() bool { return f.v.Load() }

// Clear resets the flag.
func (f *Flag) Clear() { f.v.Store(false) }

// Take clears the flag and reports whether it was set.
func (f *Flag) Take() bool { return f.v.CompareAndSwap(true, false) }

// Wait polls until a frame completes, then clears the flag. A timeout of
// zero waits forever. ErrStalled is returned when the deadline passes, which
// means the bus stopped completing transfers.
func (f *Flag) Wait(timeout time.Duration) error {
	d := newDeadline(timeout)
	for !f.Take() {
		if d.expired() {
			return ErrStalled
		}
		gosched()
	}
	return nil
}
