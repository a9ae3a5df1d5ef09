package ws2812

import (
	"errors"
	"math/bits"
	"time"
)

// Each protocol bit is sent as one SPI byte, so the DMA engine can move the
// waveform with plain 8 bit source increments.
const (
	BitsPerChannel = 8
	ChannelsPerLED = 3
	// BytesPerLED is the waveform length of a single LED.
	BytesPerLED = ChannelsPerLED * BitsPerChannel
)

// Minimum time the data line must stay low before the LEDs latch a frame.
const (
	LatchWS2812  = 50 * time.Microsecond
	LatchWS2812B = 280 * time.Microsecond
)

var (
	ErrClockRange  = errors.New("ws2812:SPI clock outside WS2812 bit timing")
	ErrBadTiming   = errors.New("ws2812:invalid timing")
	ErrShortBuffer = errors.New("ws2812:destination too short")
	ErrBadSymbol   = errors.New("ws2812:unknown symbol")
	ErrBadOrder    = errors.New("ws2812:channel order is not a permutation")
	ErrLEDIndex    = errors.New("ws2812:LED index out of range")
)

// Timing holds the protocol constants for one SPI clock rate. High and Low are
// the byte patterns shifted out for a logic 1 and a logic 0. The LED samples
// the line about 600ns after the rising edge, so the fraction of set bits in
// each pattern is what encodes the bit.
type Timing struct {
	ClockHz uint32
	High    byte
	Low     byte
	// ResetLen is the number of zero bytes that make up the latch gap.
	ResetLen int
}

// Timing6400kHz gives a 1.25µs bit cell: T1H 781ns, T0H 312ns.
var Timing6400kHz = Timing{
	ClockHz:  6_400_000,
	High:     0xF8,
	Low:      0xC0,
	ResetLen: 224,
}

// Timing8MHz gives a 1µs bit cell: T1H 750ns, T0H 250ns.
var Timing8MHz = Timing{
	ClockHz:  8_000_000,
	High:     0xFC,
	Low:      0xC0,
	ResetLen: 280,
}

// DefaultTiming is used when no clock rate is configured.
var DefaultTiming = Timing6400kHz

// NewTiming derives the HIGH and LOW symbols and the reset gap for an SPI bus
// running at clockHz. latch is the minimum low time of the target part; zero
// selects LatchWS2812B.
func NewTiming(clockHz uint32, latch time.Duration) (Timing, error) {
	// https://cdn-shop.adafruit.com/datasheets/WS2812B.pdf
	const (
		ps       = 1000 // picoseconds per nanosecond
		t0h      = 400 * ps
		t1h      = 800 * ps
		tol      = 150 * ps
		cell     = 1250 * ps
		cellTol  = 600 * ps
		maxHigh  = BitsPerChannel - 1 // a 1 must still fall before the next cell.
		psPerSec = 1_000_000_000_000

		// Duty limits in percent of the bit cell.
		minHighDuty = 60
		maxLowDuty  = 35
	)
	if clockHz == 0 {
		return Timing{}, ErrClockRange
	}
	if latch <= 0 {
		latch = LatchWS2812B
	}
	bit := uint64(psPerSec) / uint64(clockHz)
	symbol := bit * BitsPerChannel
	if symbol < cell-cellTol || symbol > cell+cellTol {
		return Timing{}, ErrClockRange
	}
	n0 := (t0h - tol + bit - 1) / bit
	n1 := (t1h + bit/2) / bit
	if n0 == 0 || n1 > maxHigh || n0 >= n1 {
		return Timing{}, ErrClockRange
	}
	if h := n0 * bit; h < t0h-tol || h > t0h+tol {
		return Timing{}, ErrClockRange
	}
	if h := n1 * bit; h < t1h-tol || h > t1h+tol {
		return Timing{}, ErrClockRange
	}
	if n1*100 <= minHighDuty*BitsPerChannel || n0*100 >= maxLowDuty*BitsPerChannel {
		return Timing{}, ErrClockRange
	}
	latchPs := uint64(latch.Nanoseconds()) * ps
	return Timing{
		ClockHz:  clockHz,
		High:     leadingOnes(n1),
		Low:      leadingOnes(n0),
		ResetLen: int((latchPs + symbol - 1) / symbol),
	}, nil
}

func leadingOnes(n uint64) byte {
	return byte(0xFF << (BitsPerChannel - n))
}

// Validate reports whether t can be streamed.
func (t Timing) Validate() error {
	if t.ClockHz == 0 || t.High == t.Low || t.ResetLen <= 0 {
		return ErrBadTiming
	}
	return nil
}

// SymbolPeriod is the time taken to shift out one symbol.
func (t Timing) SymbolPeriod() time.Duration {
	return time.Duration(BitsPerChannel) * time.Second / time.Duration(t.ClockHz)
}

// ResetGap is how long the line is held low between frames.
func (t Timing) ResetGap() time.Duration {
	return time.Duration(t.ResetLen) * t.SymbolPeriod()
}

// DutyHigh returns the fraction of the bit cell a logic 1 keeps the line high.
func (t Timing) DutyHigh() float64 { return duty(t.High) }

// DutyLow returns the fraction of the bit cell a logic 0 keeps the line high.
func (t Timing) DutyLow() float64 { return duty(t.Low) }

func duty(sym byte) float64 {
	return float64(bits.OnesCount8(sym)) / BitsPerChannel
}
