package ws2812

import (
	"testing"
	"time"
)

func TestNewTimingPresets(t *testing.T) {
	tests := []struct {
		name string
		hz   uint32
		want Timing
	}{
		{name: "6.4MHz", hz: 6_400_000, want: Timing6400kHz},
		{name: "8MHz", hz: 8_000_000, want: Timing8MHz},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTiming(tt.hz, LatchWS2812B)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("timing mismatch got!=expected: %+v != %+v", got, tt.want)
			}
		})
	}
}

func TestNewTimingRejectsClock(t *testing.T) {
	for _, hz := range []uint32{0, 1_000_000, 2_500_000, 4_000_000, 5_000_000, 8_500_000, 9_000_000, 10_000_000, 20_000_000} {
		if _, err := NewTiming(hz, 0); err != ErrClockRange {
			t.Errorf("clock %d: got err %v, want %v", hz, err, ErrClockRange)
		}
	}
}

func TestTimingDuty(t *testing.T) {
	for _, tm := range []Timing{Timing6400kHz, Timing8MHz} {
		if d := tm.DutyHigh(); d <= 0.6 {
			t.Errorf("%d Hz: HIGH duty %.3f not above 0.6", tm.ClockHz, d)
		}
		if d := tm.DutyLow(); d >= 0.35 {
			t.Errorf("%d Hz: LOW duty %.3f not below 0.35", tm.ClockHz, d)
		}
		// A logic 1 must return low before the next cell starts.
		if tm.High&1 != 0 {
			t.Errorf("%d Hz: HIGH symbol %#x ends high", tm.ClockHz, tm.High)
		}
	}
}

func TestNewTimingClockSweep(t *testing.T) {
	accepted := 0
	for hz := uint32(3_000_000); hz <= 12_000_000; hz += 100_000 {
		tm, err := NewTiming(hz, 0)
		if err != nil {
			if err != ErrClockRange {
				t.Errorf("clock %d: unexpected error %v", hz, err)
			}
			continue
		}
		accepted++
		if d := tm.DutyHigh(); d <= 0.6 {
			t.Errorf("clock %d accepted: HIGH %#x duty %.3f not above 0.6", hz, tm.High, d)
		}
		if d := tm.DutyLow(); d >= 0.35 {
			t.Errorf("clock %d accepted: LOW %#x duty %.3f not below 0.35", hz, tm.Low, d)
		}
		if tm.High&1 != 0 {
			t.Errorf("clock %d accepted: HIGH %#x ends high", hz, tm.High)
		}
		if err := tm.Validate(); err != nil {
			t.Errorf("clock %d accepted: %v", hz, err)
		}
	}
	if accepted == 0 {
		t.Error("no clock accepted")
	}
}

func TestResetGapCoversLatch(t *testing.T) {
	for _, latch := range []time.Duration{LatchWS2812, LatchWS2812B, 0} {
		tm, err := NewTiming(6_400_000, latch)
		if err != nil {
			t.Fatal(err)
		}
		want := latch
		if want == 0 {
			want = LatchWS2812B
		}
		if gap := tm.ResetGap(); gap < want {
			t.Errorf("reset gap %v shorter than latch %v", gap, want)
		}
		if gap := tm.ResetGap() - tm.SymbolPeriod(); gap >= want {
			t.Errorf("reset gap %v longer than needed for latch %v", tm.ResetGap(), want)
		}
	}
}

func TestTimingValidate(t *testing.T) {
	if err := DefaultTiming.Validate(); err != nil {
		t.Fatal(err)
	}
	bad := []Timing{
		{},
		{ClockHz: 6_400_000, High: 0xC0, Low: 0xC0, ResetLen: 1},
		{ClockHz: 6_400_000, High: 0xF8, Low: 0xC0},
	}
	for _, tm := range bad {
		if err := tm.Validate(); err != ErrBadTiming {
			t.Errorf("%+v: got err %v, want %v", tm, err, ErrBadTiming)
		}
	}
}
