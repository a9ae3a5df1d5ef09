package pio

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		got  uint16
		want uint16
	}{
		{"out pins, 1", EncodeOut(SrcDestPins, 1), 0x6001},
		{"out x, 32", EncodeOut(SrcDestX, 32), 0x6020},
		{"jmp 0", EncodeJmp(0, JmpAlways), 0x0000},
		{"jmp x--, 0", EncodeJmp(0, JmpXNZeroDec), 0x0040},
		{"jmp !y, 7", EncodeJmp(7, JmpYZero), 0x0067},
		{"pull block", EncodePull(false, true), 0x80a0},
		{"pull ifempty noblock", EncodePull(true, false), 0x80c0},
		{"set pindirs, 0", EncodeSet(SrcDestPinDirs, 0), 0xe080},
		{"set pins, 1", EncodeSet(SrcDestPins, 1), 0xe001},
		{"nop", EncodeNOP(), 0xa042},
		{"nop [3]", EncodeNOP() | EncodeDelay(3), 0xa342},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s mismatch got!=expected: %#x != %#x", tt.name, tt.got, tt.want)
		}
	}
}

func TestSerialProgram(t *testing.T) {
	program := SerialProgram()
	expectedProgram := []uint16{
		//     .wrap_target
		0x6001, //  0: out    pins, 1
		//     .wrap
	}
	if len(program) != len(expectedProgram) {
		t.Fatalf("program length got!=expected: %d != %d", len(program), len(expectedProgram))
	}
	for i := range program {
		if program[i] != expectedProgram[i] {
			t.Errorf("instr %d mismatch got!=expected: %#x != %#x", i, program[i], expectedProgram[i])
		}
	}
}

func TestSerialConfig(t *testing.T) {
	// SerialProgram loaded at the top slot, driving GPIO 2 at 6.4 MHz from 125 MHz.
	whole, frac, err := ClkDivFromFrequency(6_400_000, 125_000_000)
	if err != nil {
		t.Fatal(err)
	}
	cfg := SerialConfig(31, 2, whole, frac)
	expected := StateMachineConfig{
		ClkDiv:    0x00138800, // 19 + 136/256
		ExecCtrl:  0x0001ff80, // wrap 31..31
		ShiftCtrl: 0x50060000, // join TX, pull threshold 8, autopull, shift left, in shift right
		PinCtrl:   0x04100042, // set 1 pin at 2, out 1 pin at 2
	}
	if cfg != expected {
		t.Errorf("config mismatch got!=expected: %#x != %#x", cfg, expected)
	}
}

func TestDefaultStateMachineConfig(t *testing.T) {
	cfg := DefaultStateMachineConfig()
	if cfg.ClkDiv != 0x00010000 {
		t.Errorf("clkdiv got!=expected: %#x != %#x", cfg.ClkDiv, 0x00010000)
	}
	if cfg.ExecCtrl != 0x0001f000 {
		t.Errorf("execctrl got!=expected: %#x != %#x", cfg.ExecCtrl, 0x0001f000)
	}
	if cfg.ShiftCtrl != 0x000c0000 {
		t.Errorf("shiftctrl got!=expected: %#x != %#x", cfg.ShiftCtrl, 0x000c0000)
	}
}

func TestClkDivFromFrequency(t *testing.T) {
	tests := []struct {
		freq, cpu uint32
		whole     uint16
		frac      uint8
		err       error
	}{
		{freq: 8_000_000, cpu: 125_000_000, whole: 15, frac: 160},
		{freq: 125_000_000, cpu: 125_000_000, whole: 1},
		{freq: 250_000_000, cpu: 125_000_000, err: ErrClkDivTooSmall},
		{freq: 1, cpu: 125_000_000, err: ErrClkDivTooLarge},
		{freq: 0, cpu: 125_000_000, err: ErrClkDivTooLarge},
	}
	for _, tt := range tests {
		whole, frac, err := ClkDivFromFrequency(tt.freq, tt.cpu)
		if err != tt.err {
			t.Errorf("%d Hz: got err %v, want %v", tt.freq, err, tt.err)
			continue
		}
		if whole != tt.whole || frac != tt.frac {
			t.Errorf("%d Hz: got!=expected: %d+%d/256 != %d+%d/256", tt.freq, whole, frac, tt.whole, tt.frac)
		}
	}
}

func TestProgramSpace(t *testing.T) {
	var s programSpace
	off, err := s.find(1, -1)
	if err != nil || off != 31 {
		t.Fatalf("relocatable program: offset %d err %v, want 31", off, err)
	}
	s.reserve(off, 1)
	if off, _ = s.find(4, -1); off != 27 {
		t.Errorf("next program offset got!=expected: %d != %d", off, 27)
	}
	if _, err := s.find(1, 31); err != ErrNoSpaceAtOffset {
		t.Errorf("taken origin: got err %v, want %v", err, ErrNoSpaceAtOffset)
	}
	if _, err := s.find(32, -1); err != ErrOutOfProgramSpace {
		t.Errorf("full memory: got err %v, want %v", err, ErrOutOfProgramSpace)
	}
	s.release(31, 1)
	if s != 0 {
		t.Errorf("release left %#x", uint32(s))
	}
	if off, err := s.find(32, 0); err != nil || off != 0 {
		t.Errorf("whole memory: offset %d err %v", off, err)
	}
}

func TestRelocate(t *testing.T) {
	program := []uint16{
		EncodeOut(SrcDestPins, 1),
		EncodeJmp(0, JmpXNZeroDec),
		EncodeNOP(),
	}
	got := relocate(program, 10)
	expected := []uint16{0x6001, 0x004a, 0xa042}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("instr %d mismatch got!=expected: %#x != %#x", i, got[i], expected[i])
		}
	}
	if program[1] != 0x0040 {
		t.Error("relocate modified its input")
	}
}
