package ws2812

import (
	"bytes"
	"image/color"
	"testing"
)

func newTestEncoder(t *testing.T) Encoder {
	t.Helper()
	enc, err := NewEncoder(Timing6400kHz, GRB)
	if err != nil {
		t.Fatal(err)
	}
	return enc
}

func TestEncodeChannelRoundTrip(t *testing.T) {
	enc := newTestEncoder(t)
	var dst [BitsPerChannel]byte
	for c := 0; c <= 0xff; c++ {
		if err := enc.EncodeChannel(dst[:], uint8(c)); err != nil {
			t.Fatal(err)
		}
		for i, sym := range dst {
			want := enc.Low()
			if c&(0x80>>i) != 0 {
				want = enc.High()
			}
			if sym != want {
				t.Errorf("value %#x bit %d: got!=expected: %#x != %#x", c, i, sym, want)
			}
		}
		got, err := enc.DecodeChannel(dst[:])
		if err != nil {
			t.Fatal(err)
		}
		if got != uint8(c) {
			t.Errorf("decode mismatch got!=expected: %#x != %#x", got, c)
		}
	}
}

func TestEncodeChannelShortBuffer(t *testing.T) {
	enc := newTestEncoder(t)
	dst := make([]byte, BitsPerChannel-1)
	if err := enc.EncodeChannel(dst, 0xff); err != ErrShortBuffer {
		t.Errorf("got err %v, want %v", err, ErrShortBuffer)
	}
	if err := enc.EncodeLED(make([]byte, BytesPerLED-1), 1, 2, 3); err != ErrShortBuffer {
		t.Errorf("got err %v, want %v", err, ErrShortBuffer)
	}
	for _, b := range dst {
		if b != 0 {
			t.Fatal("short buffer was written")
		}
	}
}

func TestEncodeLEDSingleRed(t *testing.T) {
	enc := newTestEncoder(t)
	buf := make([]byte, BytesPerLED)
	if err := enc.EncodeLED(buf, 0x00, 0xff, 0x00); err != nil {
		t.Fatal(err)
	}
	low := bytes.Repeat([]byte{enc.Low()}, BitsPerChannel)
	high := bytes.Repeat([]byte{enc.High()}, BitsPerChannel)
	if !bytes.Equal(buf[0:8], low) {
		t.Errorf("green: got %#x", buf[0:8])
	}
	if !bytes.Equal(buf[8:16], high) {
		t.Errorf("red: got %#x", buf[8:16])
	}
	if !bytes.Equal(buf[16:24], low) {
		t.Errorf("blue: got %#x", buf[16:24])
	}
}

func TestSetLEDTwoLEDs(t *testing.T) {
	enc := newTestEncoder(t)
	buf := make([]byte, 2*BytesPerLED)
	enc.Clear(buf)
	if err := enc.SetLED(buf, 0, 0xff, 0x00, 0x00); err != nil {
		t.Fatal(err)
	}
	if err := enc.SetLED(buf, 1, 0x00, 0xff, 0x00); err != nil {
		t.Fatal(err)
	}
	want := [][3]uint8{{0xff, 0, 0}, {0, 0xff, 0}}
	for i, w := range want {
		g, r, b, err := enc.DecodeLED(buf, i)
		if err != nil {
			t.Fatal(err)
		}
		if g != w[0] || r != w[1] || b != w[2] {
			t.Errorf("LED %d: got %#x,%#x,%#x want %#x,%#x,%#x", i, g, r, b, w[0], w[1], w[2])
		}
	}
	// LED 0 green is the first eight symbols, LED 1 red starts at its own base.
	for i := 0; i < BitsPerChannel; i++ {
		if buf[i] != enc.High() {
			t.Errorf("LED 0 green symbol %d: %#x", i, buf[i])
		}
		if buf[BytesPerLED+BitsPerChannel+i] != enc.High() {
			t.Errorf("LED 1 red symbol %d: %#x", i, buf[BytesPerLED+BitsPerChannel+i])
		}
	}
	if err := enc.SetLED(buf, 2, 1, 1, 1); err != ErrLEDIndex {
		t.Errorf("got err %v, want %v", err, ErrLEDIndex)
	}
	if err := enc.SetLED(buf, -1, 1, 1, 1); err != ErrLEDIndex {
		t.Errorf("got err %v, want %v", err, ErrLEDIndex)
	}
}

func TestChannelsIndependent(t *testing.T) {
	enc := newTestEncoder(t)
	base := make([]byte, BytesPerLED)
	enc.EncodeLED(base, 0x12, 0x34, 0x56)
	for _, tt := range []struct {
		name string
		set  func([]byte) error
		slot int
	}{
		{"green", func(b []byte) error { return enc.SetGreen(b, 0, 0xa5) }, 0},
		{"red", func(b []byte) error { return enc.SetRed(b, 0, 0xa5) }, 1},
		{"blue", func(b []byte) error { return enc.SetBlue(b, 0, 0xa5) }, 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			buf := append([]byte(nil), base...)
			if err := tt.set(buf); err != nil {
				t.Fatal(err)
			}
			for s := 0; s < ChannelsPerLED; s++ {
				lo, hi := s*BitsPerChannel, (s+1)*BitsPerChannel
				changed := !bytes.Equal(buf[lo:hi], base[lo:hi])
				if s == tt.slot && !changed {
					t.Errorf("slot %d not written", s)
				}
				if s != tt.slot && changed {
					t.Errorf("slot %d modified", s)
				}
			}
		})
	}
}

func TestEncodeOrder(t *testing.T) {
	enc, err := NewEncoder(Timing6400kHz, RGB)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, BytesPerLED)
	enc.EncodeLED(buf, 0x00, 0xff, 0x00)
	if buf[0] != enc.High() || buf[8] != enc.Low() {
		t.Errorf("RGB order: red not in first slot: %#x", buf)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name    string
		want    Order
		wantErr bool
	}{
		{name: "GRB", want: GRB},
		{name: "rgb", want: RGB},
		{name: "BRG", want: BRG},
		{name: "GGB", wantErr: true},
		{name: "GRBW", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrder(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseOrder() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if _, err := NewEncoder(Timing6400kHz, Order{0, 0, 1}); err != ErrBadOrder {
		t.Errorf("got err %v, want %v", err, ErrBadOrder)
	}
}

func TestDecodeUnknownSymbol(t *testing.T) {
	enc := newTestEncoder(t)
	buf := make([]byte, BitsPerChannel)
	if _, err := enc.DecodeChannel(buf); err != ErrBadSymbol {
		t.Errorf("got err %v, want %v", err, ErrBadSymbol)
	}
}

func TestFrame(t *testing.T) {
	enc := newTestEncoder(t)
	if _, err := NewFrame(0, enc); err == nil {
		t.Fatal("expected error for empty frame")
	}
	f, err := NewFrame(3, enc)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 3 || len(f.Bytes()) != 3*BytesPerLED {
		t.Fatalf("frame size %d/%d", f.Len(), len(f.Bytes()))
	}
	for i, b := range f.Bytes() {
		if b != enc.Low() {
			t.Fatalf("byte %d not cleared: %#x", i, b)
		}
	}
	if err := f.SetColor(1, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}); err != nil {
		t.Fatal(err)
	}
	g, r, b, err := f.GRB(1)
	if err != nil {
		t.Fatal(err)
	}
	if g != 0x20 || r != 0x10 || b != 0x30 {
		t.Errorf("got g=%#x r=%#x b=%#x", g, r, b)
	}
	f.Fill(1, 2, 3)
	for i := 0; i < f.Len(); i++ {
		if g, r, b, _ := f.GRB(i); g != 1 || r != 2 || b != 3 {
			t.Errorf("LED %d: %d,%d,%d", i, g, r, b)
		}
	}
}
