package ws2812

import "image/color"

// Frame is the transmit buffer of a strip of fixed length. It is allocated
// once and rewritten in place between transmissions.
type Frame struct {
	buf []byte
	enc Encoder
}

// NewFrame allocates a frame for n LEDs with every LED off.
func NewFrame(n int, enc Encoder) (*Frame, error) {
	if n <= 0 {
		return nil, ErrLEDIndex
	}
	f := &Frame{buf: make([]byte, n*BytesPerLED), enc: enc}
	f.Clear()
	return f, nil
}

// Len returns the number of LEDs in the frame.
func (f *Frame) Len() int { return len(f.buf) / BytesPerLED }

// Bytes returns the waveform as it is shifted out on the bus.
func (f *Frame) Bytes() []byte { return f.buf }

// Encoder returns the encoder used to fill the frame.
func (f *Frame) Encoder() Encoder { return f.enc }

// Clear turns every LED off.
func (f *Frame) Clear() { f.enc.Clear(f.buf) }

// SetGRB sets LED i from its green, red and blue intensities.
func (f *Frame) SetGRB(i int, g, r, b uint8) error {
	return f.enc.SetLED(f.buf, i, g, r, b)
}

// SetRGB sets LED i from its red, green and blue intensities.
func (f *Frame) SetRGB(i int, r, g, b uint8) error {
	return f.enc.SetLED(f.buf, i, g, r, b)
}

// SetColor wraps SetRGB for a [color.Color] type.
func (f *Frame) SetColor(i int, c color.Color) error {
	r16, g16, b16, _ := c.RGBA()
	return f.SetRGB(i, uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))
}

// GRB decodes the color of LED i.
func (f *Frame) GRB(i int) (g, r, b uint8, err error) {
	return f.enc.DecodeLED(f.buf, i)
}

// Fill sets every LED to the same color.
func (f *Frame) Fill(g, r, b uint8) {
	for i := 0; i < f.Len(); i++ {
		f.enc.SetLED(f.buf, i, g, r, b)
	}
}
