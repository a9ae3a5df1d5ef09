package ws2812

// Order gives the slot of each color channel within one LED's waveform.
type Order struct {
	Green, Red, Blue uint8
}

// Common channel orders. WS2812 parts are wired GRB.
var (
	GRB = Order{Green: 0, Red: 1, Blue: 2}
	RGB = Order{Red: 0, Green: 1, Blue: 2}
	BRG = Order{Blue: 0, Red: 1, Green: 2}
)

// ParseOrder converts a name such as "GRB" into an Order.
func ParseOrder(name string) (Order, error) {
	if len(name) != ChannelsPerLED {
		return Order{}, ErrBadOrder
	}
	var o Order
	var seen uint8
	for i := 0; i < len(name); i++ {
		var bit uint8
		switch name[i] {
		case 'G', 'g':
			o.Green, bit = uint8(i), 1
		case 'R', 'r':
			o.Red, bit = uint8(i), 2
		case 'B', 'b':
			o.Blue, bit = uint8(i), 4
		default:
			return Order{}, ErrBadOrder
		}
		seen |= bit
	}
	if seen != 7 {
		return Order{}, ErrBadOrder
	}
	return o, nil
}

func (o Order) valid() bool {
	return o.Green < ChannelsPerLED && o.Red < ChannelsPerLED && o.Blue < ChannelsPerLED &&
		o.Green != o.Red && o.Green != o.Blue && o.Red != o.Blue
}

// Encoder converts 8 bit intensities into the SPI waveform of a strip.
// The zero value is not usable, see NewEncoder.
type Encoder struct {
	high, low byte
	order     Order
}

// NewEncoder returns an Encoder writing t's symbols with the given channel order.
func NewEncoder(t Timing, order Order) (Encoder, error) {
	if err := t.Validate(); err != nil {
		return Encoder{}, err
	}
	if !order.valid() {
		return Encoder{}, ErrBadOrder
	}
	return Encoder{high: t.High, low: t.Low, order: order}, nil
}

// High returns the symbol for a logic 1.
func (e Encoder) High() byte { return e.high }

// Low returns the symbol for a logic 0.
func (e Encoder) Low() byte { return e.low }

// Order returns the channel order the encoder writes.
func (e Encoder) Order() Order { return e.order }

// EncodeChannel writes the BitsPerChannel symbols of c to dst, most significant
// bit first.
func (e Encoder) EncodeChannel(dst []byte, c uint8) error {
	if len(dst) < BitsPerChannel {
		return ErrShortBuffer
	}
	e.encode(dst[:BitsPerChannel], c)
	return nil
}

func (e Encoder) encode(dst []byte, c uint8) {
	for i := range dst {
		if c&(0x80>>i) != 0 {
			dst[i] = e.high
		} else {
			dst[i] = e.low
		}
	}
}

// EncodeLED writes the waveform of one LED to dst.
func (e Encoder) EncodeLED(dst []byte, g, r, b uint8) error {
	if len(dst) < BytesPerLED {
		return ErrShortBuffer
	}
	e.encode(e.slot(dst, e.order.Green), g)
	e.encode(e.slot(dst, e.order.Red), r)
	e.encode(e.slot(dst, e.order.Blue), b)
	return nil
}

func (e Encoder) slot(led []byte, s uint8) []byte {
	off := int(s) * BitsPerChannel
	return led[off : off+BitsPerChannel]
}

// SetLED encodes the color of LED i of the strip held in dst.
func (e Encoder) SetLED(dst []byte, i int, g, r, b uint8) error {
	led, err := ledAt(dst, i)
	if err != nil {
		return err
	}
	return e.EncodeLED(led, g, r, b)
}

// SetGreen encodes only the green channel of LED i.
func (e Encoder) SetGreen(dst []byte, i int, c uint8) error {
	return e.setChannel(dst, i, e.order.Green, c)
}

// SetRed encodes only the red channel of LED i.
func (e Encoder) SetRed(dst []byte, i int, c uint8) error {
	return e.setChannel(dst, i, e.order.Red, c)
}

// SetBlue encodes only the blue channel of LED i.
func (e Encoder) SetBlue(dst []byte, i int, c uint8) error {
	return e.setChannel(dst, i, e.order.Blue, c)
}

func (e Encoder) setChannel(dst []byte, i int, s uint8, c uint8) error {
	led, err := ledAt(dst, i)
	if err != nil {
		return err
	}
	e.encode(e.slot(led, s), c)
	return nil
}

// Clear fills dst with logic 0 symbols, which turns every LED off.
func (e Encoder) Clear(dst []byte) {
	for i := range dst {
		dst[i] = e.low
	}
}

// DecodeChannel reads back the intensity encoded in src.
func (e Encoder) DecodeChannel(src []byte) (uint8, error) {
	if len(src) < BitsPerChannel {
		return 0, ErrShortBuffer
	}
	var c uint8
	for _, sym := range src[:BitsPerChannel] {
		c <<= 1
		switch sym {
		case e.high:
			c |= 1
		case e.low:
		default:
			return 0, ErrBadSymbol
		}
	}
	return c, nil
}

// DecodeLED reads back the color of LED i of the strip held in src.
func (e Encoder) DecodeLED(src []byte, i int) (g, r, b uint8, err error) {
	led, err := ledAt(src, i)
	if err != nil {
		return 0, 0, 0, err
	}
	if g, err = e.DecodeChannel(e.slot(led, e.order.Green)); err != nil {
		return 0, 0, 0, err
	}
	if r, err = e.DecodeChannel(e.slot(led, e.order.Red)); err != nil {
		return 0, 0, 0, err
	}
	if b, err = e.DecodeChannel(e.slot(led, e.order.Blue)); err != nil {
		return 0, 0, 0, err
	}
	return g, r, b, nil
}

func ledAt(buf []byte, i int) ([]byte, error) {
	if i < 0 {
		return nil, ErrLEDIndex
	}
	off := i * BytesPerLED
	if off+BytesPerLED > len(buf) {
		return nil, ErrLEDIndex
	}
	return buf[off : off+BytesPerLED], nil
}
