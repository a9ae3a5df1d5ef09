// Package pattern generates simple animations for an LED strip.
//
// The color wheel runs through six sections, changing one channel at a time:
//
//	0: R 255, G 0→255, B 0
//	1: R 255→0, G 255, B 0
//	2: R 0, G 255, B 0→255
//	3: R 0, G 255→0, B 255
//	4: R 0→255, G 0, B 255
//	5: R 255, G 0, B 255→0
package pattern

// WheelSteps is the number of Shift calls that bring a color back to itself.
const WheelSteps = 6 * 255

// GRB is one LED color, in the order the LEDs expect it.
type GRB struct {
	G, R, B uint8
}

// Wheel returns the color at position pos of the wheel. pos wraps.
func Wheel(pos int) GRB {
	pos %= WheelSteps
	if pos < 0 {
		pos += WheelSteps
	}
	k := uint8(pos % 255)
	switch pos / 255 {
	case 0:
		return GRB{G: k, R: 255}
	case 1:
		return GRB{G: 255, R: 255 - k}
	case 2:
		return GRB{G: 255, B: k}
	case 3:
		return GRB{G: 255 - k, B: 255}
	case 4:
		return GRB{R: k, B: 255}
	default:
		return GRB{R: 255, B: 255 - k}
	}
}

// Shift moves c one step along the wheel. Colors that are not on the wheel
// are walked towards it.
func Shift(c *GRB) {
	switch {
	case c.R == 0xff && c.G != 0xff:
		if c.B > 0 {
			c.B--
		} else {
			c.G++
		}
	case c.G == 0xff && c.B != 0xff:
		if c.R > 0 {
			c.R--
		} else {
			c.B++
		}
	default:
		if c.G > 0 {
			c.G--
		} else {
			c.R++
		}
	}
}

// Init spreads leds evenly around the wheel, starting at offset.
func Init(leds []GRB, offset int) {
	n := len(leds)
	for i := range leds {
		leds[i] = Wheel(offset + i*WheelSteps/n)
	}
}

// ShiftAll moves every LED one step along the wheel.
func ShiftAll(leds []GRB) {
	for i := range leds {
		Shift(&leds[i])
	}
}
