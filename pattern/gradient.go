package pattern

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Gradient blends from one color to another along a strip in the Lab color
// space, which keeps the perceived brightness steady.
type Gradient struct {
	from, to colorful.Color
}

// NewGradient parses two "#rrggbb" colors.
func NewGradient(from, to string) (*Gradient, error) {
	c1, err := colorful.Hex(from)
	if err != nil {
		return nil, err
	}
	c2, err := colorful.Hex(to)
	if err != nil {
		return nil, err
	}
	return &Gradient{from: c1, to: c2}, nil
}

// At returns the color at t, clamped to [0, 1].
func (g *Gradient) At(t float64) GRB {
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	r, gr, b := g.from.BlendLab(g.to, t).Clamped().RGB255()
	return GRB{G: gr, R: r, B: b}
}

// Fill writes the gradient into leds, shifted by phase (in LEDs) so that
// successive calls scroll it. The gradient runs out and back so the strip
// wraps without a seam.
func (g *Gradient) Fill(leds []GRB, phase int) {
	n := len(leds)
	if n == 0 {
		return
	}
	for i := range leds {
		p := (i + phase) % n
		if p < 0 {
			p += n
		}
		t := 2 * float64(p) / float64(n)
		if t > 1 {
			t = 2 - t
		}
		leds[i] = g.At(t)
	}
}
