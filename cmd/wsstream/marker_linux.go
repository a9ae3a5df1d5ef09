package main

import (
	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"

	"github.com/tinygo-org/wsdma/internal/config"
)

// marker toggles a GPIO line once per frame, for triggering a scope on the
// start of the reset gap.
type marker struct {
	line  *gpiocdev.Line
	value int
}

func openMarker(m config.Marker) (*marker, error) {
	if !m.Enabled() {
		return &marker{}, nil
	}
	l, err := gpiocdev.RequestLine(m.Chip, m.Line, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("wsstream"))
	if err != nil {
		return nil, errors.Wrapf(err, "marker: %s line %d", m.Chip, m.Line)
	}
	return &marker{line: l}, nil
}

func (m *marker) Toggle() error {
	if m.line == nil {
		return nil
	}
	m.value ^= 1
	return m.line.SetValue(m.value)
}

func (m *marker) Close() error {
	if m.line == nil {
		return nil
	}
	return m.line.Close()
}
