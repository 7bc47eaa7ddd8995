// SPDX-License-Identifier: MIT

//go:build linux

// Package cdev drives GPIO lines through the Linux GPIO character
// device. It works on any board with a gpiochip, not just Raspberry
// Pis, at the cost of a syscall per pin operation. The DS1302 has no
// maximum clock period, so the slower edges only stretch transfers,
// they do not corrupt them.
package cdev

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/toyclock/ds1302"
)

// DefaultChip is the gpiochip of the Raspberry Pi's header pins.
const DefaultChip = "gpiochip0"

// Pin is a requested GPIO line. The line starts as an output driven
// low with bias disabled, matching the idle state of the DS1302 bus.
type Pin struct {
	line *gpiocdev.Line
	out  int
}

// RequestPin requests the line at offset on the named gpiochip.
func RequestPin(chip string, offset int) (*Pin, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithBiasDisabled,
		gpiocdev.WithConsumer("toyctl"))
	if err != nil {
		return nil, fmt.Errorf("cdev: request %s:%d: %w", chip, offset, err)
	}
	return &Pin{line: l}, nil
}

// Close releases the line.
func (p *Pin) Close() error {
	return p.line.Close()
}

// Write drives the line level.
//
// Errors on a successfully requested line mean the gpiochip went away;
// the bus protocol has no way to report that mid-transfer, so they are
// dropped and surface as a failed device probe instead.
func (p *Pin) Write(l ds1302.Level) {
	p.out = 0
	if l == ds1302.High {
		p.out = 1
	}
	p.line.SetValue(p.out)
}

// Read returns the line level.
func (p *Pin) Read() ds1302.Level {
	v, _ := p.line.Value()
	return ds1302.Level(v != 0)
}

// SetDirection switches the line between input and output. Returning
// to output re-drives the last written level.
func (p *Pin) SetDirection(d ds1302.Direction) {
	if d == ds1302.Output {
		p.line.Reconfigure(gpiocdev.AsOutput(p.out))
		return
	}
	p.line.Reconfigure(gpiocdev.AsInput)
}
