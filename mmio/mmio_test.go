// SPDX-License-Identifier: MIT

//go:build linux

package mmio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocIs2711(t *testing.T) {
	tests := []struct {
		name   string
		compat string
		want   bool
	}{
		{"pi4", "raspberrypi,4-model-b\x00brcm,bcm2711\x00", true},
		{"pi3", "raspberrypi,3-model-b\x00brcm,bcm2837\x00", false},
		{"zero", "raspberrypi,model-zero-w\x00brcm,bcm2835\x00", false},
		{"empty", "", false},
		{"substring only", "brcm,bcm27110\x00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, socIs2711([]byte(tt.compat)))
		})
	}
}

func TestPinRange(t *testing.T) {
	c := &Chip{}
	for _, num := range []int{-1, MaxPin, 100} {
		_, err := c.Pin(num)
		assert.ErrorIs(t, err, ErrBadPin, "pin %d", num)
	}
	p, err := c.Pin(23)
	assert.NoError(t, err)
	assert.Equal(t, 23, p.Num())
}
