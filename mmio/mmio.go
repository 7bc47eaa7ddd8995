// SPDX-License-Identifier: MIT

//go:build linux

// Package mmio drives Raspberry Pi GPIO pins through the memory-mapped
// BCM283x register block.
//
// This is the backend of choice for the DS1302 bus: register pokes take
// tens of nanoseconds, so the microsecond-scale setup and hold times of
// the chip are dominated by deliberate delays rather than syscall
// overhead. The mapping comes from /dev/gpiomem, which needs no root on
// a stock Raspberry Pi OS.
//
// Pin numbers are raw BCM GPIO numbers, not J8 header positions.
package mmio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/toyclock/ds1302"
)

const (
	memPath   = "/dev/gpiomem"
	memLength = 4096

	// MaxPin is one past the highest usable BCM GPIO number.
	MaxPin = 28

	modeMask uint32 = 7 // fsel field, 3 bits per pin
	pullMask uint32 = 3

	fselInput  uint32 = 0
	fselOutput uint32 = 1

	setReg      = 7
	clearReg    = 10
	levelReg    = 13
	pudReg2835  = 37 // GPPUD
	pudClk2835  = 38 // GPPUDCLK0
	pullReg2711 = 57 // GPIO_PUP_PDN_CNTRL_REG0
)

// Pull selects the pin's internal resistor. The value cannot be read
// back from BCM2835 hardware, so callers must track it themselves.
type Pull int

const (
	PullNone Pull = iota
	PullDown
	PullUp
)

// ErrBadPin indicates a pin number outside the usable BCM range.
var ErrBadPin = errors.New("pin number out of range")

// Chip is a memory mapping of the SoC's GPIO register block.
type Chip struct {
	mu     sync.Mutex // covers read/modify/write registers (fsel, pull)
	mem    []uint32
	mem8   []byte
	is2711 bool
}

// Open maps the GPIO register block.
func Open() (*Chip, error) {
	f, err := os.OpenFile(memPath, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: %w", err)
	}
	defer f.Close()

	mem8, err := unix.Mmap(int(f.Fd()), 0, memLength,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: mmap: %w", err)
	}
	return &Chip{
		mem:    unsafe.Slice((*uint32)(unsafe.Pointer(&mem8[0])), memLength/4),
		mem8:   mem8,
		is2711: is2711(),
	}, nil
}

// Close unmaps the register block. Pins obtained from the chip must not
// be used afterwards.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = nil
	return unix.Munmap(c.mem8)
}

// is2711 reports whether the SoC uses the BCM2711 pull registers. The
// device tree names the SoC; anything unrecognized gets the legacy
// GPPUD/GPPUDCLK handling.
func is2711() bool {
	compat, err := os.ReadFile("/proc/device-tree/compatible")
	if err != nil {
		return false
	}
	return socIs2711(compat)
}

func socIs2711(compat []byte) bool {
	for _, s := range strings.Split(string(compat), "\x00") {
		if s == "brcm,bcm2711" {
			return true
		}
	}
	return false
}

// Pin represents a single GPIO line on the chip.
type Pin struct {
	chip *Chip
	num  int
	fsel int
	mask uint32
}

// Pin returns the pin for the given BCM GPIO number.
func (c *Chip) Pin(num int) (*Pin, error) {
	if num < 0 || num >= MaxPin {
		return nil, fmt.Errorf("%w: %d", ErrBadPin, num)
	}
	return &Pin{
		chip: c,
		num:  num,
		fsel: num / 10,
		mask: 1 << uint(num),
	}, nil
}

// Num returns the BCM GPIO number of the pin.
func (p *Pin) Num() int {
	return p.num
}

// Write drives the pin level. The pin must be in output mode.
func (p *Pin) Write(l ds1302.Level) {
	// set/clear registers are write-only triggers, no lock needed
	if l == ds1302.High {
		p.chip.mem[setReg] = p.mask
	} else {
		p.chip.mem[clearReg] = p.mask
	}
}

// Read returns the pin level.
func (p *Pin) Read() ds1302.Level {
	return ds1302.Level(p.chip.mem[levelReg]&p.mask != 0)
}

// SetDirection switches the pin between input and output mode.
func (p *Pin) SetDirection(d ds1302.Direction) {
	mode := fselInput
	if d == ds1302.Output {
		mode = fselOutput
	}
	shift := uint(p.num%10) * 3

	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.chip.mem[p.fsel] = p.chip.mem[p.fsel]&^(modeMask<<shift) | mode<<shift
}

// SetPull sets the pin's internal pull resistor.
func (p *Pin) SetPull(pull Pull) {
	if p.chip.is2711 {
		p.setPull2711(pull)
		return
	}
	p.setPull2835(pull)
}

// setPull2835 clocks the pull value into the pin via the shared
// GPPUD/GPPUDCLK pair. The datasheet asks for 150 core cycles of setup
// and hold; a microsecond sleep exceeds that by a wide margin.
func (p *Pin) setPull2835(pull Pull) {
	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()

	p.chip.mem[pudReg2835] = p.chip.mem[pudReg2835]&^pullMask | uint32(pull)
	time.Sleep(time.Microsecond)
	p.chip.mem[pudClk2835] = p.mask
	time.Sleep(time.Microsecond)
	p.chip.mem[pudReg2835] = p.chip.mem[pudReg2835] &^ pullMask
	p.chip.mem[pudClk2835] = 0
}

func (p *Pin) setPull2711(pull Pull) {
	// 2711 swaps the up/down field encoding
	switch pull {
	case PullUp:
		pull = PullDown
	case PullDown:
		pull = PullUp
	}
	reg := pullReg2711 + p.num/16
	shift := uint(p.num&0x0f) << 1

	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.chip.mem[reg] = p.chip.mem[reg]&^(pullMask<<shift) | uint32(pull)<<shift
}
