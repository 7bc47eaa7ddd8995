// SPDX-License-Identifier: MIT

// Package ds1302 drives the DS1302 time-of-year clock chip over three
// GPIO lines using its bit-serial command protocol.
//
// The package is the basis for reading and setting the chip's clock and
// battery-backed RAM. It is agnostic to how the pins are realised; any
// implementation of Pin will do - see the mmio and cdev packages for the
// memory-mapped and character-device backends.
//
// Timing constants are chosen conservatively above the chip's documented
// minimums. There is no minimum bus speed; the part is specified to work
// down to DC, which is what makes bit-bashing from a preemptible
// scheduler tolerable.
package ds1302

import (
	"fmt"
	"sync"
	"time"
)

// Level represents the high (true) or low (false) level of a pin.
type Level bool

// Level of a pin, High / Low.
const (
	Low  Level = false
	High Level = true
)

// Direction defines the IO direction of a pin.
type Direction int

// A pin is either driven by the host (Output) or by the chip (Input).
const (
	Input Direction = iota
	Output
)

// Pin is a single GPIO line. Level changes must take effect before the
// next timed delay elapses.
type Pin interface {
	Write(Level)
	Read() Level
	SetDirection(Direction)
}

// Protocol delays, from the DS1302 data sheet with margin.
const (
	tCC = 4 * time.Microsecond // CE assert to first clock edge
	tDC = 2 * time.Microsecond // data setup to rising clock
	tCH = 2 * time.Microsecond // clock high period
	tCL = 2 * time.Microsecond // clock low period
)

// DS1302 is a chip connected via three GPIO lines: chip-enable, clock
// and the shared bidirectional data line.
type DS1302 struct {
	mu  sync.Mutex
	ce  Pin
	clk Pin
	io  Pin
}

// New creates a DS1302 on the given pins and parks the bus idle.
func New(ce, clk, io Pin) *DS1302 {
	d := &DS1302{ce: ce, clk: clk, io: io}
	// Deassert CE first; while CE is low the chip cannot drive the
	// data line, so the remaining pins can be claimed without
	// contention.
	d.ce.Write(Low)
	d.ce.SetDirection(Output)
	d.clk.Write(Low)
	d.clk.SetDirection(Output)
	// Every exchange starts with the host driving a command, so the
	// data line idles as output low.
	d.io.Write(Low)
	d.io.SetDirection(Output)
	return d
}

// Close releases the bus, leaving all three pins as inputs.
func (d *DS1302) Close() {
	d.mu.Lock()
	d.ce.Write(Low)
	d.ce.SetDirection(Input)
	d.clk.SetDirection(Input)
	d.io.SetDirection(Input)
	d.mu.Unlock()
}

// ReadClock reads all 8 clock registers in a single burst. CE assertion
// captures the counting registers, so the returned set is coherent.
func (d *DS1302) ReadClock() ClockRegisters {
	var regs ClockRegisters
	d.mu.Lock()
	d.readBurst(ClockBurst, regs[:])
	d.mu.Unlock()
	return regs
}

// WriteClock writes all 8 clock registers in a single burst. The chip
// transfers the burst into its counting registers when CE deasserts, and
// only accepts the transfer when all 8 registers are written - which the
// ClockRegisters type guarantees. Write-protect must have been cleared
// with Unlock first.
func (d *DS1302) WriteClock(regs ClockRegisters) {
	d.mu.Lock()
	d.writeBurst(ClockBurst, regs[:])
	d.mu.Unlock()
}

// ReadRAM reads len(buf) bytes of battery-backed RAM, starting at
// address 0, as a single burst.
func (d *DS1302) ReadRAM(buf []byte) error {
	if len(buf) < 1 || len(buf) > RAMSize {
		return fmt.Errorf("%w: %d byte RAM read", ErrBadBurst, len(buf))
	}
	d.mu.Lock()
	d.readBurst(RAMBurst, buf)
	d.mu.Unlock()
	return nil
}

// WriteRAM writes len(data) bytes of battery-backed RAM, starting at
// address 0, as a single burst.
func (d *DS1302) WriteRAM(data []byte) error {
	if len(data) < 1 || len(data) > RAMSize {
		return fmt.Errorf("%w: %d byte RAM write", ErrBadBurst, len(data))
	}
	d.mu.Lock()
	d.writeBurst(RAMBurst, data)
	d.mu.Unlock()
	return nil
}

// ReadRAMByte reads the RAM byte at addr (0..RAMSize-1).
func (d *DS1302) ReadRAMByte(addr int) (byte, error) {
	if addr < 0 || addr >= RAMSize {
		return 0, fmt.Errorf("%w: RAM address %#x", ErrOutOfRange, addr)
	}
	return d.ReadRegister(byte(RAMBase + addr<<1)), nil
}

// WriteRAMByte writes the RAM byte at addr (0..RAMSize-1).
func (d *DS1302) WriteRAMByte(addr int, data byte) error {
	if addr < 0 || addr >= RAMSize {
		return fmt.Errorf("%w: RAM address %#x", ErrOutOfRange, addr)
	}
	d.WriteRegister(byte(RAMBase+addr<<1), data)
	return nil
}

// ReadRegister reads a single register.
func (d *DS1302) ReadRegister(reg byte) byte {
	var buf [1]byte
	d.mu.Lock()
	d.readBurst(reg, buf[:])
	d.mu.Unlock()
	return buf[0]
}

// WriteRegister writes a single register. Write-protect must have been
// cleared with Unlock first, unless reg is the control register itself.
func (d *DS1302) WriteRegister(reg byte, data byte) {
	d.mu.Lock()
	d.writeBurst(reg, []byte{data})
	d.mu.Unlock()
}

// ReadCharger reads the trickle-charger configuration.
func (d *DS1302) ReadCharger() ChargerMode {
	return ChargerMode(d.ReadRegister(RegCharger))
}

// SetCharger sets the trickle-charger configuration.
func (d *DS1302) SetCharger(mode ChargerMode) {
	d.WriteRegister(RegCharger, byte(mode))
}

// Unlock clears write-protect and reads the control register back. A
// mismatch means no chip responded; failing here keeps a miswired bus
// from eating writes silently.
func (d *DS1302) Unlock() error {
	d.WriteRegister(RegControl, 0)
	if ctl := d.ReadRegister(RegControl); ctl != 0 {
		return fmt.Errorf("%w: wrote 00 to CTL, read %02x", ErrNoDevice, ctl)
	}
	return nil
}

// Lock sets write-protect.
func (d *DS1302) Lock() {
	d.WriteRegister(RegControl, WriteProtect)
}

// writeBurst drives a write command and data bytes to the chip.
// Deasserting CE at the end is what commits a clock burst to the
// counting registers.
func (d *DS1302) writeBurst(reg byte, data []byte) {
	d.clk.Write(Low)
	d.ce.Write(High)
	time.Sleep(tCC)

	d.writeByte(reg &^ readCmd)
	for _, b := range data {
		d.writeByte(b)
	}

	d.io.Write(Low)
	d.ce.Write(Low)
	time.Sleep(tCC)
}

// readBurst drives a read command and shifts data bytes from the chip.
func (d *DS1302) readBurst(reg byte, buf []byte) {
	d.clk.Write(Low)
	d.ce.Write(High) // captures the counting registers
	time.Sleep(tCC)

	// Shift the command out. The chip drives its first data bit on the
	// falling edge of the last command clock, so that edge is withheld
	// until the data pin has been turned around.
	cmd := reg | readCmd
	for i := 0; i < 8; i++ {
		d.io.Write(cmd&0x01 != 0)
		cmd >>= 1
		time.Sleep(tDC)
		d.clk.Write(High)
		time.Sleep(tCH)
		if i < 7 {
			d.clk.Write(Low)
			time.Sleep(tCL)
		}
	}

	d.io.SetDirection(Input)
	time.Sleep(tDC)

	for n := range buf {
		var b byte
		for i := 0; i < 8; i++ {
			d.clk.Write(Low)
			time.Sleep(tCL)
			b >>= 1
			if d.io.Read() {
				b |= 0x80
			}
			// Clock the next bit only if one follows; the chip
			// releases the data line while the clock is high
			// after the final bit.
			if i < 7 || n < len(buf)-1 {
				d.clk.Write(High)
				time.Sleep(tCH)
			}
		}
		buf[n] = b
	}

	d.ce.Write(Low)
	time.Sleep(tCL)
	d.io.SetDirection(Output)
	d.io.Write(Low)
}

// writeByte shifts one byte out LSB first.
func (d *DS1302) writeByte(b byte) {
	for i := 0; i < 8; i++ {
		d.io.Write(b&0x01 != 0)
		b >>= 1
		time.Sleep(tDC)
		d.clk.Write(High)
		time.Sleep(tCH)
		d.clk.Write(Low)
		time.Sleep(tCL)
	}
}
