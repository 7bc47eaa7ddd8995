// SPDX-License-Identifier: MIT

package ds1302

// DS1302 command/address bytes. The general command format is:
//
//	+---+---------+----+----+----+----+----+--------+
//	| 7 | RAM/!CK | A4 | A3 | A2 | A1 | A0 | RD/!WR |
//	+---+---------+----+----+----+----+----+--------+
//
// Commands and data are shifted LSB first. Or readCmd into an address to
// form the read variant.
const (
	RegSeconds = 0x80 // write resets the count chain to a second boundary
	RegMinutes = 0x82
	RegHours   = 0x84
	RegDay     = 0x86
	RegMonth   = 0x88
	RegWeekday = 0x8A
	RegYear    = 0x8C
	RegControl = 0x8E
	RegCharger = 0x90

	// ClockBurst transfers all 8 clock registers atomically.
	ClockBurst = 0xBE

	// RAM is addressed 0xC0..0xFC, or transferred 1..31 bytes at a time
	// with RAMBurst.
	RAMBase  = 0xC0
	RAMEnd   = 0xFC
	RAMBurst = 0xFE

	readCmd = 0x01
)

// Register bit masks.
const (
	HaltBit     = 0x80 // seconds: clock halt
	SecondsMask = 0x7F
	MinutesMask = 0x7F
	Mode12Hr    = 0x80 // hours: 12-hour mode flag
	PMBit       = 0x20 // hours: PM in 12-hour mode
	Hours24Mask = 0x3F
	Hours12Mask = 0x1F
	// MonthMBZMask covers month bits specified as zero. If no chip is
	// present the floating data line reads them as ones.
	MonthMBZMask = 0xE0
	WriteProtect = 0x80 // control: WP, must be clear for any write
)

// ClockRegisters is one atomic clock-burst transfer, indexed by the
// offsets below. Reading or writing it always moves all 8 registers, so a
// partially updated clock is never observable.
type ClockRegisters [NumClockRegs]byte

// Offsets of the clock registers within a ClockRegisters or burst buffer.
const (
	Seconds = iota
	Minutes
	Hours
	Day
	Month
	Weekday
	Year
	Control

	NumClockRegs = 8
)

// RAMSize is the battery-backed RAM capacity in bytes.
const RAMSize = 31

// Halted reports whether the clock-halt flag is set in the seconds
// register.
func (r ClockRegisters) Halted() bool {
	return r[Seconds]&HaltBit != 0
}

// offset converts a register address to its position within a burst
// buffer. Addresses are spaced 2 apart with the low bit selecting
// read/write.
func offset(reg byte) int {
	return int((reg-RegSeconds)>>1) & 0x3f
}

// bcd packs a binary value 0-99 as two BCD digits.
func bcd(n uint) byte {
	return byte((n/10)<<4 | n%10)
}

// bin unpacks two BCD digits to binary.
func bin(b byte) uint {
	return uint(b>>4&0x0f)*10 + uint(b&0x0f)
}

// ChargerMode is the value of the trickle-charger configuration register.
// The named modes select the diode count and current-limit resistor
// between VCC2 and VCC1; any other value leaves the charger disabled.
type ChargerMode byte

const (
	ChargerDisabled ChargerMode = 0x5C
	Charger1D2K     ChargerMode = 0xA5
	Charger1D4K     ChargerMode = 0xA6
	Charger1D8K     ChargerMode = 0xA7
	Charger2D2K     ChargerMode = 0xA9
	Charger2D4K     ChargerMode = 0xAA
	Charger2D8K     ChargerMode = 0xAB
)

var chargerNames = []struct {
	name string
	mode ChargerMode
}{
	{"disable", ChargerDisabled},
	{"1d2k", Charger1D2K},
	{"1d4k", Charger1D4K},
	{"1d8k", Charger1D8K},
	{"2d2k", Charger2D2K},
	{"2d4k", Charger2D4K},
	{"2d8k", Charger2D8K},
}

func (m ChargerMode) String() string {
	for _, c := range chargerNames {
		if c.mode == m {
			return c.name
		}
	}
	return "unspecified"
}

// ChargerModeByName returns the charger mode for one of the seven mode
// names accepted on the command line.
func ChargerModeByName(name string) (ChargerMode, bool) {
	for _, c := range chargerNames {
		if c.name == name {
			return c.mode, true
		}
	}
	return ChargerDisabled, false
}
