// SPDX-License-Identifier: MIT

package ds1302

import (
	"fmt"
	"strings"
	"time"
)

// DecodeTime converts a clock-register set to UTC civil time.
//
// It fails with ErrNoDevice if the must-be-zero month bits are set (the
// registers were read from a floating bus, not a chip), and with
// ErrTimeOverflow if the register contents do not form a representable
// date. The halt flag is not examined here; see ClockRegisters.Halted.
func DecodeTime(regs ClockRegisters) (time.Time, error) {
	if regs[Month]&MonthMBZMask != 0 {
		return time.Time{}, ErrNoDevice
	}

	sec := int(bin(regs[Seconds] & SecondsMask))
	min := int(bin(regs[Minutes] & MinutesMask))
	var hour int
	if regs[Hours]&Mode12Hr != 0 {
		hour = int(bin(regs[Hours] & Hours12Mask))
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("%w: 12-hour value %d", ErrTimeOverflow, hour)
		}
		if regs[Hours]&PMBit != 0 {
			if hour != 12 {
				hour += 12
			}
		} else if hour == 12 {
			hour = 0
		}
	} else {
		hour = int(bin(regs[Hours] & Hours24Mask))
	}
	day := int(bin(regs[Day]))
	month := int(bin(regs[Month]))
	year := 2000 + int(bin(regs[Year]))

	if sec > 59 || min > 59 || hour > 23 || day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %02d-%02d %02d:%02d:%02d",
			ErrTimeOverflow, month, day, hour, min, sec)
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		// time.Date normalized the value, so the registers named a
		// day that doesn't exist, e.g. Feb 30.
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrTimeOverflow, year, month, day)
	}
	return t, nil
}

// EncodeTime converts a UTC civil time to a clock-register set, in
// 12-hour mode if requested. The produced control byte has write-protect
// set; callers must Unlock the chip before writing it back.
//
// Fails with ErrOutOfRange if the year is outside 2000-2099, the
// hardware limit.
func EncodeTime(t time.Time, twelveHour bool) (ClockRegisters, error) {
	t = t.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return ClockRegisters{}, fmt.Errorf("%w: year %d", ErrOutOfRange, t.Year())
	}

	var hour byte
	switch h := t.Hour(); {
	case !twelveHour:
		hour = bcd(uint(h))
	case h == 0:
		hour = Mode12Hr | bcd(12)
	case h == 12:
		hour = Mode12Hr | PMBit | bcd(12)
	case h > 12:
		hour = Mode12Hr | PMBit | bcd(uint(h-12))
	default:
		hour = Mode12Hr | bcd(uint(h))
	}

	return ClockRegisters{
		Seconds: bcd(uint(t.Second())), // halt flag clear
		Minutes: bcd(uint(t.Minute())),
		Hours:   hour,
		Day:     bcd(uint(t.Day())),
		Month:   bcd(uint(t.Month())),
		Weekday: bcd(uint(t.Weekday()) + 1), // 1-based, Sunday = 1
		Year:    bcd(uint(t.Year() % 100)),
		Control: WriteProtect,
	}, nil
}

// Dump renders the register set as the decoded per-register debug table.
func (r ClockRegisters) Dump() string {
	var b strings.Builder
	run := "RUN"
	if r[Seconds]&HaltBit != 0 {
		run = "CH"
	}
	fmt.Fprintf(&b, "%02X: %02x %3s %02d sec\n", RegSeconds|readCmd, r[Seconds], run, bin(r[Seconds]&SecondsMask))
	fmt.Fprintf(&b, "%02X: %02x     %02d min\n", RegMinutes|readCmd, r[Minutes], bin(r[Minutes]&MinutesMask))
	if r[Hours]&Mode12Hr != 0 {
		ampm := " AM"
		if r[Hours]&PMBit != 0 {
			ampm = " PM"
		}
		fmt.Fprintf(&b, "%02X: %02x 12H %02d%s hr\n", RegHours|readCmd, r[Hours], bin(r[Hours]&Hours12Mask), ampm)
	} else {
		fmt.Fprintf(&b, "%02X: %02x 24H %02d hr\n", RegHours|readCmd, r[Hours], bin(r[Hours]&Hours24Mask))
	}
	fmt.Fprintf(&b, "%02X: %02x     %02d date\n", RegDay|readCmd, r[Day], bin(r[Day]))
	fmt.Fprintf(&b, "%02X: %02x     %02d month\n", RegMonth|readCmd, r[Month], bin(r[Month]))
	fmt.Fprintf(&b, "%02X: %02x     %02d weekday\n", RegWeekday|readCmd, r[Weekday], bin(r[Weekday]))
	fmt.Fprintf(&b, "%02X: %02x     %02d year\n", RegYear|readCmd, r[Year], bin(r[Year]))
	wp := ""
	if r[Control]&WriteProtect != 0 {
		wp = "WP"
	}
	fmt.Fprintf(&b, "%02X: %02x %3s ctl\n", RegControl|readCmd, r[Control], wp)
	return b.String()
}
