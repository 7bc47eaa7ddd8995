// SPDX-License-Identifier: MIT

package ds1302

import "errors"

var (
	// ErrNoDevice indicates the chip did not respond, or the
	// must-be-zero month bits read nonzero - absent or miswired.
	ErrNoDevice = errors.New("no TOY detected")

	// ErrHalted indicates the clock-halt flag is set and the time is
	// not meaningful.
	ErrHalted = errors.New("TOY is halted, time is not valid")

	// ErrNotRunning indicates the seconds register failed to advance
	// within the stabilized-read bound.
	ErrNotRunning = errors.New("TOY does not seem to be running")

	// ErrOutOfRange indicates a civil time or RAM address/data value
	// outside the hardware-documented bounds.
	ErrOutOfRange = errors.New("value out of range for TOY")

	// ErrTimeOverflow indicates register contents that do not form a
	// representable time.
	ErrTimeOverflow = errors.New("TOY registers do not form a valid time")

	// ErrBadBurst indicates a burst length outside 1..RAMSize. This is
	// a programming error and is reported before any pin is touched.
	ErrBadBurst = errors.New("invalid burst length")
)
