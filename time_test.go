// SPDX-License-Identifier: MIT

package ds1302

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTime(t *testing.T) {
	regs := ClockRegisters{0x45, 0x00, 0x10, 0x15, 0x01, 0x01, 0x23, 0x80}
	got, err := DecodeTime(regs)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.January, 15, 10, 0, 45, 0, time.UTC), got)
}

func TestDecodeTimeNoDevice(t *testing.T) {
	regs := ClockRegisters{0x45, 0x00, 0x10, 0x15, 0xE1, 0x01, 0x23, 0x80}
	_, err := DecodeTime(regs)
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestDecodeTimeInvalid(t *testing.T) {
	tests := []struct {
		name string
		regs ClockRegisters
	}{
		{"seconds 60", ClockRegisters{0x60, 0x00, 0x10, 0x15, 0x01, 0x01, 0x23, 0x80}},
		{"hour 24", ClockRegisters{0x00, 0x00, 0x24, 0x15, 0x01, 0x01, 0x23, 0x80}},
		{"day 0", ClockRegisters{0x00, 0x00, 0x10, 0x00, 0x01, 0x01, 0x23, 0x80}},
		{"feb 30", ClockRegisters{0x00, 0x00, 0x10, 0x30, 0x02, 0x01, 0x23, 0x80}},
		{"12h hour 0", ClockRegisters{0x00, 0x00, 0x80, 0x15, 0x01, 0x01, 0x23, 0x80}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTime(tc.regs)
			assert.ErrorIs(t, err, ErrTimeOverflow)
		})
	}
}

func TestDecode12Hour(t *testing.T) {
	tests := []struct {
		hours byte
		hour  int
	}{
		{Mode12Hr | 0x12, 0},          // 12 AM
		{Mode12Hr | 0x01, 1},          // 1 AM
		{Mode12Hr | 0x11, 11},         // 11 AM
		{Mode12Hr | PMBit | 0x12, 12}, // 12 PM
		{Mode12Hr | PMBit | 0x01, 13}, // 1 PM
		{Mode12Hr | PMBit | 0x11, 23}, // 11 PM
	}
	for _, tc := range tests {
		regs := ClockRegisters{0x00, 0x00, tc.hours, 0x15, 0x01, 0x01, 0x23, 0x80}
		got, err := DecodeTime(regs)
		require.NoError(t, err, "hours=%#x", tc.hours)
		assert.Equal(t, tc.hour, got.Hour(), "hours=%#x", tc.hours)
	}
}

// Encoding in either hour mode and decoding must reproduce the same
// absolute hour of day, and a 12-hour register set must survive a
// decode/re-encode round trip bit for bit.
func TestHourModeRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		when := time.Date(2023, time.June, 2, h, 30, 0, 0, time.UTC)

		r24, err := EncodeTime(when, false)
		require.NoError(t, err)
		r12, err := EncodeTime(when, true)
		require.NoError(t, err)

		t24, err := DecodeTime(r24)
		require.NoError(t, err)
		t12, err := DecodeTime(r12)
		require.NoError(t, err)
		assert.Equal(t, when, t24, "h=%d", h)
		assert.Equal(t, when, t12, "h=%d", h)

		again, err := EncodeTime(t12, true)
		require.NoError(t, err)
		assert.Equal(t, r12, again, "h=%d", h)
	}
}

func TestEncodeTime(t *testing.T) {
	when := time.Date(2023, time.January, 15, 10, 0, 45, 0, time.UTC)
	regs, err := EncodeTime(when, false)
	require.NoError(t, err)
	assert.Equal(t, ClockRegisters{0x45, 0x00, 0x10, 0x15, 0x01, 0x01, 0x23, WriteProtect}, regs)
	// 2023-01-15 is a Sunday, weekday 1
	assert.EqualValues(t, 0x01, regs[Weekday])
}

func TestEncodeTimeAMPMBits(t *testing.T) {
	tests := []struct {
		hour  int
		hours byte
	}{
		{0, Mode12Hr | 0x12},
		{11, Mode12Hr | 0x11},
		{12, Mode12Hr | PMBit | 0x12},
		{13, Mode12Hr | PMBit | 0x01},
		{23, Mode12Hr | PMBit | 0x11},
	}
	for _, tc := range tests {
		when := time.Date(2023, time.June, 2, tc.hour, 0, 0, 0, time.UTC)
		regs, err := EncodeTime(when, true)
		require.NoError(t, err)
		assert.Equal(t, tc.hours, regs[Hours], "hour=%d", tc.hour)
	}
}

func TestEncodeTimeYearRange(t *testing.T) {
	for _, y := range []int{1999, 2100, 1970} {
		_, err := EncodeTime(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), false)
		assert.ErrorIs(t, err, ErrOutOfRange, "year=%d", y)
	}
	regs, err := EncodeTime(time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC), false)
	assert.NoError(t, err)
	assert.EqualValues(t, 0x99, regs[Year])
}

func TestEncodeSetsWriteProtect(t *testing.T) {
	regs, err := EncodeTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	assert.NotZero(t, regs[Control]&WriteProtect)
}

func TestHalted(t *testing.T) {
	regs := ClockRegisters{0x45 | HaltBit, 0, 0x10, 0x15, 0x01, 0x01, 0x23, 0x80}
	assert.True(t, regs.Halted())
	regs[Seconds] = 0x45
	assert.False(t, regs.Halted())
}
