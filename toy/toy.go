// SPDX-License-Identifier: MIT

// Package toy maintains accurate time on a DS1302 time-of-year clock.
//
// The chip's oscillator drifts, typically by tens of PPM. The package
// models that drift as a linear rate fitted from two timestamped
// samples: whenever the clock has run long enough since it was last set,
// setting it again measures the accumulated error against the host clock
// and refits the rate. Reads stretch or shrink the elapsed time by the
// fitted rate, so chip time translates to wall-clock time well beyond
// the chip's one-second resolution.
//
// Everything here is single-threaded and blocking, matching the bus: the
// chip has no signaling capability, so the only way to reduce the
// one-second read uncertainty is to poll for the seconds register to
// roll over and sample at that boundary.
package toy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/toyclock/ds1302"
)

// ErrCalibrationTooYoung indicates the previous calibration has not run
// for the configured minimum number of days, so refitting from it would
// produce a badly-fit rate. Force the sync to carry the old rate forward
// instead.
var ErrCalibrationTooYoung = errors.New("clock has not run long enough to recalibrate")

// Device is the chip surface the engine drives. *ds1302.DS1302
// implements it.
type Device interface {
	ReadClock() ds1302.ClockRegisters
	WriteClock(ds1302.ClockRegisters)
	WriteRegister(reg byte, data byte)
	Unlock() error
	Lock()
}

// Defaults for Config.
//
// Two days at 20 PPM is only ~3.5s of accumulated error against the
// chip's one-second granularity, so short baselines fit mostly noise.
// 12 days keeps the quantization under 1 PPM; 28 or more is better.
//
// When instrumented, stabilized reads have resolved in up to 6300
// iterations; 30000 gives plenty of headroom without hanging forever on
// a dead crystal.
const (
	DefaultCalDays  = 12
	DefaultMaxReads = 30000
)

// Config carries the tuning for a Clock.
type Config struct {
	// CalDays is the minimum days since the last clock set before the
	// drift rate is refitted.
	CalDays int
	// MaxReads bounds the stabilized-read polling loop.
	MaxReads int
	// TwelveHour selects 12-hour (AM/PM) encoding for clock writes.
	TwelveHour bool
	// Now supplies host UTC time; defaults to time.Now.
	Now func() time.Time
}

// Clock reads and sets a TOY device, translating between chip time and
// drift-corrected wall-clock time via a persisted calibration record.
type Clock struct {
	dev   Device
	store *CalibStore
	cfg   Config
}

// New creates a Clock over dev. store may be nil to disable drift
// calibration entirely.
func New(dev Device, store *CalibStore, cfg Config) *Clock {
	if cfg.CalDays < 1 {
		cfg.CalDays = DefaultCalDays
	}
	if cfg.MaxReads < 1 {
		cfg.MaxReads = DefaultMaxReads
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Clock{dev: dev, store: store, cfg: cfg}
}

// Reading is the result of one drift-corrected clock read.
type Reading struct {
	// Time is the corrected wall-clock time, rounded to the nearest
	// second.
	Time time.Time
	// Raw is the time as decoded from the registers.
	Raw time.Time
	// Registers is the stabilized register sample.
	Registers ds1302.ClockRegisters
	// Corrected reports whether a drift correction was applied.
	Corrected bool
}

// Read returns the chip's time with drift correction applied. Without a
// valid calibration record zero drift is assumed.
func (c *Clock) Read() (Reading, error) {
	regs, err := c.stabilized()
	if err != nil {
		return Reading{Registers: regs}, err
	}
	raw, err := ds1302.DecodeTime(regs)
	if err != nil {
		return Reading{Registers: regs}, err
	}
	r := Reading{Time: raw, Raw: raw, Registers: regs}
	if t, ok := c.correct(c.store.Load(), raw); ok {
		r.Time = t
		r.Corrected = true
	}
	return r, nil
}

// Set writes an explicit time to the chip and commits it as the new
// calibration baseline. The drift rate is never refitted here - a
// user-supplied time is not a trustworthy reference - but the previous
// rate, if any, is carried forward.
func (c *Clock) Set(t time.Time) error {
	return c.commit(t, c.store.Load())
}

// Sync sets the chip from the host clock. If a valid calibration has run
// for at least CalDays the drift rate is refitted from the accumulated
// error first; if it is younger than that, Sync fails with
// ErrCalibrationTooYoung unless forced, in which case the old rate is
// carried forward unchanged.
func (c *Clock) Sync(force bool) error {
	start := c.cfg.Now()
	cal := c.store.Load()
	if cal.Valid {
		age := epochSeconds(start) - cal.LastSet
		if runDays := age / 86400; runDays < float64(c.cfg.CalDays) {
			if !force {
				return fmt.Errorf("%w: %.1f of %d days",
					ErrCalibrationTooYoung, runDays, c.cfg.CalDays)
			}
		} else if err := c.refit(&cal); err != nil {
			return err
		}
	}
	// Start the write at a second boundary. The chip resets its count
	// chain when the burst commits, so this lands chip seconds as
	// close to host seconds as the bus allows. It also re-anchors to
	// the host clock, so time spent refitting does not skew the
	// written value.
	return c.commit(c.waitSecond(), cal)
}

// Halt stops the oscillator (nanopower storage mode). Time is lost.
func (c *Clock) Halt() error {
	if err := c.dev.Unlock(); err != nil {
		return err
	}
	c.dev.WriteRegister(ds1302.RegSeconds, ds1302.HaltBit)
	c.dev.Lock()
	return nil
}

// Registers returns a stabilized register sample without decoding it.
func (c *Clock) Registers() (ds1302.ClockRegisters, error) {
	return c.stabilized()
}

// stabilized reads the clock until the seconds value changes between
// consecutive bursts, yielding a sample taken within a few milliseconds
// of the chip's own second boundary. The chip cannot signal, so this is
// necessarily a bounded polling loop.
func (c *Clock) stabilized() (ds1302.ClockRegisters, error) {
	regs := c.dev.ReadClock()
	if regs[ds1302.Month]&ds1302.MonthMBZMask != 0 {
		return regs, ds1302.ErrNoDevice
	}
	if regs.Halted() {
		return regs, ds1302.ErrHalted
	}
	prev := regs[ds1302.Seconds] & ds1302.SecondsMask
	for i := 0; i < c.cfg.MaxReads; i++ {
		regs = c.dev.ReadClock()
		cur := regs[ds1302.Seconds] & ds1302.SecondsMask
		if cur != prev {
			return regs, nil
		}
	}
	return regs, ds1302.ErrNotRunning
}

// refit recomputes the drift rate from the error accumulated since the
// last set. A halted or stuck clock cannot provide a baseline; the old
// rate is carried forward in that case.
func (c *Clock) refit(cal *Calibration) error {
	regs, err := c.stabilized()
	if errors.Is(err, ds1302.ErrHalted) || errors.Is(err, ds1302.ErrNotRunning) {
		return nil
	}
	if err != nil {
		return err
	}
	end := c.cfg.Now()
	reported, err := ds1302.DecodeTime(regs)
	if err != nil {
		return err
	}
	host := epochSeconds(end)
	cal.DriftRate = (epochSeconds(reported) - host) / (host - cal.LastSet)
	return nil
}

// correct applies the fitted drift rate to a decoded chip time. A
// negative rate means the chip runs slow and elapsed time is stretched;
// a positive rate means it runs fast and elapsed time is shrunk. The two
// forms are deliberately not algebraic inverses of each other; they
// compensate for how the fit itself is computed.
func (c *Clock) correct(cal Calibration, raw time.Time) (time.Time, bool) {
	if !cal.Valid || cal.DriftRate == 0 {
		return raw, false
	}
	elapsed := epochSeconds(raw) - cal.LastSet
	var corrected float64
	if cal.DriftRate < 0 {
		corrected = cal.LastSet + elapsed*(1+math.Abs(cal.DriftRate))
	} else {
		corrected = cal.LastSet + elapsed/(1+cal.DriftRate)
	}
	return time.Unix(int64(math.Floor(corrected+0.5)), 0).UTC(), true
}

// commit writes t to the chip and records the moment of the write as the
// new calibration baseline, retaining whatever drift rate cal carries.
func (c *Clock) commit(t time.Time, cal Calibration) error {
	regs, err := ds1302.EncodeTime(t, c.cfg.TwelveHour)
	if err != nil {
		return err
	}
	if err := c.dev.Unlock(); err != nil {
		return err
	}
	c.dev.WriteClock(regs)
	cal.LastSet = epochSeconds(c.cfg.Now())
	cal.Valid = true
	return c.store.Save(cal)
}

// waitSecond spins until the host clock crosses a second boundary and
// returns that second.
func (c *Clock) waitSecond() time.Time {
	t0 := c.cfg.Now().Unix()
	for {
		t := c.cfg.Now()
		if t.Unix() != t0 {
			return t.Truncate(time.Second)
		}
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
