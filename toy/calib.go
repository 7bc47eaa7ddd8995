// SPDX-License-Identifier: MIT

package toy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

// Calibration is the persisted drift model: the moment the clock was
// last set, and the fitted error rate in seconds of drift per second of
// real time, signed.
type Calibration struct {
	LastSet   float64
	DriftRate float64
	Valid     bool
}

// PPM returns the drift rate in parts per million.
func (c Calibration) PPM() float64 {
	return c.DriftRate * 1e6
}

// DefaultCalibFile is where the calibration record lives.
const DefaultCalibFile = "/etc/toyctl.dat"

// BackupSuffix is appended to the calibration path for the backup copy
// kept by Save.
const BackupSuffix = ".bak"

const stampLayout = "Mon Jan 02 2006 15:04:05.000"

// CalibStore persists Calibration records as a three-line text file:
//
//	1600806806.087274313 (Tue Sep 22 2020 20:33:26.087 UTC)
//	-0.000028974891 (-28.975 PPM)
//	UTC
//
// A nil store, or one with an empty path, loads nothing and saves
// nowhere.
type CalibStore struct {
	Path string
}

// Load reads the calibration record. A missing or unparseable file is
// not an error; it yields an invalid record, meaning no drift correction
// is known.
func (s *CalibStore) Load() Calibration {
	if s == nil || s.Path == "" {
		return Calibration{}
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return Calibration{}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lastSet, ok := scanValue(sc)
	if !ok {
		return Calibration{}
	}
	rate, ok := scanValue(sc)
	if !ok {
		return Calibration{}
	}
	if !sc.Scan() || sc.Text() != "UTC" {
		return Calibration{}
	}
	return Calibration{LastSet: lastSet, DriftRate: rate, Valid: true}
}

// scanValue reads one "<decimal> (<comment>)" line.
func scanValue(sc *bufio.Scanner) (float64, bool) {
	if !sc.Scan() {
		return 0, false
	}
	val, rest, found := strings.Cut(sc.Text(), " ")
	if !found || !strings.HasPrefix(rest, "(") {
		return 0, false
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Save persists the record. The previous file, if any, is first copied
// to the backup path with its timestamps preserved, so repeated runs
// don't perpetually bump them; the drift rate in the backup can still be
// compared by hand if a fresh fit looks wild. The new record then goes
// to a temporary sibling and is renamed into place, so a crash mid-write
// leaves the old record intact. I/O failures here are reported, not
// swallowed - losing the record silently degrades accuracy.
func (s *CalibStore) Save(cal Calibration) error {
	if s == nil || s.Path == "" || !cal.Valid {
		return nil
	}
	if err := s.backup(); err != nil {
		return err
	}

	sec := int64(cal.LastSet)
	nsec := int64((cal.LastSet - float64(sec)) * 1e9)
	stamp := time.Unix(sec, nsec).UTC().Format(stampLayout)

	tmp := s.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("calibration write: %w", err)
	}
	_, werr := fmt.Fprintf(f, "%.9f (%s UTC)\n%.12f (%.3f PPM)\n%s\n",
		cal.LastSet, stamp, cal.DriftRate, cal.PPM(), "UTC")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmp)
		return fmt.Errorf("calibration write: %w", werr)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("calibration write: %w", err)
	}
	return nil
}

func (s *CalibStore) backup() error {
	src, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("calibration backup: %w", err)
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return fmt.Errorf("calibration backup: %w", err)
	}

	bak := s.Path + BackupSuffix
	dst, err := os.Create(bak)
	if err != nil {
		return fmt.Errorf("calibration backup: %w", err)
	}
	_, cerr := io.Copy(dst, src)
	if err := dst.Close(); cerr == nil {
		cerr = err
	}
	if cerr != nil {
		return fmt.Errorf("calibration backup: %w", cerr)
	}
	if err := os.Chtimes(bak, atime(s.Path, fi.ModTime()), fi.ModTime()); err != nil {
		return fmt.Errorf("calibration backup: %w", err)
	}
	return nil
}
