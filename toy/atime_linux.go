// SPDX-License-Identifier: MIT

//go:build linux

package toy

import (
	"time"

	"golang.org/x/sys/unix"
)

// atime returns the access time of path, or fallback if it cannot be
// determined.
func atime(path string, fallback time.Time) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fallback
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec)
}
