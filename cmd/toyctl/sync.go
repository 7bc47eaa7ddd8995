// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func init() {
	syncCmd.Flags().BoolVarP(&syncOpts.Force, "force", "f", false, "set the clock even if the calibration is too young to refit")
	syncCmd.Flags().BoolVar(&syncOpts.NoNTP, "nontp", false, "skip the host clock synchronization check")
	syncCmd.SetHelpTemplate(syncCmd.HelpTemplate() + extendedSyncHelp)
	rootCmd.AddCommand(syncCmd)
}

var (
	syncCmd = &cobra.Command{
		Use:     "sync",
		Aliases: []string{"systohc"},
		Short:   "Set the clock from the host clock",
		Args:    cobra.NoArgs,
		RunE:    sync,
	}
	syncOpts = struct {
		Force bool
		NoNTP bool
	}{}
)

var extendedSyncHelp = `
The host clock must be NTP synchronized, as the accumulated error
against it is what the drift rate is fitted from; writing an
unsynchronized host time would poison the calibration. Use --nontp on
hosts that discipline their clock by other means.
`

// hostSynchronized reports whether the kernel clock is disciplined.
// Leap-second states still count as synchronized.
func hostSynchronized() (bool, error) {
	var tx unix.Timex
	state, err := unix.Adjtimex(&tx)
	if err != nil {
		return false, fmt.Errorf("adjtimex: %w", err)
	}
	switch state {
	case unix.TIME_OK, unix.TIME_INS, unix.TIME_DEL, unix.TIME_OOP, unix.TIME_WAIT:
		return true, nil
	}
	return false, nil
}

func sync(cmd *cobra.Command, args []string) error {
	if !syncOpts.NoNTP {
		ok, err := hostSynchronized()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("host clock is not NTP synchronized (see --nontp)")
		}
	}
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	if err := c.Sync(syncOpts.Force); err != nil {
		return err
	}
	log.Debug("clock set from host")
	return nil
}
