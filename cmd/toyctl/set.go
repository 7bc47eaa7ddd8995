// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	setCmd.Flags().StringVarP(&setOpts.Date, "date", "d", "", "time to set, in local time")
	setCmd.MarkFlagRequired("date")
	setCmd.SetHelpTemplate(setCmd.HelpTemplate() + extendedSetHelp)
	rootCmd.AddCommand(setCmd)
}

var (
	setCmd = &cobra.Command{
		Use:   "set -d <date>",
		Short: "Set the clock to an explicit time",
		Args:  cobra.NoArgs,
		RunE:  set,
	}
	setOpts = struct {
		Date string
	}{}
)

var extendedSetHelp = `
Dates:
  Accepted formats, interpreted in local time, with an optional
  HH:MM:SS or HH:MM suffix:

    2006-01-02
    02-Jan-2006
    01/02/2006

  The clock stores years 2000 through 2099.

Setting an explicit time re-baselines the drift calibration without
refitting the rate; use sync to set from the host clock.
`

var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"01/02/2006",
}

var timeLayouts = []string{
	"",
	" 15:04:05",
	" 15:04",
}

func parseDate(s string) (time.Time, error) {
	for _, date := range dateLayouts {
		for _, clock := range timeLayouts {
			if t, err := time.ParseInLocation(date+clock, s, time.Local); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("can't parse date '%s'", s)
}

func set(cmd *cobra.Command, args []string) error {
	t, err := parseDate(setOpts.Date)
	if err != nil {
		return err
	}
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	return c.Set(t)
}
