// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func init() {
	readCmd.Flags().BoolVarP(&readOpts.Raw, "raw", "r", false, "skip drift correction")
	rootCmd.AddCommand(readCmd)
}

var (
	readCmd = &cobra.Command{
		Use:     "read",
		Aliases: []string{"show"},
		Short:   "Read the time from the clock",
		Args:    cobra.NoArgs,
		RunE:    read,
	}
	readOpts = struct {
		Raw bool
	}{}
)

const stampFormat = "Mon Jan 02 2006 15:04:05 MST"

func read(cmd *cobra.Command, args []string) error {
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	r, err := c.Read()
	if err != nil {
		return err
	}
	log.Debug("read clock", "raw", r.Raw.Format(stampFormat), "corrected", r.Corrected)
	if readOpts.Raw {
		fmt.Println(r.Raw.Format(stampFormat))
		return nil
	}
	fmt.Println(r.Time.Format(stampFormat))
	return nil
}
