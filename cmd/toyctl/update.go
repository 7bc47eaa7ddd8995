// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func init() {
	updateCmd.Flags().BoolVar(&updateOpts.Test, "test", false, "print the time without setting the host clock")
	rootCmd.AddCommand(updateCmd)
}

var (
	updateCmd = &cobra.Command{
		Use:     "update",
		Aliases: []string{"hctosys"},
		Short:   "Set the host clock from the clock",
		Args:    cobra.NoArgs,
		RunE:    update,
	}
	updateOpts = struct {
		Test bool
	}{}
)

func update(cmd *cobra.Command, args []string) error {
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	r, err := c.Read()
	if err != nil {
		return err
	}
	if updateOpts.Test {
		fmt.Printf("would set host clock to %s\n", r.Time.Format(stampFormat))
		return nil
	}
	tv := unix.NsecToTimeval(r.Time.UnixNano())
	if err := unix.Settimeofday(&tv); err != nil {
		return fmt.Errorf("settimeofday: %w", err)
	}
	fmt.Printf("host clock set to %s\n", r.Time.Format(stampFormat))
	return nil
}
