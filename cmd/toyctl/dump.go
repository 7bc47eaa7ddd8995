// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the raw clock registers",
	Args:  cobra.NoArgs,
	RunE:  dump,
}

func dump(cmd *cobra.Command, args []string) error {
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	regs, err := c.Registers()
	if err != nil {
		// the registers are still worth seeing on a sick chip
		fmt.Print(regs.Dump())
		return err
	}
	fmt.Print(regs.Dump())
	return nil
}
