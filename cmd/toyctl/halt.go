// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(haltCmd)
}

var haltCmd = &cobra.Command{
	Use:   "halt",
	Short: "Stop the clock oscillator",
	Long: `Stop the clock oscillator, dropping the chip into nanopower
storage mode. The time is lost; RAM contents are retained.`,
	Args: cobra.NoArgs,
	RunE: halt,
}

func halt(cmd *cobra.Command, args []string) error {
	c, done, err := openClock()
	if err != nil {
		return err
	}
	defer done()
	if err := c.Halt(); err != nil {
		return err
	}
	fmt.Println("clock halted")
	return nil
}
