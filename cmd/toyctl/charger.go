// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyclock/ds1302"
)

func init() {
	chargerCmd.SetHelpTemplate(chargerCmd.HelpTemplate() + extendedChargerHelp)
	rootCmd.AddCommand(chargerCmd)
}

var chargerCmd = &cobra.Command{
	Use:     "charger [mode]",
	Short:   "Read or set the trickle charger mode",
	Example: "  toyctl charger\n  toyctl charger 1d2k",
	Args:    cobra.MaximumNArgs(1),
	RunE:    charger,
}

var extendedChargerHelp = `
Modes:
  disable             charger off
  1d2k, 1d4k, 1d8k    one diode, 2/4/8 kOhm series resistor
  2d2k, 2d4k, 2d8k    two diodes, 2/4/8 kOhm series resistor

Only enable the charger with a rechargeable cell or supercap on Vcc1.
Charging a lithium coin cell is a fire hazard.
`

func charger(cmd *cobra.Command, args []string) error {
	dev, done, err := openDevice()
	if err != nil {
		return err
	}
	defer done()

	if len(args) == 0 {
		fmt.Println(dev.ReadCharger())
		return nil
	}

	mode, ok := ds1302.ChargerModeByName(args[0])
	if !ok {
		return fmt.Errorf("unknown charger mode '%s'", args[0])
	}
	if err := dev.Unlock(); err != nil {
		return err
	}
	defer dev.Lock()
	dev.SetCharger(mode)
	return nil
}
