// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/toyclock/ds1302"
)

func init() {
	ramCmd.SetHelpTemplate(ramCmd.HelpTemplate() + extendedRAMHelp)
	rootCmd.AddCommand(ramCmd)
}

var ramCmd = &cobra.Command{
	Use:     "ram [addr [value]]",
	Short:   "Read or write the battery-backed RAM",
	Example: "  toyctl ram\n  toyctl ram 00\n  toyctl ram 1e a5",
	Args:    cobra.MaximumNArgs(2),
	RunE:    ram,
}

var extendedRAMHelp = `
Addresses and values are hexadecimal. The chip has 31 bytes of RAM,
addresses 00 through 1e. With no arguments the whole RAM is dumped.
`

func parseRAMAddr(arg string) (int, error) {
	addr, err := strconv.ParseUint(arg, 16, 8)
	if err != nil || addr >= ds1302.RAMSize {
		return 0, fmt.Errorf("can't parse RAM address '%s'", arg)
	}
	return int(addr), nil
}

func ram(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		dev, done, err := openDevice()
		if err != nil {
			return err
		}
		defer done()
		buf := make([]byte, ds1302.RAMSize)
		if err := dev.ReadRAM(buf); err != nil {
			return err
		}
		for i, b := range buf {
			sep := " "
			if i%8 == 7 || i == len(buf)-1 {
				sep = "\n"
			}
			fmt.Printf("%02x%s", b, sep)
		}
		return nil
	}

	addr, err := parseRAMAddr(args[0])
	if err != nil {
		return err
	}
	dev, done, err := openDevice()
	if err != nil {
		return err
	}
	defer done()

	if len(args) == 1 {
		data, err := dev.ReadRAMByte(addr)
		if err != nil {
			return err
		}
		fmt.Printf("%02x: %02x\n", addr, data)
		return nil
	}

	data, err := strconv.ParseUint(args[1], 16, 8)
	if err != nil {
		return fmt.Errorf("can't parse value '%s'", args[1])
	}
	if err := dev.Unlock(); err != nil {
		return err
	}
	defer dev.Lock()
	return dev.WriteRAMByte(addr, byte(data))
}
