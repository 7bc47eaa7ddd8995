// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved pin configuration",
	Args:  cobra.NoArgs,
	RunE:  showConfig,
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	backend := cfg.GetString("backend")
	fmt.Printf("backend: %s\n", backend)
	if backend == "cdev" {
		fmt.Printf("chip:    %s\n", cfg.GetString("chip"))
	}
	fmt.Printf("ce:      %d\n", cfg.GetInt("ce"))
	fmt.Printf("clk:     %d\n", cfg.GetInt("clk"))
	fmt.Printf("io:      %d\n", cfg.GetInt("io"))
	fmt.Printf("adjfile: %s\n", rootOpts.CalFile)
	fmt.Printf("caldays: %d\n", rootOpts.CalDays)
	return nil
}
