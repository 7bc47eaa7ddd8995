// SPDX-License-Identifier: MIT

//go:build linux

// toyctl controls a DS1302 time-of-year clock wired to GPIO pins,
// in the manner of hwclock: read it, set it, and keep a drift
// calibration so reads stay accurate between sets.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/json"

	"github.com/toyclock/ds1302"
	"github.com/toyclock/ds1302/cdev"
	"github.com/toyclock/ds1302/mmio"
	"github.com/toyclock/ds1302/toy"
)

var version = "1.0.2"

var rootCmd = &cobra.Command{
	Use:   "toyctl",
	Short: "toyctl reads and sets a DS1302 time-of-year clock",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootOpts.Debug {
			log.SetLevel(log.DebugLevel)
		}
		if rootOpts.Quiet {
			log.SetLevel(log.ErrorLevel)
		}
	},
	SilenceUsage: true,
	Version:      version,
}

var rootOpts = struct {
	Debug      bool
	Quiet      bool
	ConfigFile string
	TwelveHour bool
	CalFile    string
	NoCalFile  bool
	CalDays    int
}{}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&rootOpts.Debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&rootOpts.Quiet, "quiet", "q", false, "log errors only")
	pf.StringVarP(&rootOpts.ConfigFile, "config-file", "c", "", "pin configuration file")
	pf.BoolVar(&rootOpts.TwelveHour, "12-hour-mode", false, "keep the clock registers in 12-hour (AM/PM) mode")
	pf.StringVar(&rootOpts.CalFile, "adjfile", toy.DefaultCalibFile, "drift calibration file")
	pf.BoolVar(&rootOpts.NoCalFile, "noadjfile", false, "disable drift calibration entirely")
	pf.IntVar(&rootOpts.CalDays, "caldays", toy.DefaultCalDays, "minimum days between drift refits")
}

func main() {
	log.SetReportTimestamp(false)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Config defines the pin configuration interface.
type Config interface {
	GetString(k string) string
	GetInt(k string) int64
}

// loadConfig resolves the pin wiring from defaults, environment
// (TOYCTL_CE etc) and an optional JSON file.
func loadConfig() (Config, error) {
	def := dict.New(dict.WithMap(map[string]interface{}{
		"backend": "mmio",
		"chip":    cdev.DefaultChip,
		"ce":      23,
		"clk":     22,
		"io":      25,
	}))
	eget, err := env.New(env.WithEnvPrefix("TOYCTL_"))
	if err != nil {
		return nil, err
	}
	sources := config.NewStack(eget)
	cfg := config.NewConfig(config.Decorate(sources, config.WithDefault(def)))

	if rootOpts.ConfigFile != "" {
		// explicitly specified config file - must be there
		jget, err := json.New(json.FromFile(rootOpts.ConfigFile))
		if err != nil {
			return nil, err
		}
		sources.Append(jget)
	} else {
		// implicit and optional default config file
		jget, err := json.New(json.FromFile("/etc/toyctl.json"))
		if err == nil {
			sources.Append(jget)
		} else if _, ok := err.(*os.PathError); !ok {
			return nil, err
		}
	}
	return cfg.GetMust("", config.WithPanic()), nil
}

// closers releases backend resources in reverse order of acquisition.
type closers []func() error

func (cc closers) close() {
	for i := len(cc) - 1; i >= 0; i-- {
		cc[i]()
	}
}

// openDevice wires up the configured backend and returns the bus
// driver and a release function.
func openDevice() (*ds1302.DS1302, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ce := int(cfg.GetInt("ce"))
	clk := int(cfg.GetInt("clk"))
	io := int(cfg.GetInt("io"))
	backend := cfg.GetString("backend")
	log.Debug("opening device", "backend", backend, "ce", ce, "clk", clk, "io", io)

	var cc closers
	var pins [3]ds1302.Pin
	switch backend {
	case "mmio":
		chip, err := mmio.Open()
		if err != nil {
			return nil, nil, err
		}
		cc = append(cc, chip.Close)
		for i, num := range []int{ce, clk, io} {
			p, err := chip.Pin(num)
			if err != nil {
				cc.close()
				return nil, nil, err
			}
			p.SetPull(mmio.PullNone)
			pins[i] = p
		}
	case "cdev":
		for i, num := range []int{ce, clk, io} {
			p, err := cdev.RequestPin(cfg.GetString("chip"), num)
			if err != nil {
				cc.close()
				return nil, nil, err
			}
			cc = append(cc, p.Close)
			pins[i] = p
		}
	default:
		return nil, nil, fmt.Errorf("unknown backend '%s'", backend)
	}

	dev := ds1302.New(pins[0], pins[1], pins[2])
	cc = append(cc, func() error {
		dev.Close()
		return nil
	})
	return dev, cc.close, nil
}

// openClock wraps the device in the calibrating clock engine.
func openClock() (*toy.Clock, func(), error) {
	dev, done, err := openDevice()
	if err != nil {
		return nil, nil, err
	}
	var store *toy.CalibStore
	if !rootOpts.NoCalFile {
		store = &toy.CalibStore{Path: rootOpts.CalFile}
	}
	c := toy.New(dev, store, toy.Config{
		CalDays:    rootOpts.CalDays,
		TwelveHour: rootOpts.TwelveHour,
	})
	return c, done, nil
}
