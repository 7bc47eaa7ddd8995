// SPDX-License-Identifier: MIT

//go:build linux

package main

import (
	"fmt"
	"os"

	"github.com/warthog618/config"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/json"

	"github.com/toyclock/ds1302"
	"github.com/toyclock/ds1302/mmio"
	"github.com/toyclock/ds1302/toy"
)

// This example reads the time from a DS1302 connected to the RPI by
// three data lines - CE, CLK and IO. The default pin assignments are
// defined in loadConfig, but can be altered via configuration (env or
// config file). All three pins are driven, so do not run this example
// on a board where they serve other purposes.
func main() {
	cfg := loadConfig()
	chip, err := mmio.Open()
	if err != nil {
		panic(err)
	}
	defer chip.Close()
	var pins [3]ds1302.Pin
	for i, k := range []string{"ce", "clk", "io"} {
		pin, err := chip.Pin(int(cfg.GetInt(k)))
		if err != nil {
			panic(err)
		}
		pins[i] = pin
	}
	dev := ds1302.New(pins[0], pins[1], pins[2])
	defer dev.Close()

	c := toy.New(dev, &toy.CalibStore{Path: toy.DefaultCalibFile}, toy.Config{})
	r, err := c.Read()
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s (raw %s, corrected %v)\n", r.Time, r.Raw, r.Corrected)
}

// Config defines the minimal configuration interface
type Config interface {
	GetInt(k string) int64
}

func loadConfig() Config {
	defaultConfig := map[string]interface{}{
		"ce":  23,
		"clk": 22,
		"io":  25,
	}
	def := dict.New(dict.WithMap(defaultConfig))
	eget, err := env.New(env.WithEnvPrefix("TOYREAD_"))
	if err != nil {
		panic(err)
	}
	sources := config.NewStack(eget)
	cfg := config.NewConfig(config.Decorate(sources, config.WithDefault(def)))

	// implicit and optional config file
	jget, err := json.New(json.FromFile("toyread.json"))
	if err == nil {
		sources.Append(jget)
	} else {
		if _, ok := err.(*os.PathError); !ok {
			panic(err)
		}
	}
	m := cfg.GetMust("", config.WithPanic())
	return m
}
