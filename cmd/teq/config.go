// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dalzilio/teq"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// config holds the settings of a run. Values come from an optional YAML file
// and are overridden by the flags set on the command line.
type config struct {
	Mode            string     `yaml:"mode"`
	Seed            int64      `yaml:"seed"`
	Params          teq.Params `yaml:"params"`
	Circuits        []string   `yaml:"circuits"`
	WeightFunctions []string   `yaml:"weightfunctions"`
	LogLevel        string     `yaml:"log-level"`
	Parallelism     int        `yaml:"parallelism"`
	MaxNodes        int        `yaml:"maxnodes"` // limit on the size of compiled BDD, 0 for none
}

func defaultConfig() config {
	return config{
		Mode:     teq.Tolerant.String(),
		Seed:     42,
		Params:   teq.DefaultParams(),
		LogLevel: "warn",
	}
}

// loadConfig reads the YAML file at path on top of cfg. Keys missing from the
// file keep their value in cfg.
func loadConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return nil
}

// check verifies the number of input files.
func (cfg config) check() error {
	nc, nw := len(cfg.Circuits), len(cfg.WeightFunctions)
	switch {
	case nc == 0 || nw == 0:
		return fmt.Errorf("%w: at least one circuit and one weight function are needed", teq.ErrInvalidParameter)
	case nc == 1 && nw == 1:
		return fmt.Errorf("%w: only one file and one weightfunction given as input", teq.ErrInvalidParameter)
	case nc > 2 || nw > 2:
		return fmt.Errorf("%w: more than 2 files and/or weightfunctions given as input", teq.ErrInvalidParameter)
	}
	return nil
}

// sources returns the two circuits to compare; a single circuit is compared
// with itself.
func (cfg config) sources() [2]teq.Source {
	first := cfg.Circuits[0]
	second := first
	if len(cfg.Circuits) == 2 {
		second = cfg.Circuits[1]
	}
	return [2]teq.Source{teq.File(first), teq.File(second)}
}

// logger returns a console logger writing to w.
func (cfg config) logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: bad log level %q", teq.ErrInvalidParameter, cfg.LogLevel)
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "teq").Logger(), nil
}
