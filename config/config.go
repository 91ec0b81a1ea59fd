// SPDX-License-Identifier: MIT

// Package config loads popflow's settings from an optional .env file and the
// process environment, with defaults for everything but the years.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"

	"github.com/katalvlaran/popflow/forecast"
)

// ErrInvalidConfig is returned for unparsable or out-of-range settings.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Accepted ranges.
const (
	MinEnsembleSize = 10
	MaxEnsembleSize = 2000
)

// Defaults.
const (
	DefaultMode           = forecast.ModeSingle
	DefaultAlpha          = 0.5
	DefaultBeta           = 0.3
	DefaultEnsembleSize   = 100
	DefaultOffloadTimeout = 30 * time.Second
)

// Config is the outer configuration of one CLI invocation.
type Config struct {
	Run            forecast.Config
	OffloadTimeout time.Duration
	DataFile       string // POPFLOW_DATA
	MetricsFile    string // POPFLOW_METRICS_FILE, Prometheus textfile output
}

// Load reads envFile (a missing file is ignored; "" means ".env") into the
// environment without overriding variables already set, then builds the
// Config from POPFLOW_* variables. It does not call Validate.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: %s: %w", envFile, err)
	}

	return FromEnv()
}

// FromEnv builds the Config from the process environment alone.
func FromEnv() (Config, error) {
	var (
		c    Config
		errs []error
		err  error
	)
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	c.Run.Mode = forecast.Mode(strings.ToLower(getEnv("POPFLOW_MODE", string(DefaultMode))))
	c.Run.InputYears, err = ParseYears(os.Getenv("POPFLOW_INPUT_YEARS"))
	collect(err)
	c.Run.TargetYear, err = parseInt("POPFLOW_TARGET_YEAR", 0)
	collect(err)
	c.Run.Alpha, err = parseFloat("POPFLOW_ALPHA", DefaultAlpha)
	collect(err)
	c.Run.Beta, err = parseFloat("POPFLOW_BETA", DefaultBeta)
	collect(err)
	c.Run.EnsembleSize, err = parseInt("POPFLOW_ENSEMBLE_SIZE", DefaultEnsembleSize)
	collect(err)
	c.Run.Seed = os.Getenv("POPFLOW_SEED")
	c.Run.HasSeed = c.Run.Seed != ""
	c.Run.Locations = ParseLocations(os.Getenv("POPFLOW_LOCATIONS"))
	c.OffloadTimeout, err = parseDuration("POPFLOW_OFFLOAD_TIMEOUT", DefaultOffloadTimeout)
	collect(err)
	c.DataFile = os.Getenv("POPFLOW_DATA")
	c.MetricsFile = os.Getenv("POPFLOW_METRICS_FILE")

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}

	return c, nil
}

// Validate enforces the ranges the model expects:
// α, β ∈ [0, 1]; ensemble size in [10, 2000]; target year after the latest
// input year; a known mode.
func (c Config) Validate() error {
	r := c.Run
	switch {
	case r.Mode != forecast.ModeSingle && r.Mode != forecast.ModeMultiple:
		return fmt.Errorf("%w: mode %q (want single or multiple)", ErrInvalidConfig, r.Mode)
	case len(r.InputYears) == 0:
		return fmt.Errorf("%w: no input years", ErrInvalidConfig)
	case r.TargetYear <= slices.Max(r.InputYears):
		return fmt.Errorf("%w: target year %d must be after %d", ErrInvalidConfig, r.TargetYear, slices.Max(r.InputYears))
	case !(r.Alpha >= 0 && r.Alpha <= 1):
		return fmt.Errorf("%w: alpha %g outside [0, 1]", ErrInvalidConfig, r.Alpha)
	case !(r.Beta >= 0 && r.Beta <= 1):
		return fmt.Errorf("%w: beta %g outside [0, 1]", ErrInvalidConfig, r.Beta)
	case r.EnsembleSize < MinEnsembleSize || r.EnsembleSize > MaxEnsembleSize:
		return fmt.Errorf("%w: ensemble size %d outside [%d, %d]",
			ErrInvalidConfig, r.EnsembleSize, MinEnsembleSize, MaxEnsembleSize)
	case c.OffloadTimeout < 0:
		return fmt.Errorf("%w: negative offload timeout", ErrInvalidConfig)
	}

	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) (int, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, s)
	}
	return v, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, s)
	}
	return v, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, s)
	}
	return v, nil
}

// ParseYears reads a comma or space separated year list.
func ParseYears(s string) ([]int, error) {
	var out []int
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	for _, f := range fields {
		y, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: year %q", ErrInvalidConfig, f)
		}
		out = append(out, y)
	}
	return out, nil
}

// ParseLocations reads a comma separated list of location names. Names may
// contain spaces ("United Kingdom").
func ParseLocations(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
