// SPDX-License-Identifier: MIT

// Command popflow forecasts foreign-population stock from a CSV of yearly
// per-country observations and writes the result as JSON.
//
//	popflow -data flows.csv -years 2015 -target 2020 -seed demo
//
// Settings come from .env / POPFLOW_* variables (see package config); flags
// that are set explicitly override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/popflow/config"
	"github.com/katalvlaran/popflow/dataset"
	"github.com/katalvlaran/popflow/forecast"
	"github.com/katalvlaran/popflow/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			logger.L().Error("popflow_failed", "err", err)
		}
		os.Exit(1)
	}
}

// run parses args, executes one forecast and writes JSON to stdout.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("popflow", flag.ContinueOnError)
	var (
		envFile  = fs.String("env", ".env", "dotenv file to load (missing is ignored)")
		data     = fs.String("data", "", "CSV dataset (overrides POPFLOW_DATA)")
		mode     = fs.String("mode", "", "single|multiple")
		yearList = fs.String("years", "", "input years, comma separated")
		target   = fs.Int("target", 0, "target year")
		alpha    = fs.Float64("alpha", 0, "distance effect in [0,1]")
		beta     = fs.Float64("beta", 0, "connectivity effect in [0,1]")
		size     = fs.Int("ensemble", 0, "ensemble size in [10,2000]")
		seed     = fs.String("seed", "", "seed string for a reproducible ensemble")
		locs     = fs.String("locations", "", "location subset, comma separated")
		timeout  = fs.Duration("timeout", 0, "offloaded sampler timeout")
		metrics  = fs.String("metrics-file", "", "write Prometheus metrics in textfile format")
		out      = fs.String("out", "-", "output file, - for stdout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.Setup()
	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.DataFile = *data
		case "mode":
			cfg.Run.Mode = forecast.Mode(*mode)
		case "years":
			cfg.Run.InputYears, flagErr = config.ParseYears(*yearList)
		case "target":
			cfg.Run.TargetYear = *target
		case "alpha":
			cfg.Run.Alpha = *alpha
		case "beta":
			cfg.Run.Beta = *beta
		case "ensemble":
			cfg.Run.EnsembleSize = *size
		case "seed":
			cfg.Run.Seed, cfg.Run.HasSeed = *seed, *seed != ""
		case "locations":
			cfg.Run.Locations = config.ParseLocations(*locs)
		case "timeout":
			cfg.OffloadTimeout = *timeout
		case "metrics-file":
			cfg.MetricsFile = *metrics
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DataFile == "" {
		return fmt.Errorf("%w: no dataset (use -data or POPFLOW_DATA)", config.ErrInvalidConfig)
	}

	ds, err := dataset.ReadFile(cfg.DataFile)
	if err != nil {
		return err
	}
	log.Info("dataset_loaded", "file", cfg.DataFile, "years", len(ds.Years()), "countries", len(ds.Countries()))

	reg := prometheus.NewRegistry()
	tel, err := forecast.NewTelemetry(reg)
	if err != nil {
		return err
	}
	runner := forecast.NewRunner(&forecast.Pipeline{
		OffloadTimeout: cfg.OffloadTimeout,
		Logger:         log,
		Telemetry:      tel,
	}, forecast.WithTransitionHook(func(id string, from, to forecast.State) {
		log.Debug("state", "run", id, "from", from, "to", to)
	}))

	res, runErr := runner.Run(ctx, cfg.Run, ds)
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			log.Warn("metrics_write_failed", "file", cfg.MetricsFile, "err", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if *out == "-" || *out == "" {
		return writeJSON(stdout, res)
	}
	return writeFile(*out, res)
}

// writeFile writes res to path; a failed close is reported like a failed write.
func writeFile(path string, res *forecast.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return writeJSON(f, res)
}

func writeJSON(w io.Writer, res *forecast.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}
