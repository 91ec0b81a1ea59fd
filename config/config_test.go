package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/katalvlaran/popflow/config"
	"github.com/katalvlaran/popflow/forecast"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"POPFLOW_MODE", "POPFLOW_INPUT_YEARS", "POPFLOW_TARGET_YEAR", "POPFLOW_ALPHA",
	"POPFLOW_BETA", "POPFLOW_ENSEMBLE_SIZE", "POPFLOW_SEED", "POPFLOW_LOCATIONS",
	"POPFLOW_OFFLOAD_TIMEOUT", "POPFLOW_DATA", "POPFLOW_METRICS_FILE",
}

// clearEnv unsets every POPFLOW_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "") // registers restore on cleanup
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("POPFLOW_INPUT_YEARS", "2015")
	t.Setenv("POPFLOW_TARGET_YEAR", "2020")

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, forecast.ModeSingle, c.Run.Mode)
	require.Equal(t, []int{2015}, c.Run.InputYears)
	require.Equal(t, 0.5, c.Run.Alpha)
	require.Equal(t, 0.3, c.Run.Beta)
	require.Equal(t, 100, c.Run.EnsembleSize)
	require.False(t, c.Run.HasSeed)
	require.Equal(t, 30*time.Second, c.OffloadTimeout)
	require.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POPFLOW_MODE", "MULTIPLE")
	t.Setenv("POPFLOW_INPUT_YEARS", "2005, 2010")
	t.Setenv("POPFLOW_TARGET_YEAR", "2015")
	t.Setenv("POPFLOW_ALPHA", "0.2")
	t.Setenv("POPFLOW_ENSEMBLE_SIZE", "500")
	t.Setenv("POPFLOW_SEED", "abc")
	t.Setenv("POPFLOW_LOCATIONS", "France, United Kingdom,,Spain")
	t.Setenv("POPFLOW_OFFLOAD_TIMEOUT", "5s")

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, forecast.ModeMultiple, c.Run.Mode)
	require.Equal(t, []int{2005, 2010}, c.Run.InputYears)
	require.Equal(t, 0.2, c.Run.Alpha)
	require.Equal(t, 500, c.Run.EnsembleSize)
	require.True(t, c.Run.HasSeed)
	require.Equal(t, "abc", c.Run.Seed)
	require.Equal(t, []string{"France", "United Kingdom", "Spain"}, c.Run.Locations)
	require.Equal(t, 5*time.Second, c.OffloadTimeout)
	require.NoError(t, c.Validate())
}

func TestFromEnvParseErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("POPFLOW_INPUT_YEARS", "2015,abc")
	t.Setenv("POPFLOW_ALPHA", "half")
	t.Setenv("POPFLOW_OFFLOAD_TIMEOUT", "soon")

	_, err := config.FromEnv()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	require.ErrorContains(t, err, "POPFLOW_ALPHA")
	require.ErrorContains(t, err, "POPFLOW_OFFLOAD_TIMEOUT")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "popflow.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"POPFLOW_INPUT_YEARS=2010\nPOPFLOW_TARGET_YEAR=2012\nPOPFLOW_BETA=0.9\n"), 0o600))
	t.Setenv("POPFLOW_BETA", "0.1") // the environment wins over the file

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{2010}, c.Run.InputYears)
	require.Equal(t, 2012, c.Run.TargetYear)
	require.Equal(t, 0.1, c.Run.Beta)

	// a missing file is not an error
	clearEnv(t)
	_, err = config.Load(filepath.Join(dir, "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{Run: forecast.Config{
			Mode: forecast.ModeSingle, InputYears: []int{2010}, TargetYear: 2011,
			Alpha: 0.5, Beta: 0.3, EnsembleSize: 100,
		}}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *config.Config){
		"mode":           func(c *config.Config) { c.Run.Mode = "both" },
		"no years":       func(c *config.Config) { c.Run.InputYears = nil },
		"target":         func(c *config.Config) { c.Run.InputYears = []int{2009, 2011} },
		"alpha high":     func(c *config.Config) { c.Run.Alpha = 1.5 },
		"beta negative":  func(c *config.Config) { c.Run.Beta = -0.1 },
		"ensemble small": func(c *config.Config) { c.Run.EnsembleSize = 9 },
		"ensemble large": func(c *config.Config) { c.Run.EnsembleSize = 2001 },
		"timeout":        func(c *config.Config) { c.OffloadTimeout = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			require.ErrorIs(t, c.Validate(), config.ErrInvalidConfig)
		})
	}

	edge := valid()
	edge.Run.Alpha, edge.Run.Beta, edge.Run.EnsembleSize = 0, 1, 2000
	require.NoError(t, edge.Validate())
}

func TestParseYears(t *testing.T) {
	ys, err := config.ParseYears(" 2001 2002,2003 ")
	require.NoError(t, err)
	require.Equal(t, []int{2001, 2002, 2003}, ys)

	ys, err = config.ParseYears("")
	require.NoError(t, err)
	require.Empty(t, ys)
}
