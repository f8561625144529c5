package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "weather_london.csv", c.WeatherFile)
	assert.Equal(t, []string{"fietsdata2021_rentals_by_day.csv"}, c.RentalFiles)
	assert.Equal(t, 1000.0, c.MetroScaleFactor)
	assert.Equal(t, "tavg", c.DefaultCovariate)
	assert.Equal(t, "weekday", c.DefaultSubset)
}

func TestSaveThenLoadRoundTripsAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	in := &Global{
		DataDir:          "/srv/london",
		RentalFiles:      []string{"2021_Q2_Central.csv", "2021_Q3_Central.csv"},
		WeatherFile:      "weather.csv",
		MetroScaleFactor: 1000,
		DefaultCovariate: "prcp",
		DefaultSubset:    "weekend",
		MinBikes:         3,
	}
	require.NoError(t, Save(in, path))

	t.Setenv("CITYPULSE_DEFAULT_COVARIATE", "wspd")
	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/london", out.DataDir)
	assert.Equal(t, in.RentalFiles, out.RentalFiles)
	assert.Equal(t, "weekend", out.DefaultSubset)
	assert.Equal(t, 3, out.MinBikes)
	assert.Equal(t, "wspd", out.DefaultCovariate)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unterminated\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(&Global{DataDir: "/srv/london", LogLevel: "warn"}, path))
	t.Setenv("CITYPULSE_DATA_DIR", "/tmp/override")
	t.Setenv("CITYPULSE_LOG_LEVEL", "debug")

	withEnv, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", withEnv.DataDir)

	fileOnly, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/london", fileOnly.DataDir)
	assert.Equal(t, "warn", fileOnly.LogLevel)
	assert.Equal(t, "weather_london.csv", fileOnly.WeatherFile)
}
