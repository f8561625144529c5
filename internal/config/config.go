package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// DataDir is prepended to relative file names below.
	DataDir           string   `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	RentalFiles       []string `mapstructure:"rental_files" yaml:"rental_files,omitempty"`
	WeatherFile       string   `mapstructure:"weather_file" yaml:"weather_file,omitempty"`
	MetroFile         string   `mapstructure:"metro_file" yaml:"metro_file,omitempty"`
	StationsFile      string   `mapstructure:"stations_file" yaml:"stations_file,omitempty"`
	TubeLinesFile     string   `mapstructure:"tube_lines_file" yaml:"tube_lines_file,omitempty"`
	CycleStationsFile string   `mapstructure:"cycle_stations_file" yaml:"cycle_stations_file,omitempty"`

	// Parsing
	Delimiter          string  `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
	DecimalSeparator   string  `mapstructure:"decimal_separator" yaml:"decimal_separator,omitempty"`
	ThousandsSeparator string  `mapstructure:"thousands_separator" yaml:"thousands_separator,omitempty"`
	MetroScaleFactor   float64 `mapstructure:"metro_scale_factor" yaml:"metro_scale_factor,omitempty"`

	// Analysis defaults
	DefaultCovariate string `mapstructure:"default_covariate" yaml:"default_covariate,omitempty"`
	DefaultSubset    string `mapstructure:"default_subset" yaml:"default_subset,omitempty"`
	MinBikes         int    `mapstructure:"min_bikes" yaml:"min_bikes,omitempty"`
	CacheTTLSec      int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec,omitempty"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// Dir returns ~/.citypulse.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".citypulse"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.citypulse/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (CITYPULSE_*, optionally from ./.env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// a missing .env is normal
	_ = godotenv.Load()
	return load(cfgFile, true)
}

// LoadFile loads defaults and the config file only, ignoring the environment.
// Use it before Save so env overrides are not persisted.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("CITYPULSE")
		v.AutomaticEnv()
	}

	v.SetDefault("data_dir", ".")
	v.SetDefault("rental_files", []string{"fietsdata2021_rentals_by_day.csv"})
	v.SetDefault("weather_file", "weather_london.csv")
	v.SetDefault("metro_file", "AC2021_AnnualisedEntryExit.csv")
	v.SetDefault("stations_file", "London stations.csv")
	v.SetDefault("tube_lines_file", "London tube lines.csv")
	v.SetDefault("cycle_stations_file", "cycle_stations.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("metro_scale_factor", 1000.0)
	v.SetDefault("default_covariate", "tavg")
	v.SetDefault("default_subset", "weekday")
	v.SetDefault("min_bikes", 0)
	v.SetDefault("cache_ttl_sec", 600)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
