package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/citypulse-cli/internal/config"
	"github.com/KaramelBytes/citypulse-cli/internal/schema"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CityPulse configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "rental_files: %s\n", strings.Join(cfg.RentalFiles, ","))
		fmt.Fprintf(out, "weather_file: %s\n", cfg.WeatherFile)
		fmt.Fprintf(out, "metro_file: %s\n", cfg.MetroFile)
		fmt.Fprintf(out, "stations_file: %s\n", cfg.StationsFile)
		fmt.Fprintf(out, "tube_lines_file: %s\n", cfg.TubeLinesFile)
		fmt.Fprintf(out, "cycle_stations_file: %s\n", cfg.CycleStationsFile)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %s\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %s\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %s\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "metro_scale_factor: %g\n", cfg.MetroScaleFactor)
		fmt.Fprintf(out, "default_covariate: %s\n", cfg.DefaultCovariate)
		fmt.Fprintf(out, "default_subset: %s\n", cfg.DefaultSubset)
		fmt.Fprintf(out, "min_bikes: %d\n", cfg.MinBikes)
		fmt.Fprintf(out, "cache_ttl_sec: %d\n", cfg.CacheTTLSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		if cfg.LogFile != "" {
			fmt.Fprintf(out, "log_file: %s\n", cfg.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// start from the file alone so flag and env overrides are not persisted
		fc, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "data_dir":
			fc.DataDir = val
		case "rental_files":
			var files []string
			for _, f := range strings.Split(val, ",") {
				if f = strings.TrimSpace(f); f != "" {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("rental_files needs at least one file")
			}
			fc.RentalFiles = files
		case "weather_file":
			fc.WeatherFile = val
		case "metro_file":
			fc.MetroFile = val
		case "stations_file":
			fc.StationsFile = val
		case "tube_lines_file":
			fc.TubeLinesFile = val
		case "cycle_stations_file":
			fc.CycleStationsFile = val
		case "delimiter", "decimal_separator", "thousands_separator":
			if _, err := parseRune(key, val); err != nil {
				return err
			}
			switch key {
			case "delimiter":
				fc.Delimiter = val
			case "decimal_separator":
				fc.DecimalSeparator = val
			default:
				fc.ThousandsSeparator = val
			}
		case "metro_scale_factor":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for metro_scale_factor: %v", val)
			}
			fc.MetroScaleFactor = f
		case "default_covariate":
			c, err := schema.ParseCovariate(val)
			if err != nil {
				return err
			}
			fc.DefaultCovariate = string(c)
		case "default_subset":
			s, err := schema.ParseSubset(val)
			if err != nil {
				return err
			}
			fc.DefaultSubset = string(s)
		case "min_bikes":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for min_bikes: %v", val)
			}
			fc.MinBikes = i
		case "cache_ttl_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for cache_ttl_sec: %v", val)
			}
			fc.CacheTTLSec = i
		case "log_level":
			switch strings.ToLower(val) {
			case "trace", "debug", "info", "warn", "warning", "error":
				fc.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_file":
			fc.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(fc, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
