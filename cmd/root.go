package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/citypulse-cli/internal/config"
	"github.com/KaramelBytes/citypulse-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Source flags (override config if set)
	flagDataDir   string
	flagDelimiter string

	// Loaded configuration and logger
	cfg *cfgpkg.Global
	log logging.Logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "citypulse",
	Short: "CityPulse CLI: London bike rentals, weather and metro traffic",
	Long: `CityPulse joins daily bike-rental counts with weather observations, fits simple
regressions and correlations, and tiers metro stations by annual traffic.
Results are printed as Markdown or JSON, and map layers are written as GeoJSON.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.citypulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the CSV sources (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',', ';' or 'tab' (default: sniff from header)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}

	lc := logging.DefaultConfig()
	lc.Level = cfg.LogLevel
	if debug {
		lc.Level = "debug"
	}
	lc.FilePath = cfg.LogFile
	log = logging.New(lc)
}
