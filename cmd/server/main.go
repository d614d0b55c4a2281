package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trackrate/internal/config"
	"trackrate/internal/logging"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "trackrate",
		Short: "Track review site: search the catalog, rate tracks, discuss reviews",
		// Bare invocation serves, like the old single-purpose binary.
		RunE:    runServe,
		Version: Version,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file; environment variables override it")
}

// loadConfig reads configuration and initialises logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
