package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information, overridden at build time
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string
	timezone   string
	headless   bool
	assumeYes  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "profilescraper",
	Short: "A scheduled profile scraper with deduplication and pacing",
	Long: `Profile Scraper extracts structured profile records from listing pages,
subject to a weekly operating window and human-plausible pacing.

Features:
  - Operating window gating (weekday set, start/end time, timezone aware)
  - Randomized inter-record and in-page delays
  - Persistent dedup ledger so interrupted runs never redo work
  - Atomic JSON store plus a flattened CSV projection
  - Secure credential storage using the system keychain

Runs stop cleanly when the operating window closes or the record budget
is reached; per-profile failures never abort a session.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.profilescraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for scraped data and the dedup ledger")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "timezone the operating window is evaluated in")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run the browser headless")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "skip interactive confirmation prompts")

	rootCmd.SetVersionTemplate(`Profile Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
