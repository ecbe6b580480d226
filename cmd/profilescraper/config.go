package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"profilescraper/pkg/config"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/schedule"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration the scraper would run with, after merging
defaults, the config file, environment variables, and flags.`,
	Run: runConfigShow,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write a configuration file populated with defaults. Without a path it
writes .profilescraper.yaml in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if timezone != "" {
		flags["timezone"] = timezone
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to render configuration:", err)
		os.Exit(1)
	}
	fmt.Print(string(out))

	window := schedule.NewWindow(&cfg.Schedule, logger.NewNopLogger())
	permitted, reason := window.Evaluate(time.Now())
	fmt.Printf("\n# operating window now: %s (permitted: %v)\n", reason, permitted)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := ".profilescraper.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "Refusing to overwrite existing file: %s\n", path)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to write configuration:", err)
		os.Exit(1)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Println("Wrote default configuration to", abs)
}
