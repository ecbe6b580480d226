package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"profilescraper/pkg/auth"
	"profilescraper/pkg/config"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/schedule"
	"profilescraper/pkg/scraper"
)

var (
	maxRecords  int
	accountName string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <listing-url>",
	Short: "Scrape profiles discovered from a listing or search page",
	Long: `Scrape profile records starting from a listing URL.

The scraper logs in, collects candidate profile links from the listing
page, and processes them one at a time with randomized delays. Profiles
already recorded in the dedup ledger are skipped. The run stops when the
record budget is reached, the candidate list is exhausted, or the
operating window closes.

Credentials come from stored accounts ('profilescraper auth login') or
the SCRAPER_EMAIL and SCRAPER_PASSWORD environment variables.`,
	Example: `  # Scrape with default settings
  profilescraper scrape "https://www.linkedin.com/search/results/people/?keywords=go"

  # Cap this run at 10 profiles, skip the confirmation prompt
  profilescraper scrape "https://..." --max 10 --yes

  # Use a specific stored account
  profilescraper scrape "https://..." --account work`,
	Args: cobra.ExactArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&maxRecords, "max", "m", 0, "maximum profiles to process this run (default from config)")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
}

func runScrape(cmd *cobra.Command, args []string) {
	location := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if timezone != "" {
		flags["timezone"] = timezone
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if maxRecords > 0 {
		flags["max-records"] = maxRecords
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Profile Scraper starting")

	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize credential manager:", err)
		os.Exit(1)
	}

	account, err := manager.Resolve(accountName)
	if err != nil {
		logger.WithError(err).Error("No credentials found")
		fmt.Fprintln(os.Stderr, "No credentials found.")
		fmt.Fprintln(os.Stderr, "\nTo store credentials securely, run:")
		fmt.Fprintln(os.Stderr, "  profilescraper auth login")
		fmt.Fprintln(os.Stderr, "\nOr set environment variables:")
		fmt.Fprintln(os.Stderr, "  export SCRAPER_EMAIL=you@example.com")
		fmt.Fprintln(os.Stderr, "  export SCRAPER_PASSWORD=yourpassword")
		os.Exit(1)
	}

	// Tell the operator up front if the window is closed; the run would
	// stop before the first profile anyway.
	window := schedule.NewWindow(&cfg.Schedule, logger.GetLogger())
	if permitted, reason := window.Evaluate(time.Now()); !permitted {
		fmt.Println("Note: currently", reason)
		fmt.Println("The run will stop before processing any profiles unless the window opens.")
	}

	if !confirmProceed(location, cfg.MaxRecords) {
		fmt.Println("Aborted.")
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg, account)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize scraper")
		fmt.Fprintln(os.Stderr, "Failed to initialize scraper:", err)
		os.Exit(1)
	}
	defer s.Close()

	summary, err := s.Run(ctx, location, maxRecords)
	if err != nil {
		logger.WithError(err).Error("Run failed")
		fmt.Fprintln(os.Stderr, "Run failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d profile(s): %s\n", summary.Processed, summary.StopReason)
	if summary.Skipped > 0 {
		fmt.Printf("Skipped %d already-processed profile(s)\n", summary.Skipped)
	}
	if summary.Failed > 0 {
		fmt.Printf("Failed to process %d profile(s); they remain eligible for retry\n", summary.Failed)
	}
}

// confirmProceed asks the operator before starting a run. --yes or a
// non-interactive stdin skips the prompt.
func confirmProceed(location string, budget int) bool {
	if assumeYes {
		return true
	}

	fmt.Printf("About to scrape up to %d profile(s) from:\n  %s\n", budget, location)
	fmt.Print("Proceed? (Y/n): ")

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		// Non-interactive environment, proceed
		return true
	}
	return strings.ToLower(strings.TrimSpace(answer)) != "n"
}
