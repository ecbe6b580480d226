// Package scraper contains the session orchestration engine.
//
// The Scraper is the top-level control loop. One run authenticates a
// browser session, discovers candidate profile URLs from a listing
// page, then processes candidates strictly sequentially: each iteration
// re-checks the operating window, skips ledger hits, extracts the
// profile, persists it, and sleeps a randomized inter-record delay.
//
// Failure handling follows one rule: per-record failures (extraction,
// persistence) are logged and absorbed so the run continues, while
// configuration and session failures abort the run. Every stop reason
// (budget reached, window closed, no candidates, fatal error) is
// distinguishable in the final summary.
//
// Pacing is a correctness requirement here, not a bottleneck: record
// processing is deliberately sequential with randomized delays to keep
// a human-plausible cadence against the target site.
package scraper
