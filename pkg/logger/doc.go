// Package logger provides structured logging for the profile scraper.
//
// It wraps zerolog behind a small Logger interface with support for
// leveled logging, structured fields, pretty console output, optional
// file output, and a global instance initialized once at startup.
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	if err := logger.Initialize(cfg); err != nil { ... }
//	logger.WithField("profile_url", url).Info("Scraping profile")
//
// Tests should use NewNopLogger to silence output.
package logger
