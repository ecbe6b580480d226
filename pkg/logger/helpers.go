package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogProfileScraped logs the outcome of a single profile scrape
func LogProfileScraped(profileURL, name string, success bool, err error) {
	fields := map[string]interface{}{
		"profile_url": profileURL,
		"name":        name,
		"success":     success,
	}

	l := GetLogger().WithFields(fields)

	if err != nil {
		l.WithError(err).Error("Profile scrape failed")
	} else if success {
		l.Info("Profile scraped")
	} else {
		l.Warn("Profile skipped")
	}
}

// LogWindowStop logs when the run stops because the operating window closed
func LogWindowStop(reason string, now time.Time) {
	GetLogger().WithFields(map[string]interface{}{
		"reason": reason,
		"now":    now,
		"action": "window_stop",
	}).Warn("Stopped: outside operating window")
}

// LogPacingWait logs an upcoming inter-record delay
func LogPacingWait(delay time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"delay":  delay,
		"action": "pacing_wait",
	}).Info("Waiting before next profile")
}

// LogRunSummary logs the final run summary with a distinguishable stop reason
func LogRunSummary(processed int, stopReason string) {
	GetLogger().WithFields(map[string]interface{}{
		"processed":   processed,
		"stop_reason": stopReason,
	}).Info("Scraping session completed")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
