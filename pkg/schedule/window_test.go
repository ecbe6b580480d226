package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profilescraper/pkg/config"
	"profilescraper/pkg/logger"
)

func weekdayConfig() *config.ScheduleConfig {
	return &config.ScheduleConfig{
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		StartHour:   9,
		StartMinute: 0,
		EndHour:     16,
		EndMinute:   30,
		Timezone:    "UTC",
	}
}

func TestEvaluateAcrossWeekGrid(t *testing.T) {
	w := NewWindow(weekdayConfig(), logger.NewNopLogger())

	// 2026-08-17 is a Monday. Walk the full week at 15 minute steps and
	// compare against the contract directly.
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		for minute := 0; minute < 24*60; minute += 15 {
			now := monday.AddDate(0, 0, day).Add(time.Duration(minute) * time.Minute)

			wantDay := now.Weekday() != time.Saturday && now.Weekday() != time.Sunday
			tod := now.Hour()*60 + now.Minute()
			wantTime := tod >= 9*60 && tod <= 16*60+30

			permitted, reason := w.Evaluate(now)
			assert.Equal(t, wantDay && wantTime, permitted,
				"at %s: %s", now.Format("Mon 15:04"), reason)
		}
	}
}

func TestEvaluateBoundaryMinutes(t *testing.T) {
	w := NewWindow(weekdayConfig(), logger.NewNopLogger())
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		hour, minute int
		want         bool
	}{
		{8, 59, false},
		{9, 0, true},
		{16, 29, true},
		{16, 30, true}, // end minute is inclusive
		{16, 31, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%02d:%02d", tt.hour, tt.minute), func(t *testing.T) {
			now := monday.Add(time.Duration(tt.hour)*time.Hour + time.Duration(tt.minute)*time.Minute)
			permitted, _ := w.Evaluate(now)
			assert.Equal(t, tt.want, permitted)
		})
	}
}

func TestEvaluateReasons(t *testing.T) {
	w := NewWindow(weekdayConfig(), logger.NewNopLogger())

	saturday := time.Date(2026, 8, 22, 12, 0, 0, 0, time.UTC)
	permitted, reason := w.Evaluate(saturday)
	assert.False(t, permitted)
	assert.Contains(t, reason, "outside operating days")
	assert.Contains(t, reason, "Saturday")

	early := time.Date(2026, 8, 17, 7, 15, 0, 0, time.UTC)
	permitted, reason = w.Evaluate(early)
	assert.False(t, permitted)
	assert.Contains(t, reason, "before operating window")
	assert.Contains(t, reason, "09:00")

	late := time.Date(2026, 8, 17, 20, 0, 0, 0, time.UTC)
	permitted, reason = w.Evaluate(late)
	assert.False(t, permitted)
	assert.Contains(t, reason, "after operating window")
	assert.Contains(t, reason, "16:30")

	inside := time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)
	permitted, reason = w.Evaluate(inside)
	assert.True(t, permitted)
	assert.Equal(t, "within operating window", reason)
}

func TestEvaluateRespectsTimezone(t *testing.T) {
	cfg := weekdayConfig()
	cfg.Timezone = "America/New_York"
	w := NewWindow(cfg, logger.NewNopLogger())

	// 14:00 UTC on a Monday is 10:00 in New York (EDT), inside the window.
	utcAfternoon := time.Date(2026, 8, 17, 14, 0, 0, 0, time.UTC)
	permitted, _ := w.Evaluate(utcAfternoon)
	assert.True(t, permitted)

	// 06:00 UTC is 02:00 in New York, before the window.
	utcMorning := time.Date(2026, 8, 17, 6, 0, 0, 0, time.UTC)
	permitted, _ = w.Evaluate(utcMorning)
	assert.False(t, permitted)
}

func TestInvalidTimezoneFallsBackToUTC(t *testing.T) {
	cfg := weekdayConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	w := NewWindow(cfg, logger.NewNopLogger())

	require.Equal(t, time.UTC, w.Location())

	inside := time.Date(2026, 8, 17, 12, 0, 0, 0, time.UTC)
	permitted, _ := w.Evaluate(inside)
	assert.True(t, permitted)
}
