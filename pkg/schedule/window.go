package schedule

import (
	"fmt"
	"time"

	"profilescraper/pkg/config"
	"profilescraper/pkg/logger"
)

// Window answers whether scraping may run at a given instant, based on a
// weekly operating window: a set of permitted weekdays and an inclusive
// [start, end] time-of-day range, evaluated in a configured timezone.
type Window struct {
	days        map[time.Weekday]bool
	startMinute int // minutes from midnight
	endMinute   int
	location    *time.Location
}

// NewWindow builds a Window from configuration. An invalid timezone falls
// back to UTC and logs a warning; construction never fails.
func NewWindow(cfg *config.ScheduleConfig, log logger.Logger) *Window {
	if log == nil {
		log = logger.GetLogger()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.WarnWithFields("Unknown timezone, falling back to UTC", map[string]interface{}{
			"timezone": cfg.Timezone,
		})
		loc = time.UTC
	}

	days := make(map[time.Weekday]bool, len(cfg.Days))
	for _, d := range cfg.Days {
		days[d] = true
	}

	return &Window{
		days:        days,
		startMinute: cfg.StartHour*60 + cfg.StartMinute,
		endMinute:   cfg.EndHour*60 + cfg.EndMinute,
		location:    loc,
	}
}

// Evaluate reports whether now falls inside the operating window, with a
// human-readable reason. The end minute is inclusive.
func (w *Window) Evaluate(now time.Time) (bool, string) {
	local := now.In(w.location)

	if !w.days[local.Weekday()] {
		return false, fmt.Sprintf("outside operating days: today is %s", local.Weekday())
	}

	minute := local.Hour()*60 + local.Minute()
	switch {
	case minute < w.startMinute:
		return false, fmt.Sprintf("before operating window: %s starts at %s",
			formatMinute(minute), formatMinute(w.startMinute))
	case minute > w.endMinute:
		return false, fmt.Sprintf("after operating window: %s ended at %s",
			formatMinute(minute), formatMinute(w.endMinute))
	default:
		return true, "within operating window"
	}
}

// Location returns the timezone the window is evaluated in
func (w *Window) Location() *time.Location {
	return w.location
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
