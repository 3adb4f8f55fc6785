package config

import (
	"fmt"
	"time"
)

// DayTime is a fixed wall-clock time of day ("HH:MM") used for the
// scheduled report cadence.
type DayTime struct {
	Hour   int
	Minute int
}

// ParseDayTime parses a "HH:MM" string.
func ParseDayTime(s string) (DayTime, error) {
	var dt DayTime
	if _, err := fmt.Sscanf(s, "%d:%d", &dt.Hour, &dt.Minute); err != nil {
		return DayTime{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if dt.Hour < 0 || dt.Hour > 23 || dt.Minute < 0 || dt.Minute > 59 {
		return DayTime{}, fmt.Errorf("time of day %q out of range", s)
	}
	return dt, nil
}

// String formats the time of day as "HH:MM".
func (dt DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", dt.Hour, dt.Minute)
}

// Next returns the first instant strictly after now at which this time
// of day occurs, in now's location.
func (dt DayTime) Next(now time.Time) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), dt.Hour, dt.Minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

// ParsedReportTimes parses the configured report times. Validate has
// already checked them, so parse failures are skipped.
func (m MonitorConfig) ParsedReportTimes() []DayTime {
	out := make([]DayTime, 0, len(m.ReportTimes))
	for _, s := range m.ReportTimes {
		dt, err := ParseDayTime(s)
		if err != nil {
			continue
		}
		out = append(out, dt)
	}
	return out
}
