package monitor

import (
	"time"

	"github.com/tradewatch/signal-monitor-go/internal/config"
)

// NextReportTime returns the earliest configured daily report time
// strictly after now. The times list must not be empty.
func NextReportTime(now time.Time, times []config.DayTime) time.Time {
	var next time.Time
	for _, dt := range times {
		candidate := dt.Next(now)
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next
}

// nextWake picks the earlier of the two pending deadlines. The loop
// sleeps until this instant and then re-checks which timers are due.
func nextWake(nextCheck, nextReport time.Time) time.Time {
	if nextReport.Before(nextCheck) {
		return nextReport
	}
	return nextCheck
}
