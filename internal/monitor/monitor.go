// Package monitor drives the periodic performance checks and the
// scheduled report cadence on a single sequential timeline.
package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradewatch/signal-monitor-go/internal/analytics"
	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/database"
	"github.com/tradewatch/signal-monitor-go/internal/export"
	"github.com/tradewatch/signal-monitor-go/internal/history"
	"github.com/tradewatch/signal-monitor-go/internal/models"
	"github.com/tradewatch/signal-monitor-go/internal/notifier"
	"github.com/tradewatch/signal-monitor-go/internal/source"
)

// latestReportKey is where the most recent report is cached for
// external consumers such as the dashboard.
const latestReportKey = "performance:latest_report"

// Monitor owns one monitoring timeline: fetch records, compute
// metrics, evaluate thresholds, dispatch notifications, retain
// history. Checks and scheduled reports never run concurrently.
type Monitor struct {
	cfg       *config.Config
	source    source.RecordSource
	engine    *analytics.Engine
	evaluator *analytics.Evaluator
	history   *history.Store
	notifier  notifier.Notifier
	redis     *database.RedisClient
	logger    *logrus.Logger

	// lastRecords is the snapshot fetched by the most recent check,
	// reused by a co-due scheduled report so it does not re-query.
	lastRecords []models.SignalRecord

	now func() time.Time
}

// New creates a monitor. redis may be nil; the report cache is then
// skipped.
func New(
	cfg *config.Config,
	src source.RecordSource,
	engine *analytics.Engine,
	evaluator *analytics.Evaluator,
	store *history.Store,
	sink notifier.Notifier,
	redis *database.RedisClient,
	logger *logrus.Logger,
) *Monitor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Monitor{
		cfg:       cfg,
		source:    src,
		engine:    engine,
		evaluator: evaluator,
		history:   store,
		notifier:  sink,
		redis:     redis,
		logger:    logger,
		now:       time.Now,
	}
}

// SetNowFunc overrides the clock, for deterministic tests.
func (m *Monitor) SetNowFunc(now func() time.Time) {
	m.now = now
}

// History exposes the report history for the status API.
func (m *Monitor) History() *history.Store {
	return m.history
}

// Run starts the continuous monitoring loop: an initial check, then a
// select over the periodic check timer and the next daily report time.
// When both are due in the same wake-up the check runs first and the
// report reuses its fresh data. The loop exits cleanly on context
// cancellation; an in-flight tick always finishes.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.cfg.Monitor.CheckInterval
	reportTimes := m.cfg.Monitor.ParsedReportTimes()

	m.logger.WithFields(logrus.Fields{
		"check_interval": interval.String(),
		"report_times":   m.cfg.Monitor.ReportTimes,
	}).Info("Starting performance monitor")

	if _, err := m.RunCheck(ctx); err != nil {
		m.logger.WithError(err).Warn("Initial performance check failed")
	}

	nextCheck := m.now().Add(interval)
	nextReport := NextReportTime(m.now(), reportTimes)

	for {
		wake := nextWake(nextCheck, nextReport)
		timer := time.NewTimer(wake.Sub(m.now()))

		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("Performance monitor stopped")
			return nil
		case <-timer.C:
		}

		now := m.now()
		checkDue := !now.Before(nextCheck)
		reportDue := !now.Before(nextReport)

		if checkDue {
			if _, err := m.RunCheck(ctx); err != nil {
				// The failed tick is logged and skipped; the schedule
				// for the next tick is unaffected.
				m.logger.WithError(err).Warn("Performance check failed")
			}
			nextCheck = now.Add(interval)
		}
		if reportDue {
			if err := m.RunReport(ctx); err != nil {
				m.logger.WithError(err).Warn("Scheduled report failed")
			}
			nextReport = NextReportTime(now, reportTimes)
		}
	}
}

// RunCheck performs one full monitoring cycle: fetch, compute,
// evaluate, notify, retain. Notification failure does not fail the
// check; the report is still appended to history.
func (m *Monitor) RunCheck(ctx context.Context) (models.PerformanceReport, error) {
	m.logger.Debug("Performance check started")

	records, err := m.fetchWithRetry(ctx)
	if err != nil {
		return models.PerformanceReport{}, err
	}
	m.lastRecords = records

	report := m.engine.Compute(records)

	var previous *models.PerformanceReport
	if entry, ok := m.history.Latest(); ok {
		previous = &entry.Report
	}

	alerts := m.evaluator.Evaluate(report, previous)
	if len(alerts) > 0 {
		message := notifier.FormatAlerts(alerts)
		if err := m.notifier.Send(ctx, message); err != nil {
			m.logger.WithError(err).Warn("Failed to deliver performance alerts")
		} else {
			m.logger.WithField("alerts", len(alerts)).Info("Performance alerts sent")
		}
	}

	m.history.Append(report)
	m.cacheLatest(ctx, report)

	m.logger.WithFields(logrus.Fields{
		"total_signals": report.Aggregate.TotalSignals,
		"pending":       report.PendingSignals,
		"success_rate":  report.Aggregate.SuccessRate,
		"alerts":        len(alerts),
	}).Info("Performance check completed")

	return report, nil
}

// RunReport sends a formatted summary regardless of thresholds. The
// latest report is reused when it is fresh enough (the co-due case
// after a check); otherwise a fresh one is computed and retained.
func (m *Monitor) RunReport(ctx context.Context) error {
	var report models.PerformanceReport

	entry, ok := m.history.Latest()
	if ok && m.now().Sub(entry.Report.GeneratedAt) <= m.cfg.Monitor.ReportFreshness {
		report = entry.Report
	} else {
		records, err := m.fetchWithRetry(ctx)
		if err != nil {
			return err
		}
		m.lastRecords = records
		report = m.engine.Compute(records)
		m.history.Append(report)
		m.cacheLatest(ctx, report)
	}

	summary := notifier.FormatSummary(report)
	if err := m.notifier.Send(ctx, summary); err != nil {
		m.logger.WithError(err).Warn("Failed to deliver summary report")
	} else {
		m.logger.Info("Summary report sent")
	}

	// Daily CSV export alongside the report, from the same snapshot.
	if len(m.lastRecords) > 0 {
		path, err := export.ToFile(m.cfg.Export.Directory, m.now(), m.lastRecords, m.cfg.Thresholds.HoldTolerance)
		if err != nil {
			m.logger.WithError(err).Warn("Failed to write daily CSV export")
		} else {
			m.logger.WithField("path", path).Info("Daily CSV export written")
		}
	}

	return nil
}

// RunExport performs a one-off CSV dump of all records and returns the
// written path.
func (m *Monitor) RunExport(ctx context.Context) (string, error) {
	records, err := m.fetchWithRetry(ctx)
	if err != nil {
		return "", err
	}

	path, err := export.ToFile(m.cfg.Export.Directory, m.now(), records, m.cfg.Thresholds.HoldTolerance)
	if err != nil {
		return "", err
	}
	m.logger.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Info("CSV export written")
	return path, nil
}

// fetchWithRetry queries the record source with bounded retry. Each
// attempt is bounded by the configured timeout.
func (m *Monitor) fetchWithRetry(ctx context.Context) ([]models.SignalRecord, error) {
	attempts := m.cfg.Source.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			m.logger.WithError(lastErr).WithField("attempt", attempt+1).Warn("Retrying record fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(m.cfg.Source.RetryDelay):
			}
		}

		fetchCtx := ctx
		var cancel context.CancelFunc
		if m.cfg.Source.Timeout > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, m.cfg.Source.Timeout)
		}
		records, err := m.source.FetchRecords(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// cacheLatest stores the report as JSON in Redis for external access.
func (m *Monitor) cacheLatest(ctx context.Context, report models.PerformanceReport) {
	if m.redis == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to marshal report for caching")
		return
	}
	if err := m.redis.Set(ctx, latestReportKey, data, 24*time.Hour); err != nil {
		m.logger.WithError(err).Warn("Failed to cache latest report")
	}
}
