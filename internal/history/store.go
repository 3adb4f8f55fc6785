package history

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

// Entry is one retained performance report with its append timestamp.
type Entry struct {
	Timestamp time.Time                `json:"timestamp"`
	Report    models.PerformanceReport `json:"report"`
}

// Store retains past performance reports in insertion (chronological)
// order. Retention is applied at append time and never reorders or
// mutates stored entries.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	cfg     config.HistoryConfig
	now     func() time.Time
}

// NewStore creates a report history with the given retention policy.
func NewStore(cfg config.HistoryConfig) *Store {
	return &Store{
		cfg: cfg,
		now: time.Now,
	}
}

// SetNowFunc overrides the clock, for deterministic tests.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.now = now
}

// Append stores a copy of the report and applies retention.
func (s *Store) Append(report models.PerformanceReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp: s.now(),
		Report:    cloneReport(report),
	})

	if s.cfg.MaxAge > 0 {
		cutoff := s.now().Add(-s.cfg.MaxAge)
		kept := s.entries[:0]
		for _, e := range s.entries {
			if !e.Timestamp.Before(cutoff) {
				kept = append(kept, e)
			}
		}
		s.entries = kept
	}
	if s.cfg.MaxEntries > 0 && len(s.entries) > s.cfg.MaxEntries {
		s.entries = s.entries[len(s.entries)-s.cfg.MaxEntries:]
	}
}

// All returns copies of every retained entry, oldest first.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Timestamp: e.Timestamp, Report: cloneReport(e.Report)}
	}
	return out
}

// Latest returns the most recent entry, or false when empty.
func (s *Store) Latest() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}
	e := s.entries[len(s.entries)-1]
	return Entry{Timestamp: e.Timestamp, Report: cloneReport(e.Report)}, true
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Header returns the column names of the flat row model.
func Header() []string {
	return []string{
		"timestamp",
		"total_signals",
		"successful_signals",
		"success_rate",
		"avg_roi",
		"total_roi",
		"volatility",
		"sharpe_ratio",
		"win_loss_ratio",
		"pending_signals",
	}
}

// Rows flattens the retained history into tabular export rows, one per
// report, matching Header.
func (s *Store) Rows() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([][]string, 0, len(s.entries))
	for _, e := range s.entries {
		agg := e.Report.Aggregate
		rows = append(rows, []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(agg.TotalSignals),
			strconv.Itoa(agg.SuccessfulSignals),
			fmt.Sprintf("%.2f", agg.SuccessRate),
			fmt.Sprintf("%.4f", agg.AvgROI),
			fmt.Sprintf("%.4f", agg.TotalROI),
			fmt.Sprintf("%.4f", agg.Volatility),
			fmt.Sprintf("%.4f", agg.SharpeRatio),
			fmt.Sprintf("%.4f", agg.WinLossRatio),
			strconv.Itoa(e.Report.PendingSignals),
		})
	}
	return rows
}

// cloneReport deep-copies the map slices so stored reports stay
// independent of the caller's value.
func cloneReport(r models.PerformanceReport) models.PerformanceReport {
	out := r
	out.Aggregate = cloneOne(r.Aggregate)
	out.BySignalType = cloneStats(r.BySignalType)
	out.ByCoin = cloneStats(r.ByCoin)
	out.ByStrategy = cloneStats(r.ByStrategy)
	out.ByConfidence = cloneStats(r.ByConfidence)
	return out
}

func cloneStats(in map[string]models.PerformanceStats) map[string]models.PerformanceStats {
	if in == nil {
		return nil
	}
	out := make(map[string]models.PerformanceStats, len(in))
	for k, v := range in {
		out[k] = cloneOne(v)
	}
	return out
}

func cloneOne(v models.PerformanceStats) models.PerformanceStats {
	if v.MaxGain != nil {
		g := *v.MaxGain
		v.MaxGain = &g
	}
	if v.MaxLoss != nil {
		l := *v.MaxLoss
		v.MaxLoss = &l
	}
	return v
}
