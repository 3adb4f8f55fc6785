package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewatch/signal-monitor-go/internal/config"
	"github.com/tradewatch/signal-monitor-go/internal/models"
)

func sampleReport(totalSignals int) models.PerformanceReport {
	maxGain := 12.5
	maxLoss := -4.0
	return models.PerformanceReport{
		GeneratedAt:    time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		PendingSignals: 2,
		Aggregate: models.PerformanceStats{
			TotalSignals:      totalSignals,
			SuccessfulSignals: totalSignals / 2,
			SuccessRate:       50,
			AvgROI:            1.25,
			TotalROI:          float64(totalSignals) * 1.25,
			Volatility:        3.1,
			SharpeRatio:       0.4,
			SharpeDefined:     true,
			WinLossRatio:      1.0,
			MaxGain:           &maxGain,
			MaxLoss:           &maxLoss,
		},
		ByCoin: map[string]models.PerformanceStats{
			"BTC": {TotalSignals: totalSignals},
		},
	}
}

func TestStore_AppendAndLatest(t *testing.T) {
	store := NewStore(config.HistoryConfig{})

	_, ok := store.Latest()
	assert.False(t, ok)
	assert.Zero(t, store.Len())

	store.Append(sampleReport(4))
	store.Append(sampleReport(8))

	assert.Equal(t, 2, store.Len())

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, 8, latest.Report.Aggregate.TotalSignals)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, 4, all[0].Report.Aggregate.TotalSignals)
	assert.Equal(t, 8, all[1].Report.Aggregate.TotalSignals)
}

func TestStore_MaxEntries(t *testing.T) {
	store := NewStore(config.HistoryConfig{MaxEntries: 3})

	for i := 1; i <= 5; i++ {
		store.Append(sampleReport(i))
	}

	all := store.All()
	require.Len(t, all, 3)
	// Oldest entries are evicted first.
	assert.Equal(t, 3, all[0].Report.Aggregate.TotalSignals)
	assert.Equal(t, 5, all[2].Report.Aggregate.TotalSignals)
}

func TestStore_MaxAge(t *testing.T) {
	store := NewStore(config.HistoryConfig{MaxAge: time.Hour})

	current := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return current })

	store.Append(sampleReport(1))

	current = current.Add(30 * time.Minute)
	store.Append(sampleReport(2))

	// 90 minutes later the first entry has aged out.
	current = current.Add(time.Hour)
	store.Append(sampleReport(3))

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Report.Aggregate.TotalSignals)
	assert.Equal(t, 3, all[1].Report.Aggregate.TotalSignals)
}

func TestStore_StoredReportsAreIsolated(t *testing.T) {
	store := NewStore(config.HistoryConfig{})

	report := sampleReport(4)
	store.Append(report)

	// Mutating the caller's report after append must not leak into the
	// stored copy, including through the max gain/loss pointers.
	report.ByCoin["BTC"] = models.PerformanceStats{TotalSignals: 99}
	*report.Aggregate.MaxGain = 99.9

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, 4, latest.Report.ByCoin["BTC"].TotalSignals)
	assert.InDelta(t, 12.5, *latest.Report.Aggregate.MaxGain, 1e-9)

	// Mutating a returned copy must not leak into the store either.
	*latest.Report.Aggregate.MaxLoss = -99.9
	again, _ := store.Latest()
	assert.InDelta(t, -4.0, *again.Report.Aggregate.MaxLoss, 1e-9)
}

func TestStore_Rows(t *testing.T) {
	store := NewStore(config.HistoryConfig{})
	at := time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return at })

	store.Append(sampleReport(4))

	rows := store.Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(Header()))

	assert.Equal(t, "2026-08-28T12:30:00Z", rows[0][0])
	assert.Equal(t, "4", rows[0][1])
	assert.Equal(t, "2", rows[0][2])
	assert.Equal(t, "50.00", rows[0][3])
	assert.Equal(t, "2", rows[0][len(rows[0])-1])
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(config.HistoryConfig{MaxEntries: 10})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			store.Append(sampleReport(i))
		}
	}()
	for i := 0; i < 50; i++ {
		store.All()
		store.Latest()
		store.Len()
	}
	<-done

	assert.Equal(t, 10, store.Len())
}
