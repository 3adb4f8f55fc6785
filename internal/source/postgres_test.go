package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewatch/signal-monitor-go/internal/models"
)

var signalColumns = []string{
	"id", "signal_type", "coin", "confidence", "strategy_name",
	"entry_price", "emitted_at", "exit_price", "evaluated_at", "reasoning",
}

func TestPostgresSource_FetchRecords(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	emittedAt := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	exit := decimal.RequireFromString("110")
	evaluatedAt := emittedAt.Add(3 * time.Hour)

	rows := pgxmock.NewRows(signalColumns).
		AddRow("sig-001", models.SignalTypeBuy, "BTC", 0.85, "momentum",
			decimal.RequireFromString("100"), emittedAt, &exit, &evaluatedAt, "breakout").
		AddRow("sig-002", models.SignalTypeHold, "ETH", 0.4, "meanrev",
			decimal.RequireFromString("3000"), emittedAt, (*decimal.Decimal)(nil), (*time.Time)(nil), "")
	mockPool.ExpectQuery("SELECT id, signal_type, coin, confidence, strategy_name").
		WillReturnRows(rows)

	src := NewPostgresSource(mockPool, nil)
	records, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "sig-001", records[0].ID)
	assert.Equal(t, models.SignalTypeBuy, records[0].SignalType)
	assert.True(t, records[0].Closed())
	require.NotNil(t, records[0].ExitPrice)
	assert.True(t, records[0].ExitPrice.Equal(exit))

	assert.Equal(t, "sig-002", records[1].ID)
	assert.False(t, records[1].Closed())
	assert.Nil(t, records[1].ExitPrice)
	assert.Nil(t, records[1].EvaluatedAt)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresSource_FetchRecords_SkipsInvalidRows(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	emittedAt := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	// The second row carries an out-of-range confidence and is dropped
	// without failing the fetch.
	rows := pgxmock.NewRows(signalColumns).
		AddRow("sig-001", models.SignalTypeBuy, "BTC", 0.85, "momentum",
			decimal.RequireFromString("100"), emittedAt, (*decimal.Decimal)(nil), (*time.Time)(nil), "").
		AddRow("sig-bad", models.SignalTypeBuy, "BTC", 1.5, "momentum",
			decimal.RequireFromString("100"), emittedAt, (*decimal.Decimal)(nil), (*time.Time)(nil), "")
	mockPool.ExpectQuery("SELECT id, signal_type").WillReturnRows(rows)

	src := NewPostgresSource(mockPool, nil)
	records, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sig-001", records[0].ID)
}

func TestPostgresSource_FetchRecords_QueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery("SELECT id, signal_type").
		WillReturnError(errors.New("connection refused"))

	src := NewPostgresSource(mockPool, nil)
	records, err := src.FetchRecords(context.Background())
	assert.Nil(t, records)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
