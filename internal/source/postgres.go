package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/tradewatch/signal-monitor-go/internal/models"
)

const fetchRecordsQuery = `
	SELECT id, signal_type, coin, confidence, strategy_name,
	       entry_price, emitted_at, exit_price, evaluated_at, reasoning
	FROM signal_records
	ORDER BY emitted_at, id`

// QueryPool defines the pool operations the source needs. The
// interface allows both a real pgx pool and a mock pool in tests.
type QueryPool interface {
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PostgresSource reads signal records from the signal_records table.
type PostgresSource struct {
	pool   QueryPool
	logger *logrus.Logger
}

// NewPostgresSource creates a record source backed by the given pool.
func NewPostgresSource(pool QueryPool, logger *logrus.Logger) *PostgresSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PostgresSource{
		pool:   pool,
		logger: logger,
	}
}

// FetchRecords returns every signal record, open and closed. Records
// that fail validation are skipped with a warning rather than failing
// the whole fetch.
func (s *PostgresSource) FetchRecords(ctx context.Context) ([]models.SignalRecord, error) {
	rows, err := s.pool.Query(ctx, fetchRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query signal_records: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var records []models.SignalRecord
	skipped := 0
	for rows.Next() {
		var (
			r           models.SignalRecord
			exitPrice   *decimal.Decimal
			evaluatedAt *time.Time
		)
		if err := rows.Scan(
			&r.ID,
			&r.SignalType,
			&r.Coin,
			&r.Confidence,
			&r.StrategyName,
			&r.EntryPrice,
			&r.EmittedAt,
			&exitPrice,
			&evaluatedAt,
			&r.Reasoning,
		); err != nil {
			return nil, fmt.Errorf("%w: scan signal record: %v", ErrUnavailable, err)
		}
		r.ExitPrice = exitPrice
		r.EvaluatedAt = evaluatedAt
		if err := r.Validate(); err != nil {
			skipped++
			s.logger.WithError(err).WithField("record_id", r.ID).Warn("Skipping invalid signal record")
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read signal_records: %v", ErrUnavailable, err)
	}

	if skipped > 0 {
		s.logger.WithFields(logrus.Fields{
			"fetched": len(records),
			"skipped": skipped,
		}).Warn("Fetched signal records with invalid rows skipped")
	}
	return records, nil
}
