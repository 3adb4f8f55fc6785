// Package source provides read access to the signal record store.
package source

import (
	"context"
	"errors"

	"github.com/tradewatch/signal-monitor-go/internal/models"
)

// ErrUnavailable wraps record fetch failures. The monitor retries
// fetches with a bounded delay before marking the tick as failed.
var ErrUnavailable = errors.New("record source unavailable")

// RecordSource is the read-only query interface over the signal record
// store. It returns all records, open and closed, as of call time. The
// store is assumed eventually consistent: a fetch may see fewer records
// than truth, which is not an error.
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]models.SignalRecord, error)
}
