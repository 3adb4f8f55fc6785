// Package export writes signal records to tabular CSV files for
// offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradewatch/signal-monitor-go/internal/models"
)

// Header returns the CSV column names, one column per signal record
// field.
func Header() []string {
	return []string{
		"id",
		"signal_type",
		"coin",
		"confidence",
		"strategy_name",
		"entry_price",
		"emitted_at",
		"exit_price",
		"evaluated_at",
		"reasoning",
		"roi_percent",
		"successful",
	}
}

// Row flattens one record. Every field round-trips losslessly:
// timestamps as RFC3339Nano, prices as exact decimal strings,
// confidence with full float precision. The derived roi/successful
// columns are informational and recomputed on read.
func Row(r models.SignalRecord, holdTolerance float64) []string {
	exitPrice := ""
	evaluatedAt := ""
	roi := ""
	successful := ""
	if r.Closed() {
		exitPrice = r.ExitPrice.String()
		evaluatedAt = r.EvaluatedAt.UTC().Format(time.RFC3339Nano)
		if v, ok := r.ROI(); ok {
			roi = strconv.FormatFloat(v, 'f', 6, 64)
		}
		successful = strconv.FormatBool(r.Successful(holdTolerance))
	}
	return []string{
		r.ID,
		string(r.SignalType),
		r.Coin,
		strconv.FormatFloat(r.Confidence, 'g', -1, 64),
		r.StrategyName,
		r.EntryPrice.String(),
		r.EmittedAt.UTC().Format(time.RFC3339Nano),
		exitPrice,
		evaluatedAt,
		r.Reasoning,
		roi,
		successful,
	}
}

// Write streams the records as CSV, header first.
func Write(w io.Writer, records []models.SignalRecord, holdTolerance float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(Row(r, holdTolerance)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns the deterministic export file name for the given
// date.
func Filename(date time.Time) string {
	return fmt.Sprintf("trading_signals_export_%s.csv", date.Format("20060102"))
}

// ToFile writes the export into dir, named by date, and returns the
// full path.
func ToFile(dir string, date time.Time, records []models.SignalRecord, holdTolerance float64) (string, error) {
	path := filepath.Join(dir, Filename(date))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := Write(f, records, holdTolerance); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("failed to flush export file: %w", err)
	}
	return path, nil
}

// Read parses records previously written by Write. Derived columns are
// ignored; the record fields are reconstructed exactly.
func Read(r io.Reader) ([]models.SignalRecord, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]models.SignalRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(Header()) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+1, len(Header()), len(row))
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (models.SignalRecord, error) {
	var rec models.SignalRecord
	rec.ID = row[0]
	rec.SignalType = models.SignalType(row[1])
	rec.Coin = row[2]

	confidence, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return rec, fmt.Errorf("invalid confidence %q: %w", row[3], err)
	}
	rec.Confidence = confidence
	rec.StrategyName = row[4]

	entry, err := decimal.NewFromString(row[5])
	if err != nil {
		return rec, fmt.Errorf("invalid entry price %q: %w", row[5], err)
	}
	rec.EntryPrice = entry

	emittedAt, err := time.Parse(time.RFC3339Nano, row[6])
	if err != nil {
		return rec, fmt.Errorf("invalid emitted_at %q: %w", row[6], err)
	}
	rec.EmittedAt = emittedAt

	if row[7] != "" {
		exit, err := decimal.NewFromString(row[7])
		if err != nil {
			return rec, fmt.Errorf("invalid exit price %q: %w", row[7], err)
		}
		rec.ExitPrice = &exit
	}
	if row[8] != "" {
		evaluatedAt, err := time.Parse(time.RFC3339Nano, row[8])
		if err != nil {
			return rec, fmt.Errorf("invalid evaluated_at %q: %w", row[8], err)
		}
		rec.EvaluatedAt = &evaluatedAt
	}
	rec.Reasoning = row[9]

	return rec, nil
}
