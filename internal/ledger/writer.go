package ledger

import (
	"context"
	"fmt"
	"time"

	"networth_scraper/internal/moneybrilliant"

	"github.com/rs/zerolog/log"
)

// Result describes the row produced for one worksheet
type Result struct {
	Worksheet string
	Row       []interface{}
	Matched   []string
	Unmatched []string
}

type Writer struct {
	book     Workbook
	location *time.Location
	// Now is the clock used for row timestamps.
	Now func() time.Time
	// DryRun builds and logs rows without appending them.
	DryRun bool
}

func NewWriter(book Workbook, location *time.Location) *Writer {
	return &Writer{
		book:     book,
		location: location,
		Now:      time.Now,
	}
}

// BuildRow returns a row of cols cells: the timestamp followed by zeros.
func BuildRow(now time.Time, location *time.Location, cols int) []interface{} {
	row := make([]interface{}, max(cols, 1))
	row[0] = now.In(location).Format(TimestampLayout)
	for i := 1; i < len(row); i++ {
		row[i] = 0
	}
	return row
}

// Write places each account's balance under its matching header and appends
// the row to the worksheet. Accounts without a matching header are skipped.
func (w *Writer) Write(ctx context.Context, accounts *moneybrilliant.AccountsResponse, worksheet string) (*Result, error) {
	log.Debug().Str("worksheet", worksheet).Msg("Opening worksheet")
	sheet, err := w.book.Worksheet(ctx, worksheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open worksheet %s: %w", worksheet, err)
	}

	cols, err := sheet.ColumnCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read column count of %s: %w", worksheet, err)
	}

	result := &Result{
		Worksheet: worksheet,
		Row:       BuildRow(w.Now(), w.location, cols),
	}

	for _, account := range accounts.Accounts {
		key := account.Key()
		col, found, err := sheet.FindColumn(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to look up column %s in %s: %w", key, worksheet, err)
		}
		if !found || col < 1 || col > len(result.Row) {
			log.Warn().
				Str("column", key).
				Str("worksheet", worksheet).
				Msg("Column not found in worksheet")
			result.Unmatched = append(result.Unmatched, key)
			continue
		}

		result.Row[col-1] = account.Balance.InexactFloat64()
		result.Matched = append(result.Matched, key)
	}

	if w.DryRun {
		log.Info().
			Str("worksheet", worksheet).
			Interface("row", result.Row).
			Msg("Dry run, not appending row")
		return result, nil
	}

	if err := sheet.AppendRow(ctx, result.Row); err != nil {
		return nil, fmt.Errorf("failed to append row to %s: %w", worksheet, err)
	}

	log.Info().
		Str("worksheet", worksheet).
		Int("columns", cols).
		Int("matched", len(result.Matched)).
		Int("unmatched", len(result.Unmatched)).
		Msg("Appended balances row")
	return result, nil
}
