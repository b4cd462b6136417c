// Package ledger turns fetched account balances into one appended worksheet
// row per category. Spreadsheet backends plug in through Workbook.
package ledger

import (
	"context"
	"errors"
)

// TimestampLayout is the format of the first cell of every appended row.
const TimestampLayout = "2006-01-02 15:04"

var ErrWorksheetNotFound = errors.New("worksheet not found")

// Workbook opens worksheets by title.
type Workbook interface {
	Worksheet(ctx context.Context, title string) (Worksheet, error)
}

// Worksheet is the column resolver and row sink for one tab.
type Worksheet interface {
	Title() string
	// ColumnCount is the sheet's current width, read fresh on every call.
	ColumnCount(ctx context.Context) (int, error)
	// FindColumn returns the 1-based column of the first cell whose text equals
	// text exactly, scanning row by row.
	FindColumn(ctx context.Context, text string) (int, bool, error)
	AppendRow(ctx context.Context, row []interface{}) error
}
