// Package ledgertest provides an in-memory Workbook for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"networth_scraper/internal/ledger"
)

type Workbook struct {
	mu     sync.Mutex
	sheets map[string]*Worksheet
}

func NewWorkbook() *Workbook {
	return &Workbook{sheets: make(map[string]*Worksheet)}
}

// AddWorksheet creates a tab whose first row is headers. Its column count is len(headers).
func (b *Workbook) AddWorksheet(title string, headers ...string) *Worksheet {
	b.mu.Lock()
	defer b.mu.Unlock()

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	ws := &Worksheet{title: title, Columns: len(headers), Rows: [][]interface{}{header}}
	b.sheets[title] = ws
	return ws
}

func (b *Workbook) Worksheet(_ context.Context, title string) (ledger.Worksheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ws, ok := b.sheets[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrWorksheetNotFound, title)
	}
	return ws, nil
}

type Worksheet struct {
	title   string
	Columns int
	Rows    [][]interface{}
	// Err, when set, is returned by every call.
	Err     error
}

func (w *Worksheet) Title() string { return w.title }

func (w *Worksheet) ColumnCount(context.Context) (int, error) {
	return w.Columns, w.Err
}

func (w *Worksheet) FindColumn(_ context.Context, text string) (int, bool, error) {
	if w.Err != nil {
		return 0, false, w.Err
	}
	for _, row := range w.Rows {
		for i, cell := range row {
			if fmt.Sprintf("%v", cell) == text {
				return i + 1, true, nil
			}
		}
	}
	return 0, false, nil
}

func (w *Worksheet) AppendRow(_ context.Context, row []interface{}) error {
	if w.Err != nil {
		return w.Err
	}
	w.Rows = append(w.Rows, row)
	return nil
}

// LastRow returns the most recently appended row.
func (w *Worksheet) LastRow() []interface{} {
	if len(w.Rows) == 0 {
		return nil
	}
	return w.Rows[len(w.Rows)-1]
}
