// Package xlsx stores balance rows in a local Excel workbook instead of Google Sheets.
package xlsx

import (
	"context"
	"fmt"

	"networth_scraper/internal/ledger"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var (
	_ ledger.Workbook  = (*Workbook)(nil)
	_ ledger.Worksheet = (*Worksheet)(nil)
)

type Workbook struct {
	path string
	file *excelize.File
}

// Open loads an existing workbook. Worksheets and their header rows must
// already exist.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

func (b *Workbook) Close() error {
	return b.file.Close()
}

func (b *Workbook) Worksheet(_ context.Context, title string) (ledger.Worksheet, error) {
	idx, err := b.file.GetSheetIndex(title)
	if err != nil {
		return nil, fmt.Errorf("failed to look up worksheet %s: %w", title, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ledger.ErrWorksheetNotFound, title)
	}
	return &Worksheet{book: b, title: title}, nil
}

type Worksheet struct {
	book  *Workbook
	title string
}

func (w *Worksheet) Title() string { return w.title }

// ColumnCount is the width of the widest used row.
func (w *Worksheet) ColumnCount(context.Context) (int, error) {
	rows, err := w.book.file.GetRows(w.title)
	if err != nil {
		return 0, fmt.Errorf("failed to read rows of %s: %w", w.title, err)
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	return cols, nil
}

func (w *Worksheet) FindColumn(_ context.Context, text string) (int, bool, error) {
	cells, err := w.book.file.SearchSheet(w.title, text)
	if err != nil {
		return 0, false, fmt.Errorf("failed to search %s: %w", w.title, err)
	}
	if len(cells) == 0 {
		return 0, false, nil
	}

	col, _, err := excelize.CellNameToCoordinates(cells[0])
	if err != nil {
		return 0, false, err
	}
	return col, true, nil
}

// AppendRow writes row below the last used row and saves the file.
func (w *Worksheet) AppendRow(_ context.Context, row []interface{}) error {
	rows, err := w.book.file.GetRows(w.title)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", w.title, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	if err := w.book.file.SetSheetRow(w.title, cell, &row); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", w.title, err)
	}
	if err := w.book.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.book.path, err)
	}

	log.Debug().Str("worksheet", w.title).Str("cell", cell).Msg("Appended row to workbook")
	return nil
}
