package sheets

import (
	"context"
	"fmt"
	"strings"

	"networth_scraper/internal/ledger"

	"github.com/rs/zerolog/log"
)

var (
	_ ledger.Workbook  = (*Spreadsheet)(nil)
	_ ledger.Worksheet = (*Worksheet)(nil)
)

// Spreadsheet is a Google Sheets workbook.
type Spreadsheet struct {
	client *Client
	id     string
}

// Open finds a spreadsheet by name through Drive.
func (c *Client) Open(ctx context.Context, name string) (*Spreadsheet, error) {
	id, err := c.FindSpreadsheetID(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.OpenByID(id), nil
}

func (c *Client) OpenByID(id string) *Spreadsheet {
	return &Spreadsheet{client: c, id: id}
}

func (s *Spreadsheet) ID() string { return s.id }

func (s *Spreadsheet) Worksheet(ctx context.Context, title string) (ledger.Worksheet, error) {
	props, err := s.client.sheetProperties(ctx, s.id, title)
	if err != nil {
		return nil, err
	}
	if props == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrWorksheetNotFound, title)
	}
	return &Worksheet{spreadsheet: s, title: title}, nil
}

type Worksheet struct {
	spreadsheet *Spreadsheet
	title       string
}

func (w *Worksheet) Title() string { return w.title }

// a1 quotes the title for use in A1 notation
func (w *Worksheet) a1() string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'"
}

func (w *Worksheet) ColumnCount(ctx context.Context) (int, error) {
	props, err := w.spreadsheet.client.sheetProperties(ctx, w.spreadsheet.id, w.title)
	if err != nil {
		return 0, err
	}
	if props == nil {
		return 0, fmt.Errorf("%w: %s", ledger.ErrWorksheetNotFound, w.title)
	}
	if props.GridProperties == nil {
		return 0, nil
	}
	return int(props.GridProperties.ColumnCount), nil
}

func (w *Worksheet) FindColumn(ctx context.Context, text string) (int, bool, error) {
	values, err := w.spreadsheet.client.ReadSheet(ctx, w.spreadsheet.id, w.a1())
	if err != nil {
		return 0, false, err
	}

	for _, row := range values {
		for i, cell := range row {
			if cell != nil && fmt.Sprintf("%v", cell) == text {
				return i + 1, true, nil
			}
		}
	}
	return 0, false, nil
}

func (w *Worksheet) AppendRow(ctx context.Context, row []interface{}) error {
	log.Debug().Str("worksheet", w.title).Int("cells", len(row)).Msg("Appending row")
	return w.spreadsheet.client.AppendRows(ctx, w.spreadsheet.id, w.a1()+"!A1", [][]interface{}{row})
}
