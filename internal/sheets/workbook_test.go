package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"networth_scraper/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// fakeGoogle serves the handful of Drive and Sheets endpoints the client uses.
type fakeGoogle struct {
	t        *testing.T
	files    string
	values   [][]interface{}
	columns  int
	appended [][]interface{}
	query    string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/drive/v3/files":
		f.query = r.URL.Query().Get("q")
		fmt.Fprint(w, f.files)

	case r.URL.Path == "/v4/spreadsheets/sheet-1":
		fmt.Fprintf(w, `{"spreadsheetId":"sheet-1","sheets":[
			{"properties":{"sheetId":0,"title":"bank_accounts","gridProperties":{"rowCount":1000,"columnCount":%d}}},
			{"properties":{"sheetId":1,"title":"credit","gridProperties":{"rowCount":1000,"columnCount":2}}}]}`, f.columns)

	case strings.HasSuffix(r.URL.Path, ":append"):
		assert.Equal(f.t, "/v4/spreadsheets/sheet-1/values/'bank_accounts'!A1:append", r.URL.Path)
		assert.Equal(f.t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(f.t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))

		var body sheetsapi.ValueRange
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.appended = append(f.appended, body.Values...)
		fmt.Fprint(w, `{"spreadsheetId":"sheet-1"}`)

	case strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"):
		assert.Equal(f.t, "/v4/spreadsheets/sheet-1/values/'bank_accounts'", r.URL.Path)
		data, _ := json.Marshal(map[string]interface{}{"range": "bank_accounts!A1:Z1000", "values": f.values})
		w.Write(data)

	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newFakeClient(t *testing.T, fake *fakeGoogle) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	service, err := sheetsapi.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	driveService, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/drive/v3/"), option.WithoutAuthentication())
	require.NoError(t, err)

	return &Client{service: service, drive: driveService}
}

func TestOpenByName(t *testing.T) {
	fake := &fakeGoogle{t: t, files: `{"files":[{"id":"other","name":"Networth old"},{"id":"sheet-1","name":"Networth"}]}`}
	client := newFakeClient(t, fake)

	book, err := client.Open(context.Background(), "Networth")
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", book.ID())
	assert.Contains(t, fake.query, "name = 'Networth'")
	assert.Contains(t, fake.query, spreadsheetMimeType)
}

func TestOpenByNameNotFound(t *testing.T) {
	fake := &fakeGoogle{t: t, files: `{"files":[]}`}
	client := newFakeClient(t, fake)

	_, err := client.Open(context.Background(), "Networth")
	assert.ErrorIs(t, err, ErrSpreadsheetNotFound)
}

func TestWorksheetNotFound(t *testing.T) {
	client := newFakeClient(t, &fakeGoogle{t: t})

	_, err := client.OpenByID("sheet-1").Worksheet(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrWorksheetNotFound)
}

func TestWorksheetOperations(t *testing.T) {
	fake := &fakeGoogle{
		t:       t,
		columns: 3,
		values: [][]interface{}{
			{"timestamp", "mb_Savings", "mb_Checking"},
			{"2024-01-01 10:00", 1, 2},
		},
	}
	client := newFakeClient(t, fake)
	ctx := context.Background()

	ws, err := client.OpenByID("sheet-1").Worksheet(ctx, "bank_accounts")
	require.NoError(t, err)
	assert.Equal(t, "bank_accounts", ws.Title())

	cols, err := ws.ColumnCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cols)

	col, found, err := ws.FindColumn(ctx, "mb_Checking")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, col)

	_, found, err = ws.FindColumn(ctx, "mb_checking")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ws.AppendRow(ctx, []interface{}{"2024-01-15 11:30", 500, 0}))
	require.Len(t, fake.appended, 1)
	assert.Equal(t, []interface{}{"2024-01-15 11:30", float64(500), float64(0)}, fake.appended[0])
}
