package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
)

func testEntry() model.HistoryEntry {
	return model.HistoryEntry{
		ID:            "3f1c2a9e-0000-4000-8000-000000000001",
		Timestamp:     time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		BuildingClass: "Mehrfamilienhaus",
		Address:       model.Address{Strasse: "Invalidenstraße", Hausnummer: "1", PLZ: "10115", Ort: "Berlin"},
		Results: model.ValuationResult{
			Ertragswertverfahren:            model.ProcedureOutcome{Durchfuehrbar: true, Ergebnis: model.Float(420000), Einheit: model.UnitEUR},
			UmgekehrtesErtragswertverfahren: model.ProcedureOutcome{Durchfuehrbar: false},
			Vergleichswertverfahren:         model.ProcedureOutcome{Durchfuehrbar: true, Ergebnis: model.Float(455000), Einheit: model.UnitEUR},
		},
		InputSnapshot: model.ValuationRequest{
			KaufpreisOhneNebenkosten: model.Float(400000),
			Bodenrichtwert:           model.Float(350),
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "service account", config: Config{ServiceAccountPath: "key.json"}},
		{name: "oauth", config: Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"}},
		{name: "nothing configured", config: Config{}, wantErr: common.ErrMissingConfig},
		{name: "partial oauth", config: Config{ClientID: "id", ClientSecret: "secret"}, wantErr: common.ErrMissingConfig},
		{
			name:    "both methods",
			config:  Config{ServiceAccountPath: "key.json", ClientID: "id", ClientSecret: "secret", RefreshToken: "token"},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			var cfgErr *common.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestConnectUnreadableServiceAccount(t *testing.T) {
	_, err := Connect(context.Background(), Config{ServiceAccountPath: filepath.Join(t.TempDir(), "missing.json")})

	var cfgErr *common.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "sheets.service_account_path", cfgErr.Setting)
}

func TestConnectMalformedServiceAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := Connect(context.Background(), Config{ServiceAccountPath: path})
	assert.ErrorContains(t, err, "unable to parse service account key")
}

func TestRows(t *testing.T) {
	rows := Rows([]model.HistoryEntry{testEntry()})

	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Len(t, rows[1], len(Header))
	assert.Equal(t, []any{
		"3f1c2a9e-0000-4000-8000-000000000001",
		"2026-10-15 09:30:00",
		"Invalidenstraße", "1", "10115", "Berlin",
		"Mehrfamilienhaus",
		420000.0, "", 455000.0,
		400000.0, 350.0, "",
	}, rows[1])
}

func TestRowsEmptyHistory(t *testing.T) {
	assert.Equal(t, [][]any{Header}, Rows(nil))
}

type fakeSheets struct {
	t        *testing.T
	status   map[string][]int
	requests []string
	written  sheets.ValueRange
	existing string
	mu       sync.Mutex
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)

	if codes := f.status[key]; len(codes) > 0 {
		f.status[key] = codes[1:]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(codes[0])
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"failed"}}`, codes[0])
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		_, _ = io.WriteString(w, `{"spreadsheetId":"created-1","spreadsheetUrl":"https://example.invalid/created-1",`+
			`"sheets":[{"properties":{"sheetId":7,"title":"Bewertungen"}}]}`)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, f.existing)
	case r.Method == http.MethodPut:
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.written))
		_, _ = io.WriteString(w, `{}`)
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

const withExportTab = `{"sheets":[{"properties":{"sheetId":3,"title":"Bewertungen"}}]}`

func newTestExporter(t *testing.T, fake *fakeSheets, cfg Config) *Exporter {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
		option.WithoutAuthentication())
	require.NoError(t, err)

	cfg.Retry = common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return NewExporter(svc, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExportCreatesSpreadsheet(t *testing.T) {
	fake := &fakeSheets{t: t}
	exporter := newTestExporter(t, fake, Config{Formatting: true})

	id, err := exporter.Export(context.Background(), []model.HistoryEntry{testEntry()})
	require.NoError(t, err)
	assert.Equal(t, "created-1", id)

	require.Len(t, fake.requests, 4)
	assert.Equal(t, "POST /v4/spreadsheets", fake.requests[0])
	assert.True(t, strings.HasSuffix(fake.requests[1], ":clear"), fake.requests[1])
	assert.True(t, strings.HasPrefix(fake.requests[2], "PUT /v4/spreadsheets/created-1/values/"), fake.requests[2])
	assert.Equal(t, "POST /v4/spreadsheets/created-1:batchUpdate", fake.requests[3])

	require.Len(t, fake.written.Values, 2)
	assert.Equal(t, "ID", fake.written.Values[0][0])
	assert.Equal(t, "Berlin", fake.written.Values[1][5])
}

func TestExportExistingSpreadsheet(t *testing.T) {
	fake := &fakeSheets{t: t, existing: withExportTab}
	exporter := newTestExporter(t, fake, Config{SpreadsheetID: "existing"})

	id, err := exporter.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "existing", id)

	require.Len(t, fake.requests, 3)
	assert.Equal(t, "GET /v4/spreadsheets/existing", fake.requests[0])
}

func TestExportAddsMissingTab(t *testing.T) {
	fake := &fakeSheets{t: t, existing: `{"sheets":[{"properties":{"sheetId":0,"title":"Tabelle1"}}]}`}
	exporter := newTestExporter(t, fake, Config{SpreadsheetID: "existing"})

	_, err := exporter.Export(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, fake.requests, 4)
	assert.Equal(t, "POST /v4/spreadsheets/existing:batchUpdate", fake.requests[1])
}

func TestExportRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   bool
		wantCalls int
	}{
		{name: "rate limited then ok", status: http.StatusTooManyRequests, wantCalls: 2},
		{name: "server error then ok", status: http.StatusServiceUnavailable, wantCalls: 2},
		{name: "forbidden is permanent", status: http.StatusForbidden, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearPath := "POST /v4/spreadsheets/existing/values/Bewertungen:clear"
			fake := &fakeSheets{t: t, existing: withExportTab, status: map[string][]int{clearPath: {tt.status}}}
			exporter := newTestExporter(t, fake, Config{SpreadsheetID: "existing"})

			_, err := exporter.Export(context.Background(), []model.HistoryEntry{testEntry()})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			calls := 0
			for _, r := range fake.requests {
				if r == clearPath {
					calls++
				}
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestExportFormattingFailureIsNotFatal(t *testing.T) {
	fake := &fakeSheets{t: t, existing: withExportTab, status: map[string][]int{
		"POST /v4/spreadsheets/existing:batchUpdate": {http.StatusBadRequest},
	}}
	exporter := newTestExporter(t, fake, Config{SpreadsheetID: "existing", Formatting: true})

	id, err := exporter.Export(context.Background(), []model.HistoryEntry{testEntry()})
	require.NoError(t, err)
	assert.Equal(t, "existing", id)
}
