package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/model"
)

const (
	euroPattern    = "#,##0 \"€\""
	perAreaPattern = "#,##0.00 \"€/m²\""
)

// sheetTitle names the single tab the export writes to.
const sheetTitle = "Bewertungen"

// Exporter writes the history into one spreadsheet tab, replacing what was
// there before.
type Exporter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// Connect builds an authenticated Sheets client from cfg.
func Connect(ctx context.Context, cfg Config) (*sheets.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var tokenSource oauth2.TokenSource
	if cfg.ServiceAccountPath != "" {
		key, err := os.ReadFile(cfg.ServiceAccountPath)
		if err != nil {
			return nil, common.NewConfigurationError("sheets.service_account_path",
				fmt.Errorf("unable to read service account key file: %w", err))
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, common.NewConfigurationError("sheets.service_account_path",
				fmt.Errorf("unable to parse service account key: %w", err))
		}
		tokenSource = jwt.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken, TokenType: "Bearer"})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// NewExporter creates an Exporter on an existing client.
func NewExporter(service *sheets.Service, cfg Config, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetName == "" {
		cfg.SpreadsheetName = DefaultSpreadsheetName
	}
	if cfg.Retry.Logger == nil {
		cfg.Retry.Logger = logger
	}
	return &Exporter{service: service, logger: logger, config: cfg}
}

// Export writes entries and returns the spreadsheet ID. A new spreadsheet is
// created when none is configured. Formatting failures are logged only.
func (e *Exporter) Export(ctx context.Context, entries []model.HistoryEntry) (string, error) {
	spreadsheetID, sheetID, err := e.spreadsheet(ctx)
	if err != nil {
		return "", err
	}

	values := Rows(entries)
	err = e.retry(ctx, func() error {
		if _, err := e.service.Spreadsheets.Values.Clear(spreadsheetID, sheetTitle, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to clear sheet: %w", err)
		}
		_, err := e.service.Spreadsheets.Values.Update(spreadsheetID, sheetTitle+"!A1", &sheets.ValueRange{Values: values}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if e.config.Formatting {
		if err := e.format(ctx, spreadsheetID, sheetID, len(values)); err != nil {
			common.LogError(e.logger, err, "failed to format spreadsheet", common.Fields{"spreadsheet_id": spreadsheetID})
		}
	}

	e.logger.Info("history exported",
		"spreadsheet_id", spreadsheetID,
		"entries", len(entries))
	return spreadsheetID, nil
}

// spreadsheet returns the target spreadsheet and the ID of its export tab,
// creating whichever of the two is missing.
func (e *Exporter) spreadsheet(ctx context.Context) (string, int64, error) {
	id := e.config.SpreadsheetID
	if id == "" {
		created, err := e.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    e.config.SpreadsheetName,
				TimeZone: e.config.TimeZone,
				Locale:   "de_DE",
			},
			Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: sheetTitle}}},
		}).Context(ctx).Do()
		if err != nil {
			return "", 0, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		e.logger.Info("created spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
		return created.SpreadsheetId, firstSheetID(created), nil
	}

	existing, err := e.service.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to access spreadsheet %s: %w", id, err)
	}
	for _, sheet := range existing.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetTitle {
			return id, sheet.Properties.SheetId, nil
		}
	}

	resp, err := e.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: sheetTitle},
		}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to add sheet %s: %w", sheetTitle, err)
	}
	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return id, sheetID, nil
}

func firstSheetID(s *sheets.Spreadsheet) int64 {
	if len(s.Sheets) == 0 || s.Sheets[0].Properties == nil {
		return 0
	}
	return s.Sheets[0].Properties.SheetId
}

func (e *Exporter) format(ctx context.Context, spreadsheetID string, sheetID int64, totalRows int) error {
	number := func(start, end int64, pattern string) *sheets.Request {
		return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    1,
				EndRowIndex:      int64(totalRows),
				StartColumnIndex: start,
				EndColumnIndex:   end,
			},
			Cell: &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{
				NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: pattern},
			}},
			Fields: "userEnteredFormat.numberFormat",
		}}
	}

	requests := []*sheets.Request{
		{RepeatCell: &sheets.RepeatCellRequest{
			Range:  &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
			Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}}},
			Fields: "userEnteredFormat.textFormat",
		}},
		number(colErtragswert, colUmgekehrt, euroPattern),
		number(colUmgekehrt, colVergleichswert, perAreaPattern),
		number(colVergleichswert, colBodenrichtwert, euroPattern),
		number(colBodenrichtwert, colFlaeche, perAreaPattern),
		{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{SheetId: sheetID, GridProperties: &sheets.GridProperties{FrozenRowCount: 1}},
			Fields:     "gridProperties.frozenRowCount",
		}},
		{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: int64(len(Header))},
		}},
	}

	return e.retry(ctx, func() error {
		_, err := e.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
		return err
	})
}

// retry repeats op on rate limiting and server errors only.
func (e *Exporter) retry(ctx context.Context, op func() error) error {
	return common.Retry(ctx, e.config.Retry, func() error {
		err := op()
		var apiErr *googleapi.Error
		if err != nil && errors.As(err, &apiErr) &&
			apiErr.Code != http.StatusTooManyRequests && apiErr.Code < http.StatusInternalServerError {
			return common.Permanent(err)
		}
		return err
	})
}
