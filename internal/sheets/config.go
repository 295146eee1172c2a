// Package sheets exports the valuation history to a Google Sheets
// spreadsheet.
package sheets

import (
	"fmt"

	"github.com/Veraticus/immowert/internal/common"
)

// DefaultSpreadsheetName titles spreadsheets created by the exporter.
const DefaultSpreadsheetName = "Immobilienbewertungen"

// Config holds credentials and the target spreadsheet. Exactly one of the
// service account file or the OAuth2 client/refresh token triple is needed.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	Retry              common.RetryOptions
	Formatting         bool
}

// DefaultConfig returns a Config with defaults for everything but credentials.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName: DefaultSpreadsheetName,
		TimeZone:        "Europe/Berlin",
		Formatting:      true,
	}
}

// Validate checks that one authentication method is configured.
func (c Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !hasOAuth && !hasServiceAccount:
		return common.NewConfigurationError("sheets",
			fmt.Errorf("%w: set sheets.service_account_path or the OAuth2 client id, secret and refresh token", common.ErrMissingConfig))
	case hasOAuth && hasServiceAccount:
		return common.NewConfigurationError("sheets",
			fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or a service account", common.ErrInvalidConfig))
	}
	return nil
}
