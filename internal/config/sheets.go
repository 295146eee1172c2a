package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/immowert/internal/sheets"
)

// LoadSheets resolves the spreadsheet export settings. Values from v (config
// file or IMMOWERT_SHEETS_* variables) win over the GOOGLE_SHEETS_* variables.
// Only the export needs them, so they are validated here and not in Load.
func LoadSheets(v *viper.Viper) (sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(firstSet(v.GetString("sheets.service_account_path"), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	cfg.ClientID = firstSet(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	cfg.ClientSecret = firstSet(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	cfg.RefreshToken = firstSet(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	cfg.SpreadsheetID = firstSet(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	cfg.SpreadsheetName = firstSet(v.GetString("sheets.spreadsheet_name"), cfg.SpreadsheetName)
	cfg.TimeZone = firstSet(v.GetString("sheets.time_zone"), cfg.TimeZone)
	if v.IsSet("sheets.formatting") {
		cfg.Formatting = v.GetBool("sheets.formatting")
	}

	if err := cfg.Validate(); err != nil {
		return sheets.Config{}, err
	}
	return cfg, nil
}

func firstSet(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}
