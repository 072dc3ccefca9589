package backend

import (
	"errors"
	"fmt"

	"obras/internal/catalog/google"
	"obras/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SeedFile:     appConfig.SeedFile,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Google: google.Config{
			SpreadsheetID:    appConfig.GoogleSpreadsheetID,
			ProjectsSheet:    appConfig.GoogleProjectsSheet,
			MilestonesSheet:  appConfig.GoogleMilestonesSheet,
			ReceivablesSheet: appConfig.GoogleReceivablesSheet,
		},
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case YAMLBackend:
		if c.SeedFile == "" {
			return errors.New("seed file is required for yaml backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.Google.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, YAMLBackend, SQLiteBackend, SheetsBackend}
}
