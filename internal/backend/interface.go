package backend

import (
	"context"

	"obras/internal/catalog"
	"obras/internal/catalog/google"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the catalog source and an optional cleanup function.
type BackendResult struct {
	Source  catalog.Source
	Cleanup CleanupFunc
}

// Factory creates catalog sources based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// yaml
	SeedFile string

	// sqlite
	SQLiteDBPath string

	// sheets
	Google google.Config
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	YAMLBackend   BackendType = "yaml"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, YAMLBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
