// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/tsload/internal/core/domain"

// SourceFactory resolves filenames to sources.
// Compilers call back into it to pull in imported and referenced files.
//
//go:generate mockgen -source=source_factory.go -destination=mocks/mock_source_factory.go -package=mocks
type SourceFactory interface {
	// GetSource returns the source for filename.
	// It fails with domain.ErrSourceNotFound when no resolution strategy finds the file.
	GetSource(filename string) (*domain.Source, error)
}
