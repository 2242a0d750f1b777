package importer

import (
	"context"

	"github.com/cory-johannsen/shipyard/internal/catalog"
)

// Source loads structure descriptors from a format-specific source directory
// and produces raw structures ready for catalog assembly.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns at least one RawStructure, or a non-nil error.
type Source interface {
	Load(ctx context.Context, sourceDir string) ([]catalog.RawStructure, error)
}
