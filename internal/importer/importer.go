// Package importer builds a structure catalog snapshot from extracted game
// data.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
)

// Importer orchestrates catalog import from a Source to a snapshot file.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	return &Importer{source: source, logger: logger}
}

// Run loads raw structures from sourceDir, assembles them into a catalog, and
// writes the catalog snapshot to outputPath. Assembly warnings are logged and
// never abort the import.
//
// Precondition: sourceDir must satisfy the source's layout requirements; the
// directory of outputPath must exist or be creatable.
// Postcondition: a validated snapshot is written to outputPath and the
// assembled catalog returned, or an error is returned and nothing is written.
func (imp *Importer) Run(ctx context.Context, sourceDir, outputPath string) (*catalog.Catalog, error) {
	overall := time.Now()

	t0 := time.Now()
	raw, err := imp.source.Load(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("loaded structures",
		zap.Int("count", len(raw)),
		zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)),
	)

	c, warnings := catalog.Assemble(raw)
	for _, w := range warnings {
		imp.logger.Warn("catalog assembly", zap.String("warning", w))
	}

	data, err := catalog.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("serialising catalog: %w", err)
	}

	// Validate output is loadable before writing.
	if _, err := catalog.LoadFromBytes(data); err != nil {
		return nil, fmt.Errorf("catalog failed validation: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing catalog to %s: %w", outputPath, err)
	}

	imp.logger.Info("wrote catalog",
		zap.String("path", outputPath),
		zap.Int("structures", c.Len()),
		zap.Int("categories", len(c.Categories())),
		zap.Int("warnings", len(warnings)),
		zap.Duration("total", time.Since(overall).Round(time.Millisecond)),
	)
	return c, nil
}
