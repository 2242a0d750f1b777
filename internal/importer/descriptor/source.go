// Package descriptor implements importer.Source for a directory tree of
// per-structure YAML descriptor files.
package descriptor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// Source reads descriptor files laid out as:
//
//	sourceDir/
//	  <category>/   <- optional; names the category of descriptors without one
//	    *.yaml      <- one descriptor per structure
//
// Files that fail to parse are logged and skipped.
type Source struct {
	logger *zap.Logger
}

// NewSource constructs a Source.
//
// Precondition: logger must be non-nil.
func NewSource(logger *zap.Logger) *Source {
	return &Source{logger: logger}
}

// Load walks sourceDir in lexical order and converts every descriptor file.
//
// Postcondition: returns at least one RawStructure or a non-nil error.
func (s *Source) Load(ctx context.Context, sourceDir string) ([]catalog.RawStructure, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	var out []catalog.RawStructure
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		desc, err := Parse(data)
		if err != nil {
			s.logger.Warn("skipping descriptor", zap.String("path", path), zap.Error(err))
			return nil
		}
		out = append(out, Convert(desc, categoryFor(sourceDir, path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", sourceDir, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no structure descriptors found in %s", sourceDir)
	}
	return out, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// categoryFor returns the name of the first directory below root containing
// path, or "" for files directly in root.
func categoryFor(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
}
