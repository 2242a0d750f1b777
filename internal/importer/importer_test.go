package importer_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/shipyard/internal/catalog"
	"github.com/cory-johannsen/shipyard/internal/importer"
	"github.com/cory-johannsen/shipyard/internal/importer/descriptor"
	"github.com/cory-johannsen/shipyard/internal/layout"
)

func write(t testing.TB, path, s string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestImporter_Run_WritesCatalog(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "Systems", "console.yaml"), `
id: console
name: Console
size: [3, 1]
tiles:
  - {x: 0, y: -1, element: Light, walk_cost: 0}
  - {x: 1, y: 0, element: Screen, walk_cost: 1}
restrictions:
  - {kind: Floor, x: 0, y: 1, w: 3, h: 1}
`)
	write(t, filepath.Join(src, "Systems", "console_copy.yaml"), "id: console\nname: Shadow Console\n")
	write(t, filepath.Join(src, "crate.yaml"), "id: crate\nname: Crate\nsize: [2, 2]\n")

	core, logs := observer.New(zap.WarnLevel)
	out := filepath.Join(t.TempDir(), "data", "catalog.yaml")
	c, err := importer.New(descriptor.NewSource(zap.New(core)), zap.New(core)).Run(context.Background(), src, out)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	loaded, err := catalog.LoadFromFile(out)
	require.NoError(t, err)
	assert.Equal(t, c.All(), loaded.All())

	console, ok := loaded.Definition("console")
	require.True(t, ok)
	assert.Equal(t, "Console", console.Name)
	assert.Equal(t, "Systems", loaded.Categories()[0].Name)
	require.NotNil(t, console.Layout)
	assert.Equal(t, 3, console.Layout.Height)

	crate, ok := loaded.Definition("crate")
	require.True(t, ok)
	assert.Nil(t, crate.Layout)
	assert.Equal(t, layout.Size{W: 2, H: 2}, crate.Footprint())

	// Duplicate console plus the uncategorized crate.
	assert.Equal(t, 2, logs.FilterMessage("catalog assembly").Len())
}

func TestImporter_Run_InvalidSourceDir(t *testing.T) {
	imp := importer.New(descriptor.NewSource(zap.NewNop()), zap.NewNop())
	out := filepath.Join(t.TempDir(), "catalog.yaml")
	_, err := imp.Run(context.Background(), "/nonexistent/dir", out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImporter_Run_NegativeWalkCostWarns(t *testing.T) {
	src := t.TempDir()
	write(t, filepath.Join(src, "Cargo", "crate.yaml"), `
id: crate
name: Crate
size: [2, 1]
tiles:
  - {x: 0, y: 0, element: Box, walk_cost: -1}
`)

	core, logs := observer.New(zap.WarnLevel)
	out := filepath.Join(t.TempDir(), "catalog.yaml")
	c, err := importer.New(descriptor.NewSource(zap.New(core)), zap.New(core)).Run(context.Background(), src, out)
	require.NoError(t, err)

	crate, ok := c.Definition("crate")
	require.True(t, ok)
	assert.Nil(t, crate.Layout)
	assert.Equal(t, layout.Size{W: 2, H: 1}, crate.Footprint())
	assert.Equal(t, 1, logs.FilterMessage("catalog assembly").Len())
}

type failingSource struct{}

func (failingSource) Load(context.Context, string) ([]catalog.RawStructure, error) {
	return nil, fmt.Errorf("boom")
}

func TestImporter_Run_SourceError(t *testing.T) {
	_, err := importer.New(failingSource{}, zap.NewNop()).Run(context.Background(), "ignored", filepath.Join(t.TempDir(), "c.yaml"))
	assert.ErrorContains(t, err, "boom")
}

// TestImporter_Run_NDescriptorsProduceNStructures verifies that N distinct
// descriptor files produce a catalog of exactly N structures.
func TestImporter_Run_NDescriptorsProduceNStructures(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "numStructures")
		src := t.TempDir()
		for i := 0; i < n; i++ {
			write(t, filepath.Join(src, "Cargo", fmt.Sprintf("s%d.yaml", i)),
				fmt.Sprintf("id: s%d\nname: Structure %d\nsize: [1, %d]\n", i, i, i%3+1))
		}

		out := filepath.Join(t.TempDir(), "catalog.yaml")
		c, err := importer.New(descriptor.NewSource(zap.NewNop()), zap.NewNop()).Run(context.Background(), src, out)
		if err != nil {
			rt.Fatal(err)
		}
		assert.Equal(rt, n, c.Len())
	})
}
