// Package layout provides the canonical tile model for structure footprints:
// typed tiles, origin-normalized layouts, the normalizer that builds them from
// raw descriptors, and the rotation transform.
package layout

import (
	"fmt"
	"sort"
)

// ImpassableWalkCost marks a tile that crew can never walk through.
const ImpassableWalkCost = 255

// TileType classifies a single tile of a structure footprint.
type TileType uint8

// The closed set of tile types.
const (
	// Construction is the structure body.
	Construction TileType = iota
	// Access is crew-walkable clearance; access tiles of different structures may overlap.
	Access
	// Blocked is impassable clearance.
	Blocked
)

// String returns the lowercase name of the tile type.
func (t TileType) String() string {
	switch t {
	case Construction:
		return "construction"
	case Access:
		return "access"
	case Blocked:
		return "blocked"
	default:
		return fmt.Sprintf("tiletype(%d)", uint8(t))
	}
}

// ParseTileType converts a lowercase tile type name into a TileType.
//
// Postcondition: Returns an error for names outside the closed set.
func ParseTileType(s string) (TileType, error) {
	switch s {
	case "construction":
		return Construction, nil
	case "access":
		return Access, nil
	case "blocked":
		return Blocked, nil
	default:
		return 0, fmt.Errorf("unknown tile type %q", s)
	}
}

// Point is an integer grid coordinate.
type Point struct {
	X int
	Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Size is a width/height pair.
type Size struct {
	W int
	H int
}

// Rect is an axis-aligned rectangle covering [X, X+W) × [Y, Y+H).
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Tile is a typed cell of a layout, in layout-local or absolute coordinates.
type Tile struct {
	X        int
	Y        int
	Type     TileType
	WalkCost int
}

// Pos returns the tile position.
func (t Tile) Pos() Point {
	return Point{X: t.X, Y: t.Y}
}

// Layout is the canonical, origin-normalized footprint of a structure.
type Layout struct {
	// Tiles holds one tile per unique position in row-major order.
	Tiles []Tile
	// Width is the bounding-box width of Tiles.
	Width int
	// Height is the bounding-box height of Tiles.
	Height int
}

// Size returns the unrotated bounding-box size of the layout.
func (l *Layout) Size() Size {
	return Size{W: l.Width, H: l.Height}
}

// Validate checks layout invariants.
//
// Postcondition: Returns nil if the layout is non-empty, has unique positions,
// touches both axes at 0, and its Width/Height equal the tile bounding box.
func (l *Layout) Validate() error {
	if len(l.Tiles) == 0 {
		return fmt.Errorf("layout must contain at least one tile")
	}
	seen := make(map[Point]bool, len(l.Tiles))
	minX, minY := l.Tiles[0].X, l.Tiles[0].Y
	maxX, maxY := minX, minY
	for _, t := range l.Tiles {
		if seen[t.Pos()] {
			return fmt.Errorf("duplicate tile at (%d,%d)", t.X, t.Y)
		}
		seen[t.Pos()] = true
		if t.Type > Blocked {
			return fmt.Errorf("tile at (%d,%d) has invalid type %d", t.X, t.Y, t.Type)
		}
		if t.WalkCost < 0 {
			return fmt.Errorf("tile at (%d,%d) has negative walk cost %d", t.X, t.Y, t.WalkCost)
		}
		minX, minY = min(minX, t.X), min(minY, t.Y)
		maxX, maxY = max(maxX, t.X), max(maxY, t.Y)
	}
	if minX != 0 || minY != 0 {
		return fmt.Errorf("layout origin must be (0,0), got (%d,%d)", minX, minY)
	}
	if l.Width != maxX+1 || l.Height != maxY+1 {
		return fmt.Errorf("layout size %dx%d does not match tile bounds %dx%d", l.Width, l.Height, maxX+1, maxY+1)
	}
	return nil
}

// CountByType returns the number of tiles of each type.
func (l *Layout) CountByType() map[TileType]int {
	counts := make(map[TileType]int, 3)
	for _, t := range l.Tiles {
		counts[t.Type]++
	}
	return counts
}

// SortTiles orders tiles row-major (y, then x) in place.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})
}
