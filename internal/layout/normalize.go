package layout

import (
	"cmp"
	"slices"
)

// AccessMargin is the maximum Chebyshev distance from the core bounding box
// at which restriction-derived access tiles are kept.
const AccessMargin = 1

// RawTile is a decoded per-structure data tile.
type RawTile struct {
	X           int
	Y           int
	ElementType ElementType
	WalkCost    int
}

// RawLinked is a decoded linked-tile offset. Linked tiles are always construction.
type RawLinked struct {
	X int
	Y int
}

// RawRestriction is a decoded clearance rectangle.
type RawRestriction struct {
	Kind RestrictionKind
	X    int
	Y    int
	W    int
	H    int
}

type origin uint8

const (
	fromCore origin = iota
	fromRestriction
)

type cell struct {
	tile   Tile
	origin origin
}

// box is an inclusive bounding box.
type box struct {
	minX, minY, maxX, maxY int
}

func (b box) near(p Point, margin int) bool {
	return p.X >= b.minX-margin && p.X <= b.maxX+margin &&
		p.Y >= b.minY-margin && p.Y <= b.maxY+margin
}

// Normalize builds the canonical layout of a structure from its raw descriptors.
//
// Core tiles come from linked and data descriptors, the core bounding box is
// gap-filled with construction, restrictions fill the remaining free cells,
// and far-away access hints are dropped. The result is shifted so its minimum
// corner is (0,0).
//
// Postcondition: Returns (layout, true) with a valid layout, or (nil, false)
// when there are no descriptors at all or nothing survives selection. The
// result depends only on the set of inputs, not their order.
func Normalize(data []RawTile, linked []RawLinked, restrictions []RawRestriction, fallback Size) (*Layout, bool) {
	if len(data) == 0 && len(linked) == 0 && len(restrictions) == 0 {
		return nil, false
	}

	data, restrictions = canonicalOrder(data, restrictions)
	cells := make(map[Point]cell, len(data)+len(linked))

	for _, l := range linked {
		p := Point{X: l.X, Y: l.Y}
		cells[p] = cell{tile: Tile{X: l.X, Y: l.Y, Type: Construction, WalkCost: 1}}
	}
	for _, d := range data {
		p := Point{X: d.X, Y: d.Y}
		if _, exists := cells[p]; exists {
			if d.WalkCost >= ImpassableWalkCost {
				cells[p] = cell{tile: Tile{X: d.X, Y: d.Y, Type: Blocked, WalkCost: d.WalkCost}}
			}
			continue
		}
		cells[p] = cell{tile: Tile{X: d.X, Y: d.Y, Type: Classify(d.ElementType, d.WalkCost), WalkCost: d.WalkCost}}
	}

	core, hasCore := coreBox(cells, fallback)
	if hasCore {
		for y := core.minY; y <= core.maxY; y++ {
			for x := core.minX; x <= core.maxX; x++ {
				p := Point{X: x, Y: y}
				if _, exists := cells[p]; !exists {
					cells[p] = cell{tile: Tile{X: x, Y: y, Type: Construction, WalkCost: 1}}
				}
			}
		}
	}

	for _, r := range restrictions {
		typ, walk, ok := restrictionTile(r.Kind)
		if !ok {
			continue
		}
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				p := Point{X: x, Y: y}
				if _, exists := cells[p]; exists {
					continue
				}
				cells[p] = cell{tile: Tile{X: x, Y: y, Type: typ, WalkCost: walk}, origin: fromRestriction}
			}
		}
	}

	tiles := make([]Tile, 0, len(cells))
	for p, c := range cells {
		if c.origin == fromRestriction && c.tile.Type == Access {
			if !hasCore || !core.near(p, AccessMargin) {
				continue
			}
		}
		tiles = append(tiles, c.tile)
	}
	if len(tiles) == 0 {
		return nil, false
	}

	return shiftToOrigin(tiles), true
}

// canonicalOrder returns sorted copies of the order-sensitive inputs so that
// duplicate data positions and overlapping restrictions resolve the same way
// regardless of how the extractor listed them.
func canonicalOrder(data []RawTile, restrictions []RawRestriction) ([]RawTile, []RawRestriction) {
	d := slices.Clone(data)
	slices.SortFunc(d, func(a, b RawTile) int {
		return cmp.Or(
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
			cmp.Compare(b.WalkCost, a.WalkCost),
			cmp.Compare(a.ElementType, b.ElementType),
		)
	})
	r := slices.Clone(restrictions)
	slices.SortFunc(r, func(a, b RawRestriction) int {
		return cmp.Or(
			cmp.Compare(a.Y, b.Y),
			cmp.Compare(a.X, b.X),
			cmp.Compare(a.H, b.H),
			cmp.Compare(a.W, b.W),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	return d, r
}

// coreBox returns the bounding box of core tiles, or the fallback rectangle
// when there are none. The second result is false if the box is empty.
func coreBox(cells map[Point]cell, fallback Size) (box, bool) {
	var b box
	found := false
	for p, c := range cells {
		if c.origin != fromCore {
			continue
		}
		if !found {
			b = box{minX: p.X, minY: p.Y, maxX: p.X, maxY: p.Y}
			found = true
			continue
		}
		b.minX, b.minY = min(b.minX, p.X), min(b.minY, p.Y)
		b.maxX, b.maxY = max(b.maxX, p.X), max(b.maxY, p.Y)
	}
	if found {
		return b, true
	}
	if fallback.W <= 0 || fallback.H <= 0 {
		return box{}, false
	}
	return box{minX: 0, minY: 0, maxX: fallback.W - 1, maxY: fallback.H - 1}, true
}

func shiftToOrigin(tiles []Tile) *Layout {
	minX, minY := tiles[0].X, tiles[0].Y
	maxX, maxY := minX, minY
	for _, t := range tiles[1:] {
		minX, minY = min(minX, t.X), min(minY, t.Y)
		maxX, maxY = max(maxX, t.X), max(maxY, t.Y)
	}
	for i := range tiles {
		tiles[i].X -= minX
		tiles[i].Y -= minY
	}
	SortTiles(tiles)
	return &Layout{
		Tiles:  tiles,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
}
