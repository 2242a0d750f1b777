package layout

import "fmt"

// Rotation is a clockwise quarter-turn rotation in degrees.
type Rotation int

// The four supported rotations.
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Rotations lists every valid rotation in cycle order.
var Rotations = []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}

// Valid reports whether r is one of the four supported rotations.
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	default:
		return false
	}
}

// Next returns the rotation one quarter-turn clockwise from r.
//
// Precondition: r must be valid.
func (r Rotation) Next() Rotation {
	return (r + 90) % 360
}

// ParseRotation converts a degree value into a Rotation.
//
// Postcondition: Returns an error unless deg is 0, 90, 180, or 270.
func ParseRotation(deg int) (Rotation, error) {
	r := Rotation(deg)
	if !r.Valid() {
		return 0, fmt.Errorf("rotation must be one of [0, 90, 180, 270], got %d", deg)
	}
	return r, nil
}

// RotatePoint maps a local position of an unrotated w×h layout into the
// rotated layout's local space.
func RotatePoint(p Point, r Rotation, w, h int) Point {
	switch r {
	case Rotate90:
		return Point{X: h - 1 - p.Y, Y: p.X}
	case Rotate180:
		return Point{X: w - 1 - p.X, Y: h - 1 - p.Y}
	case Rotate270:
		return Point{X: p.Y, Y: w - 1 - p.X}
	default:
		return p
	}
}

// RotateSize returns the bounding size of s after rotation by r.
func RotateSize(s Size, r Rotation) Size {
	if r == Rotate90 || r == Rotate270 {
		return Size{W: s.H, H: s.W}
	}
	return s
}

// Place returns the absolute tiles of l rotated by r and translated to at.
//
// Rotation is always computed from the canonical unrotated tiles.
//
// Postcondition: len(result) == len(l.Tiles); types and walk costs are preserved.
func (l *Layout) Place(r Rotation, at Point) []Tile {
	out := make([]Tile, len(l.Tiles))
	for i, t := range l.Tiles {
		p := RotatePoint(t.Pos(), r, l.Width, l.Height).Add(at)
		out[i] = Tile{X: p.X, Y: p.Y, Type: t.Type, WalkCost: t.WalkCost}
	}
	return out
}
