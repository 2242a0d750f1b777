package layout

// ElementType is the element-type token carried by a raw tile descriptor.
type ElementType string

// Element-type tokens with a non-default classification.
const (
	ElementLight     ElementType = "Light"
	ElementFloorDeco ElementType = "FloorDeco"
)

// elementClasses maps element tokens to the tile type they produce when the
// tile is walkable. Tokens not listed classify as Construction.
var elementClasses = map[ElementType]TileType{
	ElementLight:     Access,
	ElementFloorDeco: Access,
}

// Classify returns the tile type for a new data tile.
//
// Postcondition: walkCost >= ImpassableWalkCost yields Blocked; otherwise the
// element table decides, defaulting to Construction.
func Classify(token ElementType, walkCost int) TileType {
	if walkCost >= ImpassableWalkCost {
		return Blocked
	}
	if t, ok := elementClasses[token]; ok {
		return t
	}
	return Construction
}

// RestrictionKind names the clearance rule of a restriction rectangle.
type RestrictionKind string

// Known restriction kinds. Any other kind is ignored by the normalizer.
const (
	RestrictionFloor        RestrictionKind = "Floor"
	RestrictionSpace        RestrictionKind = "Space"
	RestrictionSpaceOneOnly RestrictionKind = "SpaceOneOnly"
)

// restrictionTile returns the tile a restriction kind expands into.
func restrictionTile(kind RestrictionKind) (TileType, int, bool) {
	switch kind {
	case RestrictionFloor:
		return Access, 0, true
	case RestrictionSpace, RestrictionSpaceOneOnly:
		return Blocked, ImpassableWalkCost, true
	default:
		return 0, 0, false
	}
}
