package descriptor

// Descriptor is one structure descriptor file as extracted from game data.
// Offsets are relative to the structure anchor and may be negative.
type Descriptor struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Category     string            `yaml:"category"`
	Color        string            `yaml:"color"`
	Size         []int             `yaml:"size,flow"`
	Tiles        []DataTile        `yaml:"tiles"`
	Linked       []LinkedTile      `yaml:"linked"`
	Restrictions []RestrictionArea `yaml:"restrictions"`
}

// DataTile is a per-structure data tile.
type DataTile struct {
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Element  string `yaml:"element"`
	WalkCost int    `yaml:"walk_cost"`
}

// LinkedTile is an offset that always belongs to the structure body.
type LinkedTile struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// RestrictionArea is a clearance rectangle with its rule kind.
type RestrictionArea struct {
	Kind string `yaml:"kind"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	W    int    `yaml:"w"`
	H    int    `yaml:"h"`
}
