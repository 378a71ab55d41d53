package hierarchy

// NoParent is the normalized "no parent" value. The host table encodes it
// as an absent cell, null, 0 or -1; the loader folds all of these to 0.
const NoParent int64 = 0

// Device is one row of the device table, normalized for computation.
type Device struct {
	RowID      int64
	Name       string
	ParentID   int64
	HeadName   string
	CanBeHead  bool
	Power      float64
	HasPower   bool
	StoredFull string
	StoredHead string
	StoredL1   string
	StoredL2   string
	StoredL3   string
}

// HasParent reports whether the row carries a resolvable parent pointer.
func (d Device) HasParent() bool {
	return d.ParentID != NoParent
}

// PathResult holds the derived path fields of one device.
type PathResult struct {
	FullPath string
	HeadPath string
	Level1   string
	Level2   string
	Level3   string
	Cyclic   bool
}

// RowUpdate is one planned update: the changed fields of a single row,
// keyed by the concrete column names of the source table.
type RowUpdate struct {
	RowID  int64
	Fields map[string]any
}
