package hierarchy

// DuplicateName reports rows sharing one name; the first row id wins
// name-based lookups.
type DuplicateName struct {
	Name   string  `json:"name"`
	RowIDs []int64 `json:"row_ids"`
}

// DanglingParent reports a parent pointer that resolves to no row.
type DanglingParent struct {
	RowID    int64 `json:"row_id"`
	ParentID int64 `json:"parent_id"`
}

// UnknownHead reports a head name that matches no device name.
type UnknownHead struct {
	RowID    int64  `json:"row_id"`
	HeadName string `json:"head_name"`
}

// Cycle reports one ancestry cycle by row membership.
type Cycle struct {
	Members []int64 `json:"members"`
}

// InvalidPower reports a power cell that failed the permissive parse or was
// negative; the value is treated as zero for aggregation.
type InvalidPower struct {
	RowID int64  `json:"row_id"`
	Raw   string `json:"raw"`
}

// Diagnostics aggregates every locally recovered condition of one run.
type Diagnostics struct {
	DuplicateNames   []DuplicateName  `json:"duplicate_names,omitempty"`
	DanglingParents  []DanglingParent `json:"dangling_parents,omitempty"`
	UnknownHeads     []UnknownHead    `json:"unknown_heads,omitempty"`
	Cycles           []Cycle          `json:"cycles,omitempty"`
	InvalidPowers    []InvalidPower   `json:"invalid_powers,omitempty"`
	PowerUnconverged bool             `json:"power_unconverged,omitempty"`
	PowerPasses      int              `json:"power_passes"`
	CountsPerField   map[string]int   `json:"counts_per_field,omitempty"`
}

// IsClean reports whether the run produced no diagnostics.
func (d *Diagnostics) IsClean() bool {
	if d == nil {
		return true
	}
	return len(d.DuplicateNames) == 0 &&
		len(d.DanglingParents) == 0 &&
		len(d.UnknownHeads) == 0 &&
		len(d.Cycles) == 0 &&
		len(d.InvalidPowers) == 0 &&
		!d.PowerUnconverged
}
