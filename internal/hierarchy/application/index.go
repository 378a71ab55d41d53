package application

import (
	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// Index holds the lookup structures of one run. It is built in a single
// pass and never mutates the device list.
type Index struct {
	ByRowID map[int64]*hierarchy.Device
	// ByName keeps only the first occurrence per name; later duplicates
	// are reported through diagnostics.
	ByName             map[string]*hierarchy.Device
	ChildrenByParentID map[int64][]*hierarchy.Device
	// ChildrenByHeadName groups children by their recorded head name;
	// power aggregation works on names, not row ids.
	ChildrenByHeadName map[string][]*hierarchy.Device
}

// IsFirstWinner reports whether the device owns its name in ByName.
func (ix *Index) IsFirstWinner(d *hierarchy.Device) bool {
	if ix == nil || d == nil {
		return false
	}
	winner, ok := ix.ByName[d.Name]
	return ok && winner.RowID == d.RowID
}

// BuildIndex builds the run's lookup structures and records duplicate
// names, dangling parents and unknown head names.
func BuildIndex(devices []hierarchy.Device, diags *hierarchy.Diagnostics) *Index {
	ix := &Index{
		ByRowID:            make(map[int64]*hierarchy.Device, len(devices)),
		ByName:             make(map[string]*hierarchy.Device, len(devices)),
		ChildrenByParentID: make(map[int64][]*hierarchy.Device),
		ChildrenByHeadName: make(map[string][]*hierarchy.Device),
	}

	duplicates := make(map[string][]int64)
	for i := range devices {
		device := &devices[i]
		ix.ByRowID[device.RowID] = device
		if device.Name != "" {
			if _, taken := ix.ByName[device.Name]; taken {
				duplicates[device.Name] = append(duplicates[device.Name], device.RowID)
			} else {
				ix.ByName[device.Name] = device
			}
		}
		if device.HasParent() {
			ix.ChildrenByParentID[device.ParentID] = append(ix.ChildrenByParentID[device.ParentID], device)
		}
		if device.HeadName != "" && device.HeadName != device.Name {
			ix.ChildrenByHeadName[device.HeadName] = append(ix.ChildrenByHeadName[device.HeadName], device)
		}
	}

	if diags != nil {
		for i := range devices {
			device := &devices[i]
			if device.HasParent() {
				if _, ok := ix.ByRowID[device.ParentID]; !ok {
					diags.DanglingParents = append(diags.DanglingParents, hierarchy.DanglingParent{
						RowID:    device.RowID,
						ParentID: device.ParentID,
					})
				}
			}
			if device.HeadName != "" && device.HeadName != device.Name {
				if _, ok := ix.ByName[device.HeadName]; !ok {
					diags.UnknownHeads = append(diags.UnknownHeads, hierarchy.UnknownHead{
						RowID:    device.RowID,
						HeadName: device.HeadName,
					})
				}
			}
		}
		for name, laterRows := range duplicates {
			first := ix.ByName[name]
			diags.DuplicateNames = append(diags.DuplicateNames, hierarchy.DuplicateName{
				Name:   name,
				RowIDs: append([]int64{first.RowID}, laterRows...),
			})
		}
	}
	return ix
}
