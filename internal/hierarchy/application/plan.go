package application

import (
	"math"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// BuildPlan diffs computed values against the stored ones and returns the
// per-row deltas, in input order. Rows with no differing field are omitted.
// Path and level fields compare as exact strings; power compares with the
// configured tolerance.
func BuildPlan(snapshot *Snapshot, paths map[int64]hierarchy.PathResult, powers map[int64]float64, cfg Config) []hierarchy.RowUpdate {
	if snapshot == nil {
		return nil
	}
	tolerance := cfg.PowerTolerance
	if tolerance <= 0 {
		tolerance = 0.001
	}

	var plan []hierarchy.RowUpdate
	for i := range snapshot.Devices {
		device := &snapshot.Devices[i]
		fields := make(map[string]any)

		if result, ok := paths[device.RowID]; ok {
			if result.FullPath != device.StoredFull {
				fields[snapshot.Column(FieldFullPath)] = result.FullPath
			}
			if result.HeadPath != device.StoredHead {
				fields[snapshot.Column(FieldHeadPath)] = result.HeadPath
			}
			if result.Level1 != device.StoredL1 {
				fields[snapshot.Column(FieldLevel1)] = result.Level1
			}
			if result.Level2 != device.StoredL2 {
				fields[snapshot.Column(FieldLevel2)] = result.Level2
			}
			if result.Level3 != device.StoredL3 {
				fields[snapshot.Column(FieldLevel3)] = result.Level3
			}
		}

		if power, ok := powers[device.RowID]; ok {
			if math.Abs(power-device.Power) > tolerance {
				fields[snapshot.Column(FieldPower)] = power
			}
		}

		if len(fields) > 0 {
			plan = append(plan, hierarchy.RowUpdate{RowID: device.RowID, Fields: fields})
		}
	}
	return plan
}
