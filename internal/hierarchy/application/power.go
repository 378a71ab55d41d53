package application

import (
	"math"

	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// PropagatePower recomputes parent powers as the sum of their direct
// children, iterated to fixpoint with a bounded pass count. It returns the
// final value for every device whose power changed versus its input power;
// leaves never appear in the result.
func PropagatePower(devices []hierarchy.Device, index *Index, cfg Config, diags *hierarchy.Diagnostics) map[int64]float64 {
	if index == nil || len(devices) == 0 {
		return map[int64]float64{}
	}
	tolerance := cfg.PowerTolerance
	if tolerance <= 0 {
		tolerance = 0.001
	}
	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 10
	}

	current := make(map[int64]float64, len(devices))
	initial := make(map[int64]float64, len(devices))
	for i := range devices {
		power := devices[i].Power
		if power < 0 || math.IsNaN(power) {
			power = 0
		}
		current[devices[i].RowID] = power
		initial[devices[i].RowID] = power
	}

	passes := 0
	converged := false
	staged := make(map[int64]float64)
	for pass := 0; pass < maxPasses; pass++ {
		passes = pass + 1
		clear(staged)
		for i := range devices {
			device := &devices[i]
			// Duplicate names aggregate only through the first winner,
			// otherwise one child set would inflate several parents.
			if !index.IsFirstWinner(device) {
				continue
			}
			children, ok := index.ChildrenByHeadName[device.Name]
			if !ok || len(children) == 0 {
				continue
			}
			sum := 0.0
			for _, child := range children {
				sum += math.Max(current[child.RowID], 0)
			}
			candidate := roundPower(sum)
			if math.Abs(candidate-current[device.RowID]) > tolerance {
				staged[device.RowID] = candidate
			}
		}
		if len(staged) == 0 {
			converged = true
			break
		}
		for rowID, candidate := range staged {
			current[rowID] = candidate
		}
	}

	if diags != nil {
		diags.PowerPasses = passes
		if !converged {
			diags.PowerUnconverged = true
		}
	}

	result := make(map[int64]float64)
	for i := range devices {
		device := &devices[i]
		if !index.IsFirstWinner(device) {
			continue
		}
		if _, ok := index.ChildrenByHeadName[device.Name]; !ok {
			continue
		}
		final := current[device.RowID]
		if math.Abs(final-initial[device.RowID]) > tolerance {
			result[device.RowID] = final
		}
	}
	return result
}

// roundPower rounds to the third decimal, the precision the host table
// stores.
func roundPower(v float64) float64 {
	return math.Round(v*1000) / 1000
}
