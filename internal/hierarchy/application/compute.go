package application

import (
	hierarchy "device-hierarchy/internal/hierarchy/domain"
)

// ComputeResult bundles everything one pure computation produced.
type ComputeResult struct {
	Snapshot    *Snapshot
	Paths       map[int64]hierarchy.PathResult
	Powers      map[int64]float64
	Plan        []hierarchy.RowUpdate
	Diagnostics *hierarchy.Diagnostics
}

// Compute runs the full pipeline over one columnar snapshot: load, index,
// paths, power fixpoint, diff plan. It performs no IO; all caches live in
// the returned value and die with it.
func Compute(input hierarchy.Columnar, cfg Config) (*ComputeResult, error) {
	diags := &hierarchy.Diagnostics{}

	snapshot, err := LoadSnapshot(input, diags)
	if err != nil {
		return nil, err
	}
	index := BuildIndex(snapshot.Devices, diags)
	calculator := NewPathCalculator(index, cfg.PathSeparator, cfg.StrictHeadRule)
	paths := calculator.ComputeAll(snapshot.Devices, diags)
	powers := PropagatePower(snapshot.Devices, index, cfg, diags)
	plan := BuildPlan(snapshot, paths, powers, cfg)

	return &ComputeResult{
		Snapshot:    snapshot,
		Paths:       paths,
		Powers:      powers,
		Plan:        plan,
		Diagnostics: diags,
	}, nil
}
