package usecase

import (
	"rpcdrift/internal/domain/entity"
)

// ComputeDrift derives a comparison report from two snapshots. Pure
// function: same inputs always yield the same report, and it has no
// failure path. Diffs are secondary minus primary and stay nil whenever
// either side is disconnected or missing the source field.
func ComputeDrift(primary, secondary entity.EndpointSnapshot) entity.DriftReport {
	report := entity.DriftReport{
		Primary:   primary,
		Secondary: secondary,
	}

	report.ConsistentChain = primary.Connected &&
		secondary.Connected &&
		primary.ChainID != nil &&
		secondary.ChainID != nil &&
		*primary.ChainID == *secondary.ChainID

	if primary.Connected && secondary.Connected &&
		primary.LatestBlock != nil && secondary.LatestBlock != nil {
		diff := *secondary.LatestBlock - *primary.LatestBlock
		report.BlockDiff = &diff
	}

	if primary.Connected && secondary.Connected &&
		primary.LatestTimestamp != nil && secondary.LatestTimestamp != nil {
		diff := float64(*secondary.LatestTimestamp - *primary.LatestTimestamp)
		report.TimeDiffSec = &diff
	}

	return report
}
