package entity

// DriftReport compares two endpoint snapshots. Diffs are secondary minus
// primary: positive means the secondary is ahead. BlockDiff and TimeDiffSec
// are nil whenever either snapshot is disconnected or the source field is
// missing; drift is never derived from partial data.
//
// Field order is the serialization order, kept fixed so JSON reports diff
// cleanly between runs.
type DriftReport struct {
	Primary         EndpointSnapshot `json:"primary"`
	Secondary       EndpointSnapshot `json:"secondary"`
	BlockDiff       *int64           `json:"blockDiff"`
	TimeDiffSec     *float64         `json:"timeDiffSec"`
	ConsistentChain bool             `json:"consistentChain"`
}
