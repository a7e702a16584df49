package entity

// Role identifies which side of the comparison an endpoint plays.
type Role string

// Constants for the two endpoint roles.
const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// Block holds the subset of a block record the probe cares about.
// Timestamp is nil when the node's block record did not expose one.
type Block struct {
	Number    int64
	Timestamp *int64
}

// EndpointSnapshot is a point-in-time observation of a single endpoint.
// It is created once per probe and never mutated afterwards.
//
// All failure modes are encoded in the value: Connected is true only when
// every chain-state query succeeded, in which case Error is nil. When
// Connected is false the three chain fields are nil and Error carries a
// human-readable description. LatencyMs is nil only when the client could
// not be constructed at all (no round trip ever started).
type EndpointSnapshot struct {
	Label           Role     `json:"label"`
	RPCURL          string   `json:"rpcUrl"`
	Connected       bool     `json:"connected"`
	ChainID         *int64   `json:"chainId"`
	LatestBlock     *int64   `json:"latestBlock"`
	LatestTimestamp *int64   `json:"latestTimestamp"`
	LatencyMs       *float64 `json:"latencyMs"`
	Error           *string  `json:"error"`
}
