package service

import (
	"context"
	"time"

	"rpcdrift/internal/domain/entity"
)

// NodeClient is the probe's view of one JSON-RPC endpoint. A client is bound
// to a single endpoint and owned exclusively by the snapshot that dialed it.
type NodeClient interface {
	// IsConnected performs a liveness round trip against the endpoint.
	IsConnected(ctx context.Context) bool

	// ChainID returns the network identifier reported by the endpoint.
	ChainID(ctx context.Context) (int64, error)

	// BlockNumber returns the highest block number the endpoint reports as confirmed.
	BlockNumber(ctx context.Context) (int64, error)

	// BlockByNumber retrieves the block record for the given number.
	// A node answering with a null record yields apperrors.ErrBlockNotFound.
	BlockByNumber(ctx context.Context, number int64) (entity.Block, error)

	// Close releases the client's transport resources.
	Close() error
}

// NodeDialer constructs a NodeClient for an endpoint. The timeout applies
// per request, not per snapshot: a snapshot performing the handshake plus
// four queries may block for up to five times the timeout in the worst case.
type NodeDialer interface {
	Dial(rpcURL entity.RPCURL, timeout time.Duration) (NodeClient, error)
}
