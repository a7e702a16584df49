package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rpcdrift/internal/domain/entity"
	"rpcdrift/internal/domain/service"
	"rpcdrift/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Snapshotter takes point-in-time observations of single endpoints. It is
// stateless; each call dials its own client and closes it before returning.
type Snapshotter struct {
	dialer service.NodeDialer
	logger *zap.Logger
}

// NewSnapshotter creates a new snapshotter on top of the given dialer.
func NewSnapshotter(dialer service.NodeDialer, logger *zap.Logger) *Snapshotter {
	return &Snapshotter{
		dialer: dialer,
		logger: logger.Named("Snapshotter"),
	}
}

// Snapshot probes one endpoint and returns a fully-populated snapshot. It
// never returns an error: every failure mode degrades to Connected=false
// plus a descriptive message, so two independently failing endpoints still
// produce a complete, comparable pair.
//
// Latency covers everything from the start of the call. It is nil when the
// client could not be constructed or failed its liveness check (no measured
// round trip), but is recorded when a later chain query fails: time was
// spent on the wire even though the query did not succeed.
func (s *Snapshotter) Snapshot(
	ctx context.Context,
	label entity.Role,
	rawURL string,
	timeout time.Duration,
) entity.EndpointSnapshot {
	start := time.Now()
	snap := entity.EndpointSnapshot{
		Label:  label,
		RPCURL: rawURL,
	}

	client, err := s.dialer.Dial(entity.RPCURL(rawURL), timeout)
	if err != nil {
		s.logger.Debug("Client construction failed",
			zap.String("label", string(label)), zap.String("url", rawURL), zap.Error(err),
		)
		msg := fmt.Sprintf("provider error: %v", err)
		snap.Error = &msg
		return snap
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			s.logger.Debug("Client close failed", zap.String("url", rawURL), zap.Error(cerr))
		}
	}()

	if !client.IsConnected(ctx) {
		s.logger.Debug("Liveness check failed",
			zap.String("label", string(label)), zap.String("url", rawURL),
		)
		msg := "not connected"
		snap.Error = &msg
		return snap
	}

	chainID, number, timestamp, err := s.queryChainState(ctx, client)
	latency := float64(time.Since(start)) / float64(time.Millisecond)
	snap.LatencyMs = &latency

	if err != nil {
		var msg string
		if errors.Is(err, apperrors.ErrBlockNotFound) {
			msg = "latest block not found"
		} else {
			msg = fmt.Sprintf("RPC error: %v", err)
		}
		s.logger.Debug("Chain-state query failed",
			zap.String("label", string(label)), zap.String("url", rawURL), zap.Error(err),
		)
		snap.Error = &msg
		return snap
	}

	snap.Connected = true
	snap.ChainID = &chainID
	snap.LatestBlock = &number
	snap.LatestTimestamp = timestamp

	s.logger.Debug("Snapshot taken",
		zap.String("label", string(label)),
		zap.String("url", rawURL),
		zap.Int64("chainId", chainID),
		zap.Int64("latestBlock", number),
		zap.Float64("latencyMs", latency),
	)
	return snap
}

// queryChainState fetches chain identity, the latest block number and the
// latest block's record, in that order. The reported block number is the
// one from eth_blockNumber; the block record only contributes its
// timestamp, which a node may omit.
func (s *Snapshotter) queryChainState(
	ctx context.Context,
	client service.NodeClient,
) (chainID int64, number int64, timestamp *int64, err error) {
	chainID, err = client.ChainID(ctx)
	if err != nil {
		return 0, 0, nil, err
	}

	number, err = client.BlockNumber(ctx)
	if err != nil {
		return 0, 0, nil, err
	}

	block, err := client.BlockByNumber(ctx, number)
	if err != nil {
		return 0, 0, nil, err
	}

	return chainID, number, block.Timestamp, nil
}
