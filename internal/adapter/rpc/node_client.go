package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rpcdrift/internal/domain/entity"
	domainService "rpcdrift/internal/domain/service"
	"rpcdrift/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.NodeClient = (*nodeClient)(nil)

// nodeClient exposes typed chain-state queries on top of a transport.
type nodeClient struct {
	transport transport
	url       entity.RPCURL
	logger    *zap.Logger
}

// IsConnected performs a liveness round trip. Any transport or protocol
// failure counts as not connected.
func (c *nodeClient) IsConnected(ctx context.Context) bool {
	if _, err := c.transport.call(ctx, "web3_clientVersion"); err != nil {
		c.logger.Debug("Liveness check failed", zap.String("url", c.url.String()), zap.Error(err))
		return false
	}
	return true
}

// ChainID queries eth_chainId.
func (c *nodeClient) ChainID(ctx context.Context) (int64, error) {
	result, err := c.transport.call(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}
	return decodeQuantity(c.url.String(), result)
}

// BlockNumber queries eth_blockNumber.
func (c *nodeClient) BlockNumber(ctx context.Context) (int64, error) {
	result, err := c.transport.call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return decodeQuantity(c.url.String(), result)
}

// blockRecord mirrors the fields of an eth_getBlockByNumber result the
// probe reads. Nodes are not required to populate the timestamp.
type blockRecord struct {
	Number    *string `json:"number"`
	Timestamp *string `json:"timestamp"`
}

// BlockByNumber queries eth_getBlockByNumber without transaction bodies.
// A null result means the node no longer serves the requested block.
func (c *nodeClient) BlockByNumber(ctx context.Context, number int64) (entity.Block, error) {
	result, err := c.transport.call(ctx, "eth_getBlockByNumber", encodeQuantity(number), false)
	if err != nil {
		return entity.Block{}, err
	}

	if string(result) == "null" {
		return entity.Block{}, fmt.Errorf("%w: rpc %s has no record for block %d",
			apperrors.ErrBlockNotFound, c.url.String(), number,
		)
	}

	var record blockRecord
	if err := json.Unmarshal(result, &record); err != nil {
		return entity.Block{}, fmt.Errorf("%w: rpc %s returned malformed block record: %v",
			apperrors.ErrExternalServiceFailure, c.url.String(), err,
		)
	}

	block := entity.Block{Number: number}
	if record.Number != nil {
		n, err := parseQuantity(*record.Number)
		if err != nil {
			return entity.Block{}, fmt.Errorf("%w: rpc %s returned malformed block number: %v",
				apperrors.ErrExternalServiceFailure, c.url.String(), err,
			)
		}
		block.Number = n
	}
	if record.Timestamp != nil {
		ts, err := parseQuantity(*record.Timestamp)
		if err != nil {
			return entity.Block{}, fmt.Errorf("%w: rpc %s returned malformed block timestamp: %v",
				apperrors.ErrExternalServiceFailure, c.url.String(), err,
			)
		}
		block.Timestamp = &ts
	}

	return block, nil
}

// Close releases the underlying transport.
func (c *nodeClient) Close() error {
	return c.transport.close()
}

// decodeQuantity extracts a hex quantity from a JSON-RPC result.
func decodeQuantity(rpcURL string, result json.RawMessage) (int64, error) {
	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return 0, fmt.Errorf("%w: rpc %s returned non-string quantity: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}
	value, err := parseQuantity(encoded)
	if err != nil {
		return 0, fmt.Errorf("%w: rpc %s returned malformed quantity: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}
	return value, nil
}

// parseQuantity parses an Ethereum hex quantity ("0x1b4") into an int64.
func parseQuantity(encoded string) (int64, error) {
	lower := strings.ToLower(encoded)
	if !strings.HasPrefix(lower, "0x") || len(lower) == 2 {
		return 0, fmt.Errorf("quantity '%s' is not 0x-prefixed hex", encoded)
	}
	value, err := strconv.ParseInt(lower[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity '%s' is not valid hex: %w", encoded, err)
	}
	return value, nil
}

// encodeQuantity renders an int64 as an Ethereum hex quantity.
func encodeQuantity(value int64) string {
	return "0x" + strconv.FormatInt(value, 16)
}
