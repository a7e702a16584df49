package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpcdrift/internal/domain/entity"
)

func sampleReport() entity.DriftReport {
	chainID := int64(1)
	primaryBlock := int64(100)
	secondaryBlock := int64(105)
	primaryTS := int64(1000)
	secondaryTS := int64(1060)
	latency := 12.345
	blockDiff := int64(5)
	timeDiff := 60.0

	return entity.DriftReport{
		Primary: entity.EndpointSnapshot{
			Label:           entity.RolePrimary,
			RPCURL:          "http://primary.example:8545",
			Connected:       true,
			ChainID:         &chainID,
			LatestBlock:     &primaryBlock,
			LatestTimestamp: &primaryTS,
			LatencyMs:       &latency,
		},
		Secondary: entity.EndpointSnapshot{
			Label:           entity.RoleSecondary,
			RPCURL:          "http://secondary.example:8545",
			Connected:       true,
			ChainID:         &chainID,
			LatestBlock:     &secondaryBlock,
			LatestTimestamp: &secondaryTS,
			LatencyMs:       &latency,
		},
		BlockDiff:       &blockDiff,
		TimeDiffSec:     &timeDiff,
		ConsistentChain: true,
	}
}

func TestWriteHuman_ConnectedPair(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHuman(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "[Primary]   primary")
	assert.Contains(t, out, "[Secondary] secondary")
	assert.Contains(t, out, "RPC URL       : http://primary.example:8545")
	assert.Contains(t, out, "Connected     : yes")
	assert.Contains(t, out, "Chain ID      : 1")
	assert.Contains(t, out, "Latest block  : 100")
	assert.Contains(t, out, "Latency (ms)  : 12.35")
	assert.Contains(t, out, "Block drift   : 5 blocks (ahead vs primary)")
	assert.Contains(t, out, "Time drift    : 60.00 seconds (secondary minus primary)")
	assert.NotContains(t, out, "Warning:")
	assert.NotContains(t, out, "Error")
}

func TestWriteHuman_Directions(t *testing.T) {
	tests := []struct {
		name      string
		blockDiff int64
		want      string
	}{
		{name: "ahead", blockDiff: 5, want: "5 blocks (ahead vs primary)"},
		{name: "behind", blockDiff: -5, want: "-5 blocks (behind vs primary)"},
		{name: "aligned", blockDiff: 0, want: "0 blocks (aligned vs primary)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := sampleReport()
			report.BlockDiff = &tt.blockDiff

			var buf bytes.Buffer
			require.NoError(t, WriteHuman(&buf, report))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestWriteHuman_DisconnectedEndpoint(t *testing.T) {
	errMsg := "not connected"
	report := sampleReport()
	report.Secondary = entity.EndpointSnapshot{
		Label:  entity.RoleSecondary,
		RPCURL: "http://secondary.example:8545",
		Error:  &errMsg,
	}
	report.BlockDiff = nil
	report.TimeDiffSec = nil
	report.ConsistentChain = false

	var buf bytes.Buffer
	require.NoError(t, WriteHuman(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "Connected     : no")
	assert.Contains(t, out, "Chain ID      : n/a")
	assert.Contains(t, out, "Latest block  : n/a")
	assert.Contains(t, out, "Block time    : n/a")
	assert.Contains(t, out, "Latency (ms)  : n/a")
	assert.Contains(t, out, "Error         : not connected")
	assert.Contains(t, out, "Warning: chain IDs differ or endpoints are offline")
	assert.Contains(t, out, "Block drift   : unknown")
	assert.Contains(t, out, "Time drift    : unknown")
}

// limitedWriter fails once more than its budget has been written.
type limitedWriter struct {
	remaining int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n := w.remaining
		w.remaining = 0
		return n, errors.New("write: broken pipe")
	}
	w.remaining -= len(p)
	return len(p), nil
}

func TestWriteHuman_PropagatesWriteFailure(t *testing.T) {
	// Room for the header line only; a later section write must fail.
	err := WriteHuman(&limitedWriter{remaining: 20}, sampleReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestWriteHuman_FailsEvenWhenOnlyTheLastLineBreaks(t *testing.T) {
	var full bytes.Buffer
	require.NoError(t, WriteHuman(&full, sampleReport()))

	// Allow everything except the final time-drift line.
	err := WriteHuman(&limitedWriter{remaining: full.Len() - 10}, sampleReport())

	require.Error(t, err)
}

func TestWriteJSON_ShapeAndDeterminism(t *testing.T) {
	report := sampleReport()

	var first, second bytes.Buffer
	require.NoError(t, WriteJSON(&first, report))
	require.NoError(t, WriteJSON(&second, report))

	// Identical reports serialize byte-identically.
	assert.Equal(t, first.String(), second.String())

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(first.Bytes(), &decoded))
	for _, key := range []string{"primary", "secondary", "blockDiff", "timeDiffSec", "consistentChain"} {
		assert.Contains(t, decoded, key)
	}

	// Top-level key order follows the report's field order.
	text := first.String()
	assert.Less(t, strings.Index(text, `"primary"`), strings.Index(text, `"secondary"`))
	assert.Less(t, strings.Index(text, `"secondary"`), strings.Index(text, `"blockDiff"`))
	assert.Less(t, strings.Index(text, `"blockDiff"`), strings.Index(text, `"timeDiffSec"`))
	assert.Less(t, strings.Index(text, `"timeDiffSec"`), strings.Index(text, `"consistentChain"`))
}

func TestWriteJSON_NullsAreExplicit(t *testing.T) {
	errMsg := "not connected"
	report := entity.DriftReport{
		Primary: entity.EndpointSnapshot{
			Label:  entity.RolePrimary,
			RPCURL: "http://primary.example:8545",
			Error:  &errMsg,
		},
		Secondary: entity.EndpointSnapshot{
			Label:  entity.RoleSecondary,
			RPCURL: "http://secondary.example:8545",
			Error:  &errMsg,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))
	out := buf.String()

	assert.Contains(t, out, `"chainId": null`)
	assert.Contains(t, out, `"latestBlock": null`)
	assert.Contains(t, out, `"latestTimestamp": null`)
	assert.Contains(t, out, `"latencyMs": null`)
	assert.Contains(t, out, `"blockDiff": null`)
	assert.Contains(t, out, `"timeDiffSec": null`)
}
