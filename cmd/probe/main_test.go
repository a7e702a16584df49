package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpcdrift/internal/domain/entity"
)

// fakeNode serves a minimal Ethereum JSON-RPC surface over HTTP.
func fakeNode(t *testing.T, chainID, blockNumber, timestamp string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     uint64 `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result any
		switch req.Method {
		case "web3_clientVersion":
			result = "fake-node/v0.1.0"
		case "eth_chainId":
			result = chainID
		case "eth_blockNumber":
			result = blockNumber
		case "eth_getBlockByNumber":
			result = map[string]string{"number": blockNumber, "timestamp": timestamp}
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		})
	}))
}

func runProbe(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ConsistentEndpointsExitZero(t *testing.T) {
	primary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer primary.Close()
	secondary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer secondary.Close()

	code, stdout, _ := runProbe(t,
		"--rpc-primary", primary.URL,
		"--rpc-secondary", secondary.URL,
		"--timeout", "5",
	)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Connected     : yes")
	assert.Contains(t, stdout, "Block drift   : 0 blocks (aligned vs primary)")
	assert.Contains(t, stdout, "Time drift    : 0.00 seconds (secondary minus primary)")
}

func TestRun_DifferentChainsExitTwo(t *testing.T) {
	primary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer primary.Close()
	secondary := fakeNode(t, "0x2a", "0x69", "0x424")
	defer secondary.Close()

	code, stdout, _ := runProbe(t,
		"--rpc-primary", primary.URL,
		"--rpc-secondary", secondary.URL,
		"--timeout", "5",
	)

	// Drift is still reported from the available fields.
	assert.Equal(t, exitInconsistent, code)
	assert.Contains(t, stdout, "Warning: chain IDs differ or endpoints are offline")
	assert.Contains(t, stdout, "Block drift   : 5 blocks (ahead vs primary)")
	assert.Contains(t, stdout, "Time drift    : 60.00 seconds (secondary minus primary)")
}

func TestRun_UnreachableSecondaryExitTwo(t *testing.T) {
	primary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer primary.Close()

	code, stdout, _ := runProbe(t,
		"--rpc-primary", primary.URL,
		"--rpc-secondary", "http://127.0.0.1:1",
		"--timeout", "1",
	)

	assert.Equal(t, exitInconsistent, code)
	assert.Contains(t, stdout, "Error         : not connected")
	assert.Contains(t, stdout, "Block drift   : unknown")
	assert.Contains(t, stdout, "Time drift    : unknown")
}

func TestRun_JSONOutput(t *testing.T) {
	primary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer primary.Close()
	secondary := fakeNode(t, "0x1", "0x64", "0x3e8")
	defer secondary.Close()

	code, stdout, _ := runProbe(t,
		"--rpc-primary", primary.URL,
		"--rpc-secondary", secondary.URL,
		"--json",
	)

	assert.Equal(t, 0, code)

	var report entity.DriftReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.ConsistentChain)
	require.NotNil(t, report.BlockDiff)
	assert.Equal(t, int64(0), *report.BlockDiff)
}

func TestRun_MissingRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no flags", args: nil},
		{name: "missing secondary", args: []string{"--rpc-primary", "http://node.example:8545"}},
		{name: "missing primary", args: []string{"--rpc-secondary", "http://node.example:8545"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runProbe(t, tt.args...)
			assert.Equal(t, exitInconsistent, code)
			assert.Contains(t, stderr, "--rpc-primary and --rpc-secondary are required")
			assert.Contains(t, stderr, "Usage:")
		})
	}
}

func TestRun_InvalidFlagsExitTwo(t *testing.T) {
	code, _, stderr := runProbe(t,
		"--rpc-primary", "http://a.example:8545",
		"--rpc-secondary", "http://b.example:8545",
		"--timeout", "0",
	)
	assert.Equal(t, exitInconsistent, code)
	assert.Contains(t, stderr, "--timeout must be positive")

	code, _, _ = runProbe(t, "--no-such-flag")
	assert.Equal(t, exitInconsistent, code)
}
