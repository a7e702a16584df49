package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// RPCURL represents a typed URL for a JSON-RPC endpoint.
type RPCURL string

// NewRPCURL validates a raw endpoint address and wraps it as an RPCURL.
func NewRPCURL(rawURL string) (RPCURL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("rpc url cannot be empty")
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url format '%s': %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "ws", "wss":
		// Allowed schemes
	default:
		return "", fmt.Errorf("rpc url '%s' has unsupported scheme: '%s'", rawURL, scheme)
	}

	return RPCURL(rawURL), nil
}

// String returns the string representation of the RPCURL.
func (r RPCURL) String() string {
	return string(r)
}

// IsWebsocket reports whether the endpoint speaks JSON-RPC over a websocket.
func (r RPCURL) IsWebsocket() bool {
	s := strings.ToLower(string(r))
	return strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://")
}
