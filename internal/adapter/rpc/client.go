package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"rpcdrift/internal/domain/entity"
	domainService "rpcdrift/internal/domain/service"
	"rpcdrift/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.NodeDialer = (*Dialer)(nil)

// Dialer constructs NodeClients for JSON-RPC endpoints. The configured
// timeout is applied per request: connection setup and each chain query get
// the full timeout individually rather than sharing a single budget.
type Dialer struct {
	logger *zap.Logger
}

// NewDialer creates a new endpoint dialer.
func NewDialer(logger *zap.Logger) *Dialer {
	return &Dialer{logger: logger.Named("RPCDialer")}
}

// Dial validates the endpoint address and binds a client to it. For
// websocket endpoints the handshake happens here, so an unreachable host
// fails at construction time.
func (d *Dialer) Dial(rpcURL entity.RPCURL, timeout time.Duration) (domainService.NodeClient, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: non-positive timeout %v", apperrors.ErrInvalidInput, timeout)
	}

	if _, err := entity.NewRPCURL(rpcURL.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	if rpcURL.IsWebsocket() {
		transport, err := dialWebsocket(rpcURL.String(), timeout, d.logger)
		if err != nil {
			return nil, err
		}
		return &nodeClient{transport: transport, url: rpcURL, logger: d.logger}, nil
	}

	transport := &httpTransport{
		url:     rpcURL.String(),
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout: timeout,
		},
		logger: d.logger,
	}
	return &nodeClient{transport: transport, url: rpcURL, logger: d.logger}, nil
}

// rpcRequest is the JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

// rpcResponse defines the basic structure for a JSON-RPC response.
type rpcResponse struct {
	ID      any             `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError defines the structure for a JSON-RPC error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// transport performs a single JSON-RPC call over some wire protocol.
type transport interface {
	call(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	close() error
}

var requestID atomic.Uint64

func marshalRequest(method string, params []any) ([]byte, error) {
	if params == nil {
		params = []any{}
	}
	return json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      requestID.Add(1),
	})
}

// decodeResponse checks that the body is a valid, successful JSON-RPC
// response and extracts its result.
func decodeResponse(rpcURL string, body []byte) (json.RawMessage, error) {
	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: rpc %s returned invalid JSON response: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: rpc %s returned json-rpc error: %d %s",
			apperrors.ErrExternalServiceFailure, rpcURL, resp.Error.Code, resp.Error.Message,
		)
	}

	if resp.Jsonrpc != "2.0" || resp.Result == nil {
		return nil, fmt.Errorf("%w: rpc %s returned invalid JSON-RPC structure",
			apperrors.ErrExternalServiceFailure, rpcURL,
		)
	}

	return resp.Result, nil
}

// httpTransport speaks JSON-RPC over HTTP/HTTPS using fasthttp.
type httpTransport struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
	logger  *zap.Logger
}

func (t *httpTransport) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	payload, err := marshalRequest(method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s request: %v", apperrors.ErrInvalidInput, method, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	if err := t.client.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			t.logger.Debug("HTTP RPC call timed out",
				zap.String("url", t.url),
				zap.String("method", method),
				zap.Duration("timeout", timeout),
			)
			return nil, fmt.Errorf("%w: %s request to %s timed out after %v: %v",
				apperrors.ErrTimeout, method, t.url, timeout, err,
			)
		}
		t.logger.Debug("HTTP RPC call failed",
			zap.String("url", t.url), zap.String("method", method), zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s request to %s failed: %v",
			apperrors.ErrExternalServiceFailure, method, t.url, err,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		t.logger.Debug("HTTP RPC call returned non-OK status",
			zap.String("url", t.url),
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: rpc %s returned non-OK http status: %d",
			apperrors.ErrExternalServiceFailure, t.url, resp.StatusCode(),
		)
	}

	return decodeResponse(t.url, resp.Body())
}

func (t *httpTransport) close() error {
	return nil
}

// wsTransport speaks JSON-RPC over a websocket connection established at
// dial time. A single request is in flight at any moment.
type wsTransport struct {
	url     string
	timeout time.Duration
	conn    *websocket.Conn
	logger  *zap.Logger
}

func dialWebsocket(rpcURL string, timeout time.Duration, logger *zap.Logger) (*wsTransport, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: timeout,
	}

	logger.Debug("Attempting websocket connection",
		zap.String("url", rpcURL), zap.Duration("handshakeTimeout", timeout),
	)

	conn, _, err := dialer.Dial(rpcURL, nil)
	if err != nil {
		logger.Debug("Websocket dial failed", zap.String("url", rpcURL), zap.Error(err))
		return nil, fmt.Errorf("%w: websocket dial to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	return &wsTransport{url: rpcURL, timeout: timeout, conn: conn, logger: logger}, nil
}

func (t *wsTransport) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	payload, err := marshalRequest(method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s request: %v", apperrors.ErrInvalidInput, method, err)
	}

	timeout := t.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	_ = t.conn.SetWriteDeadline(time.Now().Add(timeout))
	_ = t.conn.SetReadDeadline(time.Now().Add(timeout))

	if err := t.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.logger.Debug("Websocket write failed",
			zap.String("url", t.url), zap.String("method", method), zap.Error(err),
		)
		return nil, fmt.Errorf("%w: websocket write to %s failed: %v",
			apperrors.ErrExternalServiceFailure, t.url, err,
		)
	}

	_, message, err := t.conn.ReadMessage()
	if err != nil {
		t.logger.Debug("Websocket read failed",
			zap.String("url", t.url), zap.String("method", method), zap.Error(err),
		)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: websocket read from %s timed out: %v",
				apperrors.ErrTimeout, t.url, ctx.Err(),
			)
		}
		return nil, fmt.Errorf("%w: websocket read from %s failed: %v",
			apperrors.ErrExternalServiceFailure, t.url, err,
		)
	}

	return decodeResponse(t.url, message)
}

func (t *wsTransport) close() error {
	return t.conn.Close()
}
