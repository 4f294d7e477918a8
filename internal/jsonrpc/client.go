// Package jsonrpc performs JSON-RPC 2.0 calls over HTTP.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
)

const version = "2.0"

// Error is the error object of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error: %d %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Client calls a single JSON-RPC endpoint.
type Client struct {
	doer   ctshttp.Doer
	url    string
	nextID atomic.Int64
}

// NewClient returns a Client that posts calls to url using the given Doer.
func NewClient(doer ctshttp.Doer, url string) *Client {
	return &Client{doer: doer, url: url}
}

// Call invokes method with params and decodes the result into result.
// Transport failures are returned as *ctshttp.NetworkError, non-2xx statuses as
// *ctshttp.HTTPError, undecodable bodies as *ctshttp.ParseError and error
// objects in the response as *Error.
func (c *Client) Call(ctx context.Context, method string, params []any, result any) error {
	if c.doer == nil {
		return errors.New("http client is nil")
	}

	if params == nil {
		params = []any{}
	}

	reqBody := request{
		JSONRPC: version,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpc call %s: %w", method, &ctshttp.NetworkError{Err: err})
	}
	defer func() { _ = resp.Body.Close() }()

	if !ctshttp.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("rpc call %s: %w", method, ctshttp.NewHTTPError(resp.StatusCode, resp.Body))
	}

	var rpcResp response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode rpc response: %w", &ctshttp.ParseError{Err: err})
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result == nil {
		return nil
	}

	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("decode rpc response: %w", &ctshttp.ParseError{Err: errors.New("response has no result")})
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("decode rpc result: %w", &ctshttp.ParseError{Err: err})
	}

	return nil
}
