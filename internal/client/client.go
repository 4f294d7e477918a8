// Package client fetches transfer pages from the transfer indexing API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

const transactionsPath = "transactions"

// Client talks to an indexing API rooted at a base URL.
type Client struct {
	doer    ctshttp.Doer
	baseURL string
}

// NewClient returns a Client for the API at baseURL.
func NewClient(doer ctshttp.Doer, baseURL string) *Client {
	return &Client{doer: doer, baseURL: baseURL}
}

// FetchTransfers posts the payload to <base>/transactions/<address> and decodes one page of transfers.
func (c *Client) FetchTransfers(
	ctx context.Context,
	address string,
	payload query.Payload,
) (*transaction.Page, error) {
	requestPath, err := url.JoinPath(c.baseURL, transactionsPath, address)
	if err != nil {
		return nil, fmt.Errorf("failed to build request path for fetching transfers: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfers request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for fetching transfers: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request for fetching transfers: %w", &ctshttp.NetworkError{Err: err})
	}
	defer func() { _ = resp.Body.Close() }()

	if !ctshttp.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("failed to fetch transfers: %w", ctshttp.NewHTTPError(resp.StatusCode, resp.Body))
	}

	var page transaction.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode transfers response: %w", &ctshttp.ParseError{Err: err})
	}

	return &page, nil
}
