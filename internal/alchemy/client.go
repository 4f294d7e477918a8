// Package alchemy fetches transfer pages straight from an Alchemy node
// using the alchemy_getAssetTransfers method.
package alchemy

import (
	"context"
	"fmt"
	"strings"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/jsonrpc"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

// MethodGetAssetTransfers is the JSON-RPC method that enumerates transfers.
const MethodGetAssetTransfers = "alchemy_getAssetTransfers"

// Category is a class of transfer understood by alchemy_getAssetTransfers.
type Category string

const (
	CategoryExternal Category = "external"
	CategoryInternal Category = "internal"
	CategoryERC20    Category = "erc20"
	CategoryERC721   Category = "erc721"
	CategoryERC1155  Category = "erc1155"
)

// AllCategories is sent when a payload leaves the category list empty, since
// the node requires at least one category.
var AllCategories = []Category{
	CategoryExternal,
	CategoryInternal,
	CategoryERC20,
	CategoryERC721,
	CategoryERC1155,
}

// Client calls alchemy_getAssetTransfers on one endpoint.
type Client struct {
	rpc *jsonrpc.Client
}

// NewClient returns a Client for the given endpoint, which already carries the API key.
func NewClient(doer ctshttp.Doer, endpoint string) *Client {
	return &Client{rpc: jsonrpc.NewClient(doer, endpoint)}
}

// EndpointURL appends the API key to the network URL, e.g. "https://eth-mainnet.g.alchemy.com/v2/" + key.
func EndpointURL(networkURL string, apiKey string) string {
	if apiKey == "" {
		return networkURL
	}

	return strings.TrimSuffix(networkURL, "/") + "/" + apiKey
}

// FetchTransfers requests one page of transfers. The address is already placed in the payload.
func (c *Client) FetchTransfers(
	ctx context.Context,
	address string,
	payload query.Payload,
) (*transaction.Page, error) {
	params := withCategories(payload)

	var page transaction.Page
	if err := c.rpc.Call(ctx, MethodGetAssetTransfers, []any{params}, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch transfers for address '%s': %w", address, err)
	}

	return &page, nil
}

func withCategories(payload query.Payload) query.Payload {
	if len(payload.Category) > 0 {
		return payload
	}

	categories := make([]string, 0, len(AllCategories))
	for _, category := range AllCategories {
		categories = append(categories, string(category))
	}

	payload.Category = categories

	return payload
}
