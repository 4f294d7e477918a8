package token

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/jsonrpc"
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

const (
	methodBalanceOf = "balanceOf"
	methodDecimals  = "decimals"
	blockLatest     = "latest"
)

var erc20ABI = mustParseABI(erc20ABIJSON)

// RPCDetailsService implements DetailsService and BalanceService by calling an RPC node.
type RPCDetailsService struct {
	rpc *jsonrpc.Client
}

// NewRPCDetailsService returns a service that uses the provided HTTP client
// and RPC node URL to perform JSON-RPC calls.
func NewRPCDetailsService(client ctshttp.Doer, rpcURL string) *RPCDetailsService {
	return &RPCDetailsService{rpc: jsonrpc.NewClient(client, rpcURL)}
}

// GetTokenDetails fetches the token decimals by calling the `decimals()` ERC20 method
// using `eth_call` on the RPC node. If no result is returned, it returns (nil, nil).
func (r *RPCDetailsService) GetTokenDetails(
	ctx context.Context,
	contractAddress string,
) (*Details, error) {
	res, err := r.call(ctx, contractAddress, methodDecimals)
	if err != nil {
		return nil, err
	}

	if res == "" || res == "0x" {
		slog.DebugContext(
			ctx,
			fmt.Sprintf(
				"Response of '%s' indicates no data; returning nil for the token details",
				res,
			),
		)

		return nil, nil
	}

	// strip 0x
	hexStr := strings.TrimPrefix(res, "0x")
	// ensure even length for hex decode
	if len(hexStr)%2 == 1 {
		hexStr = "0" + hexStr
	}

	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("decode hex result: %w", err)
	}

	bi := new(big.Int).SetBytes(decoded)
	if bi.BitLen() == 0 {
		slog.DebugContext(
			ctx,
			"Response is zero after decoding; returning nil for the token details",
		)

		return nil, nil
	}

	// convert to int safely
	if bi.Cmp(big.NewInt(int64(^uint(0)>>1))) == 1 { // bigger than max int
		return nil, fmt.Errorf("decimals value too large: %s", bi.String())
	}

	return &Details{Decimals: int(bi.Int64())}, nil
}

// GetBalance calls `balanceOf(owner)` on the token contract.
func (r *RPCDetailsService) GetBalance(
	ctx context.Context,
	contractAddress string,
	ownerAddress string,
) (*big.Int, error) {
	if !common.IsHexAddress(ownerAddress) {
		return nil, fmt.Errorf("invalid owner address '%s'", ownerAddress)
	}

	res, err := r.call(ctx, contractAddress, methodBalanceOf, common.HexToAddress(ownerAddress))
	if err != nil {
		return nil, err
	}

	data, err := hexutil.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("decode hex result: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("contract '%s' returned no data for balanceOf", contractAddress)
	}

	values, err := erc20ABI.Unpack(methodBalanceOf, data)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf result: %w", err)
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}

	return balance, nil
}

func (r *RPCDetailsService) call(
	ctx context.Context,
	contractAddress string,
	method string,
	args ...any,
) (string, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s call: %w", method, err)
	}

	// prepare params: call object and block param
	callObj := map[string]string{
		"to":   contractAddress,
		"data": hexutil.Encode(data),
	}

	var res string
	if err := r.rpc.Call(ctx, "eth_call", []any{callObj, blockLatest}, &res); err != nil {
		return "", fmt.Errorf("rpc call: %w", err)
	}

	return res, nil
}

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid ERC-20 ABI: %v", err))
	}

	return parsed
}
