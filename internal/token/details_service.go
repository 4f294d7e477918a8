package token

import (
	"context"
	"math/big"
)

// DetailsService defines the interface for retrieving token details.
type DetailsService interface {
	// GetTokenDetails retrieves the token details for the given contract address.
	// If no details are found, it returns nil without an error.
	GetTokenDetails(ctx context.Context, contractAddress string) (*Details, error)
}

// BalanceService defines the interface for retrieving token balances.
type BalanceService interface {
	// GetBalance retrieves the balance, in base units, that the owner holds of the given token contract.
	GetBalance(ctx context.Context, contractAddress string, ownerAddress string) (*big.Int, error)
}
