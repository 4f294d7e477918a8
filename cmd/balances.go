package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/jrh3k5/transfer-explorer/internal/config"
	"github.com/jrh3k5/transfer-explorer/internal/display"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/token"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

type tokenBalance struct {
	token   token.KnownToken
	balance string
}

func runBalances(ctx context.Context, cfg *config.Config, doer ctshttp.Doer, args []string) error {
	address := argValue(args, "--address=")
	if !transaction.IsAddress(address) {
		return fmt.Errorf("--address must be 0x followed by 40 hex digits, got '%s'", address)
	}

	tokens := token.KnownTokens
	if symbol := argValue(args, "--token="); symbol != "" {
		known, ok := token.LookupKnownToken(symbol)
		if !ok {
			return fmt.Errorf("unknown token '%s'", symbol)
		}
		tokens = []token.KnownToken{known}
	}

	svc := token.NewRPCDetailsService(doer, cfg.RPCEndpoint())

	balances := make([]tokenBalance, 0, len(tokens))
	for _, known := range tokens {
		slog.InfoContext(ctx, fmt.Sprintf("Retrieving %s balance for '%s'", known.Symbol, address))

		balance, err := getBalance(ctx, svc, cfg, known, address)
		if err != nil {
			return err
		}

		balances = append(balances, tokenBalance{token: known, balance: balance})
	}

	renderBalances(os.Stdout, balances)

	return nil
}

func getBalance(
	ctx context.Context,
	svc *token.RPCDetailsService,
	cfg *config.Config,
	known token.KnownToken,
	owner string,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.API.Timeout)
	defer cancel()

	details, err := svc.GetTokenDetails(ctx, known.Address)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve %s token details: %w", known.Symbol, err)
	}

	if details == nil {
		return "", fmt.Errorf("contract '%s' did not report decimals for %s", known.Address, known.Symbol)
	}

	balance, err := svc.GetBalance(ctx, known.Address, owner)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve %s balance: %w", known.Symbol, err)
	}

	return token.FormatUnits(balance, details.Decimals), nil
}

func renderBalances(out io.Writer, balances []tokenBalance) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(tw, "Token\tContract\tBalance")

	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.token.Symbol, display.Address(b.token.Address), b.balance)
	}

	_ = tw.Flush()
}
