package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/jrh3k5/transfer-explorer/internal/config"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	ctsslog "github.com/jrh3k5/transfer-explorer/internal/logging/slog"
)

const usage = `usage: transfer-explorer [browse|balances] [--config=<file>] [flags]

browse:
  --address=<0x...>        address to browse (prompted for when omitted)
  --from=<block|latest>    first block, default 0
  --until=<block|latest>   last block, default latest
  --direction=<in|out>     default out
  --csv-out=<file>         where the export action writes

balances:
  --address=<0x...>        holder of the tokens
  --token=<symbol>         limit to one of USDT, USDC, DAI`

var errUserCanceled = errors.New("user canceled operation")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, args := splitCommand(os.Args[1:])
	if command == "help" || slices.Contains(args, "--help") {
		fmt.Println(usage)

		return
	}

	cfg, err := config.Load(argValue(args, "--config="))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	doer := ctshttp.NewRateLimitedDoer(&http.Client{}, cfg.API.RateLimit.RPS, cfg.API.RateLimit.Burst)

	switch command {
	case "browse":
		err = runBrowse(ctx, cfg, doer, args)
	case "balances":
		err = runBalances(ctx, cfg, doer, args)
	default:
		err = fmt.Errorf("unknown command '%s'\n%s", command, usage)
	}

	if err != nil && !errors.Is(err, errUserCanceled) {
		slog.ErrorContext(ctx, fmt.Sprintf("%s failed", command), "error", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

// newLogger builds the logger at the configured level.
func newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}

	return slog.New(ctsslog.NewHandler(out, &slog.HandlerOptions{Level: level})), nil
}

// splitCommand separates the optional leading command from its flags. browse is the default.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		return args[0], args[1:]
	}

	return "browse", args
}

// argValue returns the value of the first "--name=value" argument with the given prefix.
func argValue(args []string, prefix string) string {
	for _, arg := range args {
		value, hasPrefix := strings.CutPrefix(arg, prefix)
		if hasPrefix {
			return value
		}
	}

	return ""
}
