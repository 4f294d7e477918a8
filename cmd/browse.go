package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jrh3k5/transfer-explorer/internal/alchemy"
	"github.com/jrh3k5/transfer-explorer/internal/client"
	"github.com/jrh3k5/transfer-explorer/internal/config"
	"github.com/jrh3k5/transfer-explorer/internal/display"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/orchestrator"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
	"github.com/manifoldco/promptui"
)

type browseAction int

const (
	actionNext browseAction = iota
	actionPrevious
	actionFlip
	actionRetry
	actionExport
	actionRange
	actionAddress
	actionQuit
)

type browseChoice struct {
	label  string
	action browseAction
}

func runBrowse(ctx context.Context, cfg *config.Config, doer ctshttp.Doer, args []string) error {
	filter, err := filterFromArgs(args)
	if err != nil {
		return err
	}

	if filter.Address == "" {
		filter.Address, err = promptValue("Address", "", validateAddress)
		if err != nil {
			return err
		}
	}

	o := orchestrator.New(
		newFetcher(cfg, doer),
		query.NewBuilder(cfg.API.PageSize),
		orchestrator.WithTimeout(cfg.API.Timeout),
	)

	if err := o.SetFilter(ctx, filter); err != nil {
		return fmt.Errorf("failed to start browsing: %w", err)
	}

	for {
		state, err := o.Await(ctx)
		if err != nil {
			return err
		}

		renderState(os.Stdout, state)

		action, err := promptAction(state)
		if err != nil {
			return err
		}

		switch action {
		case actionNext:
			o.Next(ctx)
		case actionPrevious:
			o.Previous(ctx)
		case actionFlip:
			if err := o.SetDirection(ctx, state.Filter.Direction.Opposite()); err != nil {
				return fmt.Errorf("failed to flip direction: %w", err)
			}
		case actionRetry:
			o.Retry(ctx)
		case actionExport:
			path := exportPath(args, state)
			if err := exportCSV(path, state.Display); err != nil {
				slog.ErrorContext(ctx, "Failed to export transfers", "error", err)
			} else {
				slog.InfoContext(ctx, fmt.Sprintf("Wrote %d transfers to '%s'", len(state.Display.Rows), path))
			}
		case actionRange:
			if err := changeRange(ctx, o); err != nil {
				return err
			}
		case actionAddress:
			address, err := promptValue("Address", o.Filter().Address, validateAddress)
			if err != nil {
				return err
			}

			next := o.Filter()
			next.Address = address
			if err := o.SetFilter(ctx, next); err != nil {
				return fmt.Errorf("failed to change address: %w", err)
			}
		case actionQuit:
			return nil
		}
	}
}

func filterFromArgs(args []string) (transaction.Filter, error) {
	filter := transaction.Filter{
		Address:    argValue(args, "--address="),
		FromBlock:  argValue(args, "--from="),
		UntilBlock: argValue(args, "--until="),
	}

	if rawDirection := argValue(args, "--direction="); rawDirection != "" {
		direction, err := transaction.ParseDirection(rawDirection)
		if err != nil {
			return transaction.Filter{}, err
		}
		filter.Direction = direction
	}

	return filter.WithDefaults(), nil
}

// newFetcher queries the configured indexing API, or Alchemy directly when none is set.
func newFetcher(cfg *config.Config, doer ctshttp.Doer) orchestrator.Fetcher {
	if cfg.API.BaseURL != "" {
		slog.Debug(fmt.Sprintf("Fetching transfers from indexing API at '%s'", cfg.API.BaseURL))

		return client.NewClient(doer, cfg.API.BaseURL)
	}

	if cfg.Alchemy.APIKey == "" {
		slog.Warn("Neither api.base_url nor an Alchemy API key is configured; requests will likely be rejected")
	}

	return alchemy.NewClient(doer, cfg.AlchemyEndpoint())
}

func browseChoices(state orchestrator.State) []browseChoice {
	var choices []browseChoice

	if state.HasNext {
		choices = append(choices, browseChoice{label: "Next page", action: actionNext})
	}

	if state.HasPrevious {
		choices = append(choices, browseChoice{label: "Previous page", action: actionPrevious})
	}

	if state.Status == orchestrator.StatusError {
		choices = append(choices, browseChoice{label: "Retry", action: actionRetry})
	}

	if state.Status == orchestrator.StatusSuccess && len(state.Display.Rows) > 0 {
		choices = append(choices, browseChoice{label: "Export page to CSV", action: actionExport})
	}

	flipLabel := fmt.Sprintf("Show transfers %s this address", state.Filter.Direction.Opposite().Preposition())
	choices = append(choices,
		browseChoice{label: flipLabel, action: actionFlip},
		browseChoice{label: "Change block range", action: actionRange},
		browseChoice{label: "Change address", action: actionAddress},
		browseChoice{label: "Quit", action: actionQuit},
	)

	return choices
}

func promptAction(state orchestrator.State) (browseAction, error) {
	choices := browseChoices(state)
	labels := make([]string, len(choices))
	for i, choice := range choices {
		labels[i] = choice.label
	}

	selector := promptui.Select{
		Label: "What next?",
		Items: labels,
		Size:  len(labels),
	}

	selIdx, _, err := selector.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return actionQuit, errUserCanceled
		}

		return actionQuit, fmt.Errorf("action prompt failed: %w", err)
	}

	return choices[selIdx].action, nil
}

func changeRange(ctx context.Context, o *orchestrator.Orchestrator) error {
	next := o.Filter()

	fromBlock, err := promptValue("From block", next.FromBlock, validateBlock)
	if err != nil {
		return err
	}

	untilBlock, err := promptValue("Until block", next.UntilBlock, validateBlock)
	if err != nil {
		return err
	}

	next.FromBlock = fromBlock
	next.UntilBlock = untilBlock

	if err := o.SetFilter(ctx, next); err != nil {
		return fmt.Errorf("failed to change block range: %w", err)
	}

	return nil
}

func promptValue(label string, defaultValue string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}

	value, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", errUserCanceled
		}

		return "", fmt.Errorf("%s prompt failed: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(value), nil
}

func validateAddress(input string) error {
	if !transaction.IsAddress(strings.TrimSpace(input)) {
		return errors.New("address must be 0x followed by 40 hex digits")
	}

	return nil
}

func validateBlock(input string) error {
	if !transaction.IsBlockToken(strings.TrimSpace(input)) {
		return errors.New("block must be 'latest' or a decimal number")
	}

	return nil
}

func exportPath(args []string, state orchestrator.State) string {
	if path := argValue(args, "--csv-out="); path != "" {
		return path
	}

	return fmt.Sprintf("transfers-%s-%s-page%d.csv", state.Key.Address, state.Key.Direction, state.Key.Page+1)
}

func exportCSV(path string, page display.Page) error {
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := display.WriteCSV(file, page); err != nil {
		return err
	}

	return nil
}
