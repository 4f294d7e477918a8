// Package orchestrator drives transfer queries through their request lifecycle:
// it builds payloads for the active filter and page, issues them without
// blocking the caller, and applies responses only while they still belong to
// the query the user is looking at.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	"github.com/jrh3k5/transfer-explorer/internal/pagination"
	"github.com/jrh3k5/transfer-explorer/internal/query"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

// DefaultTimeout bounds a single page request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// completionBuffer is how many finished requests can wait for a reader.
const completionBuffer = 16

// Fetcher retrieves one page of transfers for the given payload.
type Fetcher interface {
	FetchTransfers(ctx context.Context, address string, payload query.Payload) (*transaction.Page, error)
}

// Key identifies the request a response belongs to.
type Key struct {
	Address    string // lower-cased
	FromBlock  string
	UntilBlock string
	Direction  transaction.Direction
	Page       int
}

// Completion is the outcome of one issued request, tagged with the key it was built for.
type Completion struct {
	Key  Key
	Page *transaction.Page
	Err  error
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds every request. A non-positive timeout disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

// Orchestrator owns the pagination state of one browsing session.
// All methods must be called from a single goroutine; requests run on their own
// goroutines and report back through Completions.
type Orchestrator struct {
	fetcher     Fetcher
	builder     *query.Builder
	cursors     *pagination.Cursors
	timeout     time.Duration
	completions chan Completion

	filter  transaction.Filter
	active  bool
	status  Status
	key     Key
	records []transaction.Record
	err     error
}

// New returns an idle Orchestrator.
func New(fetcher Fetcher, builder *query.Builder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:     fetcher,
		builder:     builder,
		cursors:     pagination.New(),
		timeout:     DefaultTimeout,
		completions: make(chan Completion, completionBuffer),
		filter:      transaction.Filter{Direction: transaction.DirectionOut},
		status:      StatusIdle,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// SetFilter makes the given filter active. Invalid filters are rejected with a
// *transaction.ValidationError and leave the current state untouched.
// Pagination restarts whenever the address, block range or direction changes.
func (o *Orchestrator) SetFilter(ctx context.Context, filter transaction.Filter) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	if !o.active || !o.filter.SameQuery(filter) {
		o.cursors.Reset()
	}

	wasActive := o.active
	o.filter = filter
	o.active = true

	if !wasActive || o.currentKey() != o.key {
		o.dispatch(ctx)
	}

	return nil
}

// SetDirection switches the active direction, restarting pagination from the first page.
// Without an address the direction is remembered for the next filter.
func (o *Orchestrator) SetDirection(ctx context.Context, direction transaction.Direction) error {
	parsed, err := transaction.ParseDirection(string(direction))
	if err != nil {
		return err
	}

	filter := o.filter
	filter.Direction = parsed

	if o.active {
		return o.SetFilter(ctx, filter)
	}

	o.filter = filter

	return nil
}

// Next moves to the following page if the current page reported one. It reports whether a request was issued.
func (o *Orchestrator) Next(ctx context.Context) bool {
	if !o.active || !o.cursors.Advance() {
		return false
	}

	o.dispatch(ctx)

	return true
}

// Previous moves to the preceding page. It reports whether a request was issued.
func (o *Orchestrator) Previous(ctx context.Context) bool {
	if !o.active || !o.cursors.Retreat() {
		return false
	}

	o.dispatch(ctx)

	return true
}

// Retry reissues the failed request for the current key. It reports whether a request was issued.
func (o *Orchestrator) Retry(ctx context.Context) bool {
	if o.status != StatusError {
		return false
	}

	o.dispatch(ctx)

	return true
}

// Clear drops the active address and returns to Idle.
func (o *Orchestrator) Clear() {
	o.active = false
	o.filter.Address = ""
	o.cursors.Reset()
	o.status = StatusIdle
	o.key = Key{}
	o.records = nil
	o.err = nil
}

// Completions delivers the outcome of every issued request, including requests
// whose context was canceled. Event loops that select over other inputs receive
// from it and pass the value to Apply.
func (o *Orchestrator) Completions() <-chan Completion {
	return o.completions
}

// Apply applies a completion if it belongs to the current key and reports whether it did.
// Completions for superseded keys are discarded without touching any state.
func (o *Orchestrator) Apply(c Completion) bool {
	if !o.active || c.Key != o.key {
		slog.Debug(
			"Discarding stale response",
			"address", c.Key.Address,
			"direction", c.Key.Direction.String(),
			"page", c.Key.Page,
		)

		return false
	}

	if c.Err == nil && c.Page == nil {
		c.Err = &ctshttp.ParseError{Err: errors.New("response contained no transfers")}
	}

	if c.Err != nil {
		o.status = StatusError
		o.err = c.Err
		o.records = nil

		return true
	}

	o.cursors.RecordResponse(c.Key.Page, c.Page.NextCursor())
	o.status = StatusSuccess
	o.records = c.Page.Transfers
	o.err = nil

	return true
}

// Await blocks until the current request settles, applying every completion
// received in the meantime. It returns immediately when nothing is loading.
func (o *Orchestrator) Await(ctx context.Context) (State, error) {
	for o.status == StatusLoading {
		select {
		case c := <-o.completions:
			o.Apply(c)
		case <-ctx.Done():
			return o.State(), fmt.Errorf("stopped waiting for transfers: %w", ctx.Err())
		}
	}

	return o.State(), nil
}

// Filter returns the active filter.
func (o *Orchestrator) Filter() transaction.Filter {
	return o.filter
}

func (o *Orchestrator) currentKey() Key {
	return Key{
		Address:    strings.ToLower(o.filter.Address),
		FromBlock:  o.filter.FromBlock,
		UntilBlock: o.filter.UntilBlock,
		Direction:  o.filter.Direction,
		Page:       o.cursors.CurrentPage(),
	}
}

func (o *Orchestrator) dispatch(ctx context.Context) {
	key := o.currentKey()
	payload := o.builder.Build(o.filter, o.cursors.CursorForCurrentPage())

	o.key = key
	o.status = StatusLoading
	o.records = nil
	o.err = nil

	slog.DebugContext(
		ctx,
		fmt.Sprintf("Requesting page %d of transfers %s '%s'", key.Page, key.Direction.Preposition(), o.filter.Address),
		"fromBlock", payload.FromBlock,
		"toBlock", payload.ToBlock,
	)

	go o.fetch(ctx, key, o.filter.Address, payload)
}

func (o *Orchestrator) fetch(ctx context.Context, key Key, address string, payload query.Payload) {
	fetchCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	page, err := o.fetcher.FetchTransfers(fetchCtx, address, payload)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		err = fmt.Errorf("request canceled: %w", err)
	case errors.Is(fetchCtx.Err(), context.DeadlineExceeded):
		err = fmt.Errorf("request timed out after %s: %w", o.timeout, err)
	}

	// always delivered, so a canceled request still settles into the error state
	o.completions <- Completion{Key: key, Page: page, Err: err}
}
