package orchestrator

import (
	"github.com/jrh3k5/transfer-explorer/internal/display"
	"github.com/jrh3k5/transfer-explorer/internal/transaction"
)

// Status is the lifecycle stage of the current query.
type Status int

const (
	// StatusIdle means no address has been supplied.
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the current query.
type State struct {
	Status      Status
	Filter      transaction.Filter
	Key         Key
	Records     []transaction.Record
	Display     display.Page
	Err         error
	HasNext     bool
	HasPrevious bool
}

// Message returns the human-readable error message, or an empty string when there is no error.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}

	return s.Err.Error()
}

// State returns a snapshot of the current query.
func (o *Orchestrator) State() State {
	state := State{
		Status:      o.status,
		Filter:      o.filter,
		Key:         o.key,
		Err:         o.err,
		HasNext:     o.active && o.status == StatusSuccess && o.cursors.HasNextPage(),
		HasPrevious: o.active && o.cursors.HasPreviousPage(),
	}

	if o.status == StatusSuccess {
		state.Records = o.records
		state.Display = display.Format(o.records, o.key.Direction)
	}

	return state
}
