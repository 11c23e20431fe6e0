package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTrade marks a raw record that is missing or has an
	// unparseable required field.
	ErrMalformedTrade = errors.New("malformed trade")

	// ErrCursorStalled is returned when a page adds new trades without
	// moving the pagination cursor further into the past.
	ErrCursorStalled = errors.New("pagination cursor did not advance")

	// ErrPageLimit is returned when the configured page cap is exceeded.
	ErrPageLimit = errors.New("page limit exceeded")
)

// MalformedTradeError names the offending trade and field.
type MalformedTradeError struct {
	ID     string
	Field  string
	Reason string
	Err    error
}

func (e *MalformedTradeError) Error() string {
	msg := fmt.Sprintf("malformed trade %q: %s %s", e.ID, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTradeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedTrade}
	}
	return []error{ErrMalformedTrade, e.Err}
}

func malformed(id, field, reason string, err error) error {
	return &MalformedTradeError{ID: id, Field: field, Reason: reason, Err: err}
}
