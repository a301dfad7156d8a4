package usecase

import "errors"

var (
	// ErrInvalidInput indicates a malformed request from the caller
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInsight indicates a deletion attempt against a record that is
	// not an insight. Only insight records may be deleted.
	ErrNotInsight = errors.New("record is not an insight")

	// ErrTurnTimeout indicates the whole chat turn exceeded its deadline,
	// including all provider fallbacks.
	ErrTurnTimeout = errors.New("chat turn timed out")
)
