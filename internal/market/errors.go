package market

import "errors"

var (
	// ErrEmptyInput is returned when the raw ticker is empty or whitespace.
	// No gateway call is made.
	ErrEmptyInput = errors.New("ticker is empty")

	// ErrUpstreamUnavailable wraps gateway failures that abort an analysis
	ErrUpstreamUnavailable = errors.New("upstream market data unavailable")
)
