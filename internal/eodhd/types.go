// Package eodhd provides a client for the EODHD (End of Day Historical Data) API,
// and a market gateway built on it.
package eodhd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// APIError represents an error from the EODHD API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("EODHD rate limit exceeded, retry after %v", e.RetryAfter)
}

// Amount is a number EODHD may send as a JSON number, a numeric string,
// null, or a placeholder such as "NA". Non-numeric values decode as absent.
type Amount struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Value = ParseAmount(raw)
	return nil
}

// Float returns the value, nil when absent
func (a Amount) Float() *float64 {
	return a.Value
}

// ParseAmount converts a decoded JSON value to a number, nil when absent or non-numeric
func ParseAmount(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil
		}
		f := d.InexactFloat64()
		return &f
	default:
		return nil
	}
}
