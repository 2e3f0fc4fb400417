package domain

import (
	"errors"
	"strconv"
)

// VendorError represents one failed exchange with the quote vendor. The
// poll loop logs it and waits for the next tick; polling never retries.
type VendorError struct {
	Op     string // Operation that failed (e.g., "request", "decode")
	Status int    // HTTP status when the response carried one, else 0
	Body   string // Bounded response body snippet on a non-200 answer
	Err    error  // Underlying error, may be nil
}

func (e *VendorError) Error() string {
	msg := "vendor " + e.Op
	if e.Status != 0 {
		msg += ": status " + strconv.Itoa(e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error naming the offending field
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoQuote is returned when the vendor has no last trade for a symbol.
	// Unknown tickers surface this way and are treated as silent no-data
	// rather than a failure.
	ErrNoQuote = errors.New("no quote data")

	// ErrSymbolRequired is returned when a quote is requested without a symbol
	ErrSymbolRequired = errors.New("symbol required")
)
