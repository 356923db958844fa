package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQuoteUnavailable is returned (wrapped) when a quote provider cannot price a path.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// QuoteError describes a failed quote for a specific path.
type QuoteError struct {
	Path   []Token // Path that was quoted
	Reason string  // Short machine-friendly reason (rpc_error, bad_length, breaker_open, ...)
	Err    error   // Underlying error if available
}

func (e *QuoteError) Error() string {
	path := strings.Join(ToStrings(e.Path), "→")
	if e.Err != nil {
		return fmt.Sprintf("quote unavailable for %s: %s: %v", path, e.Reason, e.Err)
	}

	return fmt.Sprintf("quote unavailable for %s: %s", path, e.Reason)
}

// Is makes every QuoteError match ErrQuoteUnavailable.
func (e *QuoteError) Is(target error) bool {
	return target == ErrQuoteUnavailable
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

// NewQuoteError builds a QuoteError with a copy of the path.
func NewQuoteError(path []Token, reason string, err error) *QuoteError {
	p := make([]Token, len(path))
	copy(p, path)
	return &QuoteError{Path: p, Reason: reason, Err: err}
}

// ConfigError reports an invalid configuration value detected at startup.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Message)
}

// Quote failure reasons
const (
	ReasonRPCError    = "rpc_error"
	ReasonBadLength   = "bad_length"
	ReasonBreakerOpen = "breaker_open"
	ReasonTimeout     = "timeout"
	ReasonBadPath     = "bad_path"
	ReasonDecode      = "decode_error"
	ReasonReverted    = "reverted"
	ReasonUnavailable = "unavailable" // provider reported no quote without a more specific reason
	ReasonCanceled    = "canceled"    // scan stopped before the path was quoted
)
