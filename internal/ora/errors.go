package ora

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid user input: a missing or empty gene list,
// an unknown organism or source, or an out-of-range threshold.
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError reports a failure to reach the enrichment service or a
// transient service-side failure (5xx, 429). These may be retried.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("enrichment service unavailable (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("enrichment service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError reports a request the service rejected or a response that
// could not be understood. Retrying will not help.
type ServiceError struct {
	StatusCode int
	Msg        string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("enrichment service rejected request (HTTP %d): %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("enrichment service: %s", e.Msg)
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsRetryable reports whether err is or wraps a *TransportError.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
