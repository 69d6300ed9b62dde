package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidInput is returned for empty or malformed caller arguments.
	// It is never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvider matches every *ProviderError via errors.Is.
	ErrProvider = errors.New("weather provider error")

	// ErrPermission is returned when the current position cannot be acquired,
	// either because detection is denied or unavailable.
	ErrPermission = errors.New("location permission denied or unavailable")

	// ErrCircuitOpen is wrapped by provider errors raised while the circuit
	// breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// ProviderError describes a failed call to the weather provider: transport
// failure, non-2xx status or an undecodable body.
type ProviderError struct {
	Op     string
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: provider returned status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProvider) match any ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// InvalidInput builds an ErrInvalidInput with context.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether a failed fetch may be attempted again.
// Invalid input, permission errors, an open circuit and client errors other
// than timeouts and rate limiting are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrPermission) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Status >= 400 && pe.Status < 500 {
		return pe.Status == http.StatusRequestTimeout || pe.Status == http.StatusTooManyRequests
	}
	return true
}
