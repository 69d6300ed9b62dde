package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// HTTPClientConfig bundles the HTTP client with its rate limit settings.
type HTTPClientConfig struct {
	Client *http.Client

	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError keeps the HTTP status of a rejected response.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: isBreakerSuccess,
	})
}

// isBreakerSuccess counts client errors caused by the caller's input (an
// unknown id, a bad query) as successes so they cannot open the circuit.
// Transport failures, 5xx, 408 and 429 still count against it.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *statusError
	if errors.As(err, &se) && se.status >= 400 && se.status < 500 {
		return se.status != http.StatusRequestTimeout && se.status != http.StatusTooManyRequests
	}
	return false
}

// redactURL drops the request URL from transport errors; it carries the API key.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request failed: %w", ue.Op, ue.Err)
	}
	return err
}

func newLimiter(cfg HTTPClientConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// getJSON issues a single GET through the rate limiter and the circuit
// breaker and decodes the body into out. It never retries; every failure is
// returned as a *weather.ProviderError.
func getJSON(
	ctx context.Context,
	op string,
	client *http.Client,
	limiter *rate.Limiter,
	cb *gobreaker.CircuitBreaker,
	endpoint string,
	out any,
) error {
	if client == nil {
		return &weather.ProviderError{Op: op, Err: errNoHTTPClient}
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return &weather.ProviderError{Op: op, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &weather.ProviderError{Op: op, Err: errors.New("invalid request url")}
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, redactURL(execErr)
		}

		// Handle rate limiting and server errors explicitly.
		if resp.StatusCode == http.StatusTooManyRequests {
			drain(resp)
			return nil, &statusError{status: resp.StatusCode, err: errRateLimited}
		}
		if resp.StatusCode >= 500 {
			drain(resp)
			return nil, &statusError{status: resp.StatusCode, err: errServerError}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			drain(resp)
			return nil, &statusError{status: resp.StatusCode, err: errUnexpected}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &weather.ProviderError{Op: op, Err: fmt.Errorf("%w: %v", weather.ErrCircuitOpen, err)}
		}
		var se *statusError
		if errors.As(err, &se) {
			return &weather.ProviderError{Op: op, Status: se.status, Err: se.err}
		}
		return &weather.ProviderError{Op: op, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return &weather.ProviderError{Op: op, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &weather.ProviderError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
