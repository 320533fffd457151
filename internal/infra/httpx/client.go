package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
)

const (
	maxBodyBytes  = 4 << 20
	maxErrorBytes = 4 << 10
)

// ErrCircuitOpen is returned while a provider's breaker refuses calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Config tunes outbound calls to data providers and the LLM.
type Config struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMax time.Duration
	Breaker      BreakerConfig
}

// BreakerConfig mirrors gobreaker.Settings.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// StatusError is a non-2xx response with a capped body excerpt.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// Temporary reports whether the status is worth counting against the breaker.
func (e *StatusError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// NewClient returns a standard client that retries transport errors, 429 and
// 5xx responses with backoff. Retries never outlive the request context.
func NewClient(cfg Config, logger *slog.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.CheckRetry = stopOnCancel(retryablehttp.ErrorPropagatedRetryPolicy)
	if logger != nil {
		retryClient.Logger = logger.With("component", "httpx.client")
	} else {
		retryClient.Logger = nil
	}

	client := retryClient.StandardClient()
	client.Timeout = cfg.Timeout
	return client
}

func stopOnCancel(policy retryablehttp.CheckRetry) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return policy(ctx, resp, err)
	}
}

// NewBreaker builds a named circuit breaker. Client errors such as 404 do not
// count as failures.
func NewBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 5
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Temporary()
			}
			return err == nil
		},
	})
}

// Do executes req through the breaker and returns the response body. Non-2xx
// responses become *StatusError.
func Do(client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) ([]byte, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
			return nil, &StatusError{Status: resp.StatusCode, Body: string(payload)}
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, cb.Name())
		}
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, errors.New("unexpected result type from circuit breaker")
	}
	return body, nil
}
