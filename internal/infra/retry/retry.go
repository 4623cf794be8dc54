// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/flashlark/larkmemo/internal/biz/domain"
)

// Options configure Do
type Options struct {
	// Retries is the number of attempts after the first one
	Retries int
	// BaseDelay is the wait before the first retry; it doubles on each further retry
	BaseDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// TextSend is the policy applied to text message sends
func TextSend() Options {
	return Options{Retries: 1, BaseDelay: 500 * time.Millisecond, Retryable: DefaultRetryable}
}

// Do runs op until it succeeds, the retry budget is spent, the error is not
// retryable, or ctx is done. Attempts are strictly sequential.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.BaseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = time.Hour
	eb.MaxElapsedTime = 0

	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op(ctx)
		if err != nil && opts.Retryable != nil && !opts.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b)
}

// DefaultRetryable retries transport failures, HTTP 429 and 5xx, and Lark
// rate-limit codes. Configuration, authentication and validation errors are final.
func DefaultRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var cfgErr *domain.ConfigurationError
	var authErr *domain.AuthenticationError
	var valErr *domain.ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &authErr) || errors.As(err, &valErr) {
		return false
	}

	var delErr *domain.DeliveryError
	if errors.As(err, &delErr) {
		if delErr.Err != nil && delErr.StatusCode == 0 {
			return isTransport(delErr.Err)
		}
		return retryableStatus(delErr.StatusCode) || domain.IsRateLimitCode(delErr.Code)
	}

	var upErr *domain.UploadError
	if errors.As(err, &upErr) {
		if upErr.Kind == domain.UploadErrorHTTP {
			return upErr.StatusCode == 0 || retryableStatus(upErr.StatusCode)
		}
		return upErr.Kind == domain.UploadErrorAPI && domain.IsRateLimitCode(upErr.Code)
	}

	return isTransport(err)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTransport(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
