package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Fetch error categories used for logging and metrics labels.
const (
	CategoryTimeout     = "timeout"
	CategoryConnection  = "connection"
	CategoryForbidden   = "forbidden"
	CategoryNotFound    = "not_found"
	CategoryRateLimited = "rate_limited"
	CategoryOther       = "other"
)

// FetchError wraps a listing-page request failure with its category.
type FetchError struct {
	Category string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func classifyFetchError(err error, statusCode int) *FetchError {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Category: CategoryTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Category: CategoryTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &FetchError{Category: CategoryConnection, Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return &FetchError{Category: CategoryForbidden, Err: wrapped}
		case http.StatusNotFound:
			return &FetchError{Category: CategoryNotFound, Err: wrapped}
		case http.StatusTooManyRequests:
			return &FetchError{Category: CategoryRateLimited, Err: wrapped}
		}
		return &FetchError{Category: CategoryOther, Err: wrapped}
	}

	return &FetchError{Category: CategoryOther, Err: err}
}
