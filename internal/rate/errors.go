package rate

import "errors"

var (
	// ErrRateLimited is returned when an identifier exceeds its attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrUnavailable is returned when the backing Redis store cannot be reached.
	ErrUnavailable = errors.New("rate limiter backend unavailable")
)
