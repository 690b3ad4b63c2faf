package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// FetchError represents a failed data source call for one category.
// Category is empty for a fetch of all tokens.
type FetchError struct {
	Category  Category
	Err       error
	Retriable bool
}

func (e *FetchError) Error() string {
	scope := string(e.Category)
	if scope == "" {
		scope = "all"
	}
	return "fetch " + scope + ": " + e.Err.Error()
}

func (e *FetchError) IsRetriable() bool {
	return e.Retriable
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a retriable fetch error
func NewFetchError(category Category, err error) *FetchError {
	return &FetchError{Category: category, Err: err, Retriable: true}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnknownCategory is returned when a category string is not one of the fixed three.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownToken is returned when an operation needs a token that is not loaded.
	ErrUnknownToken = errors.New("unknown token")

	// ErrInvalidAmount is returned by the buy flow for non-numeric or non-positive input.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSourceUnavailable is the simulated data source failure. It's retriable.
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrStaleFetch is returned when a newer fetch for the same category was issued
	// before this one resolved; its result is discarded.
	ErrStaleFetch = errors.New("stale fetch discarded")
)
