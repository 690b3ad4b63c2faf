package domain

import (
	"errors"
	"testing"
)

func TestFetchError(t *testing.T) {
	baseErr := errors.New("timeout")

	t.Run("category scope", func(t *testing.T) {
		err := NewFetchError(CategoryMigrated, baseErr)

		if !err.IsRetriable() {
			t.Error("Expected error to be retriable")
		}
		if err.Error() != "fetch migrated: timeout" {
			t.Errorf("Error message = %q, want %q", err.Error(), "fetch migrated: timeout")
		}
		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("all scope", func(t *testing.T) {
		err := NewFetchError("", baseErr)
		if err.Error() != "fetch all: timeout" {
			t.Errorf("Error message = %q", err.Error())
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		retriable := NewFetchError(CategoryNewPairs, baseErr)
		fatal := &FetchError{Category: CategoryNewPairs, Err: baseErr}
		plain := errors.New("plain error")

		if !IsRetriable(retriable) {
			t.Error("IsRetriable should return true for retriable error")
		}
		if IsRetriable(fatal) {
			t.Error("IsRetriable should return false for fatal error")
		}
		if IsRetriable(plain) {
			t.Error("IsRetriable should return false for plain error")
		}
	})
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("must be positive")
	err := &ConfigError{Field: "feed.fine_interval_ms", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [feed.fine_interval_ms]: must be positive"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}
