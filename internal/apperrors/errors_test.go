package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{StoreTransientError(fmt.Errorf("timeout"), "batch write"), true},
		{ConfigError("missing password"), false},
		{ValidationError("bad input"), false},
		{StorePermanentError(fmt.Errorf("constraint"), "merge"), false},
		{DerivationError(fmt.Errorf("watermark race"), "implements"), false},
	}
	for _, c := range cases {
		if got := c.err.IsRetryable(); got != c.want {
			t.Errorf("%s.IsRetryable() = %v, want %v", c.err.Error(), got, c.want)
		}
	}
}

func TestIsRetryableHelper(t *testing.T) {
	if !IsRetryable(StoreTransientError(fmt.Errorf("x"), "y")) {
		t.Error("expected StoreTransient to be retryable via the package-level helper")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Error("a plain error should never be retryable")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := RepositoryError(cause, "clone failed")

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if wrapped.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", wrapped.Unwrap(), cause)
	}
}

func TestErrorIsMatchesByType(t *testing.T) {
	a := ConfigError("missing repo_path")
	b := ConfigError("missing graph_store_url")
	c := ValidationError("bad commit_limit")

	if !errors.Is(a, b) {
		t.Error("two Config errors should match via Is, regardless of message")
	}
	if errors.Is(a, c) {
		t.Error("a Config error should not match a Validation error via Is")
	}
}

func TestWithContextAndStage(t *testing.T) {
	err := ConfigError("bad value").WithContext("key", "graph_store_url").WithStage("schema")
	if err.Stage != "schema" {
		t.Errorf("Stage = %q, want %q", err.Stage, "schema")
	}
	if err.Context["key"] != "graph_store_url" {
		t.Errorf("Context[key] = %v, want %q", err.Context["key"], "graph_store_url")
	}
}

func TestGetType(t *testing.T) {
	if got := GetType(StoreTransientError(fmt.Errorf("x"), "y")); got != StoreTransient {
		t.Errorf("GetType = %v, want StoreTransient", got)
	}
	if got := GetType(errors.New("plain")); got != Internal {
		t.Errorf("GetType of a plain error = %v, want Internal", got)
	}
}
