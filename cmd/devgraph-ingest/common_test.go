package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rohankatakam/devgraph/internal/apperrors"
)

func TestExitCodeForErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"cancelled context", context.Canceled, 130},
		{"config error", apperrors.ConfigError("missing graph_store_password"), 2},
		{"validation error", apperrors.ValidationError("bad commit_limit"), 2},
		{"repository error", apperrors.RepositoryError(fmt.Errorf("x"), "clone failed"), 3},
		{"filesystem error", apperrors.FileSystemError(fmt.Errorf("x"), "walk failed"), 3},
		{"store transient", apperrors.StoreTransientError(fmt.Errorf("x"), "cannot reach store"), 4},
		{"store permanent", apperrors.StorePermanentError(fmt.Errorf("x"), "merge failed"), 4},
		{"cancellation error", apperrors.CancellationError("aborted by user"), 130},
		{"derivation error", apperrors.DerivationError(fmt.Errorf("x"), "implements"), 5},
		{"internal error", apperrors.InternalError("unexpected"), 5},
		{"plain error", errors.New("boom"), 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := exitCodeForErr(c.err); got != c.want {
				t.Errorf("exitCodeForErr(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}

func TestExitCodeForErr_WrappedAppError(t *testing.T) {
	base := apperrors.StoreTransientError(fmt.Errorf("timeout"), "write failed")
	wrapped := fmt.Errorf("retry exhausted: %w", base)

	if got := exitCodeForErr(wrapped); got != 4 {
		t.Errorf("exitCodeForErr(wrapped) = %d, want 4", got)
	}
}
