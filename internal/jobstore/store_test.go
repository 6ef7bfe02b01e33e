package jobstore

import (
	"context"
	"testing"

	"github.com/rohankatakam/devgraph/internal/config"
)

func TestNew_DefaultsToNoop(t *testing.T) {
	for _, backend := range []string{"", "none"} {
		store, err := New(config.JobStoreConfig{Backend: backend}, nil)
		if err != nil {
			t.Fatalf("backend %q: unexpected error: %v", backend, err)
		}
		if _, ok := store.(NoopStore); !ok {
			t.Errorf("backend %q: expected NoopStore, got %T", backend, store)
		}
	}
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	if _, err := New(config.JobStoreConfig{Backend: "dynamodb"}, nil); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestNoopStore_DiscardsEverything(t *testing.T) {
	var s Store = NoopStore{}
	ctx := context.Background()

	if err := s.SaveRun(ctx, &Run{ID: "run-1"}); err != nil {
		t.Fatalf("SaveRun: unexpected error: %v", err)
	}
	if err := s.SaveRunHistory(ctx, &Run{ID: "run-1"}); err != nil {
		t.Fatalf("SaveRunHistory: unexpected error: %v", err)
	}
	if _, err := s.GetRun(ctx, "run-1"); err != ErrNotFound {
		t.Errorf("GetRun: expected ErrNotFound, got %v", err)
	}
	runs, err := s.ListRuns(ctx, "/repo", 10)
	if err != nil {
		t.Fatalf("ListRuns: unexpected error: %v", err)
	}
	if runs != nil {
		t.Errorf("ListRuns: expected nil, got %v", runs)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
}
