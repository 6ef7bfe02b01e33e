package temporal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rohankatakam/devgraph/internal/gitlog"
)

// TestWriteCommit_RenameEmitsRefactoredToEdgeWithSourcesList exercises
// spec.md §8.3's seed scenario 3: a rename commit must produce
// (File{old.py})-[REFACTORED_TO{timestamp, sources:["git-rename"]}]->(File{new.py}),
// with sources as a list (matching how MergeEvidence accumulates sources on
// every other relationship) rather than a scalar "source" property.
func TestWriteCommit_RenameEmitsRefactoredToEdgeWithSourcesList(t *testing.T) {
	backend := &fakeBackend{}
	engine := NewEngine(backend, 1, 0, nil)

	commit := gitlog.Commit{
		Hash:      "abc123",
		Author:    "jane",
		Email:     "jane@example.com",
		Timestamp: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Message:   "rename old.py to new.py",
		Changes: []gitlog.FileChange{
			{Path: "new.py", OldPath: "old.py", Status: "R"},
		},
	}

	if err := engine.writeCommit(context.Background(), commit, "main"); err != nil {
		t.Fatalf("writeCommit: %v", err)
	}

	var found *map[string]any
	for _, q := range backend.BatchedQueries {
		if strings.Contains(q.Query, "REFACTORED_TO") {
			found = &q.Params
			break
		}
	}
	if found == nil {
		t.Fatal("expected a REFACTORED_TO query to be batched")
	}

	params := *found
	var sourcesParam string
	for key, value := range params {
		if sources, ok := value.([]string); ok {
			sourcesParam = key
			if len(sources) != 1 || sources[0] != "git-rename" {
				t.Errorf("sources = %v, want [\"git-rename\"]", sources)
			}
		}
	}
	if sourcesParam == "" {
		t.Error("expected a []string sources parameter on the REFACTORED_TO edge, found none")
	}

	for _, value := range params {
		if scalar, ok := value.(string); ok && scalar == "git-rename" {
			t.Error("found a scalar \"git-rename\" param; sources must be a list, not a scalar source property")
		}
	}
}

func TestWriteCommit_NonRenameEmitsNoRefactoredToEdge(t *testing.T) {
	backend := &fakeBackend{}
	engine := NewEngine(backend, 1, 0, nil)

	commit := gitlog.Commit{
		Hash:      "def456",
		Timestamp: time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC),
		Changes: []gitlog.FileChange{
			{Path: "main.go", Status: "M"},
		},
	}

	if err := engine.writeCommit(context.Background(), commit, "main"); err != nil {
		t.Fatalf("writeCommit: %v", err)
	}

	for _, q := range backend.BatchedQueries {
		if strings.Contains(q.Query, "REFACTORED_TO") {
			t.Error("expected no REFACTORED_TO query for a non-rename change")
		}
	}
}
