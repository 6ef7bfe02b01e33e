package graphstore

import (
	"strings"
	"testing"
)

func TestBuildMergeNode_ParameterizesAllValues(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildMergeNode("GitCommit", "uid", "abc123", map[string]any{
		"message": "fix bug",
		"ts":      "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(query, "abc123") || strings.Contains(query, "fix bug") {
		t.Errorf("query embeds a literal value instead of a parameter: %s", query)
	}
	if !strings.Contains(query, "MERGE (n:GitCommit") {
		t.Errorf("expected a MERGE on GitCommit, got: %s", query)
	}
	if len(b.Params()) != 3 {
		t.Errorf("expected 3 bound params (uid + 2 properties), got %d: %v", len(b.Params()), b.Params())
	}
}

func TestBuildMergeNode_RejectsInvalidLabel(t *testing.T) {
	b := NewCypherBuilder()
	if _, err := b.BuildMergeNode("Git Commit; DROP", "uid", "x", nil); err == nil {
		t.Fatal("expected an error for a label containing illegal characters")
	}
}

func TestBuildMergeNode_RejectsInvalidPropertyKey(t *testing.T) {
	b := NewCypherBuilder()
	_, err := b.BuildMergeNode("GitCommit", "uid", "x", map[string]any{
		"bad key; DROP TABLE": "v",
	})
	if err == nil {
		t.Fatal("expected an error for a property key containing illegal characters")
	}
}

func TestBuildMergeEdge_ParameterizesAllValues(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildMergeEdge(
		"GitCommit", "uid", "abc123",
		"File", "path", "main.go",
		"TOUCHED",
		map[string]any{"ts": "2026-01-01T00:00:00Z"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(query, "abc123") || strings.Contains(query, "main.go") {
		t.Errorf("query embeds a literal value instead of a parameter: %s", query)
	}
	if !strings.Contains(query, "MERGE (from)-[r:TOUCHED]->(to)") {
		t.Errorf("expected a MERGE on the TOUCHED relationship, got: %s", query)
	}
}

func TestBuildMergeEdge_RejectsInvalidEdgeLabel(t *testing.T) {
	b := NewCypherBuilder()
	_, err := b.BuildMergeEdge(
		"GitCommit", "uid", "abc123",
		"File", "path", "main.go",
		"TOUCHED; MATCH (n) DETACH DELETE n",
		nil,
	)
	if err == nil {
		t.Fatal("expected an error for an edge label containing illegal characters")
	}
}

func TestBuildMergeEvidenceEdge_AppliesComplementaryProbabilityInCypher(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildMergeEvidenceEdge(
		"File", "path", "a.go",
		"GitCommit", "uid", "abc123",
		"IMPLEMENTS",
		"commit_message",
		0.8,
		"2026-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "1 - (1 - r.confidence) * (1 -") {
		t.Errorf("expected the complementary-probability formula in the ON MATCH clause, got: %s", query)
	}
	if strings.Contains(query, "0.8") || strings.Contains(query, "commit_message") {
		t.Errorf("query embeds a literal value instead of a parameter: %s", query)
	}
}

func TestAddParam_AssignsSequentialNames(t *testing.T) {
	b := NewCypherBuilder()
	p0 := b.AddParam("a")
	p1 := b.AddParam("b")
	if p0 != "$p0" || p1 != "$p1" {
		t.Errorf("expected sequential placeholders $p0, $p1; got %s, %s", p0, p1)
	}
	if b.Params()["p0"] != "a" || b.Params()["p1"] != "b" {
		t.Errorf("unexpected params map: %v", b.Params())
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"File", "git_commit", "_private", "a1"}
	invalid := []string{"", "1File", "File Name", "File;DROP", "File-Name"}

	for _, s := range valid {
		if !isValidIdentifier(s) {
			t.Errorf("expected %q to be a valid identifier", s)
		}
	}
	for _, s := range invalid {
		if isValidIdentifier(s) {
			t.Errorf("expected %q to be rejected as an identifier", s)
		}
	}
}
