package query

import (
	"context"
	"strings"
	"testing"
)

func TestValidateSchema_ValidWhenConstraintsExist(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{{"count": int64(5)}}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateSchema(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Valid {
		t.Error("expected a valid report when constraints exist")
	}
	if len(report.Violations) != 0 {
		t.Errorf("expected no violations, got %v", report.Violations)
	}
}

func TestValidateSchema_InvalidWhenNoConstraints(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{{"count": int64(0)}}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateSchema(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Valid {
		t.Error("expected an invalid report when no constraints exist")
	}
	if len(report.Violations) != 1 || report.Violations[0].Check != "schema_bootstrapped" {
		t.Errorf("unexpected violations: %v", report.Violations)
	}
}

func TestValidateTemporal_ReportsViolationsWithNonZeroCounts(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"check": "missing_temporal_timestamp:TOUCHED", "count": int64(3)},
				{"check": "missing_temporal_timestamp:IMPLEMENTS", "count": int64(0)},
				{"check": "unexpected_structural_timestamp:CONTAINS", "count": int64(0)},
			}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateTemporal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Valid {
		t.Error("expected an invalid report when a violation count is non-zero")
	}
	if len(report.Violations) != 1 || report.Violations[0].Check != "missing_temporal_timestamp:TOUCHED" {
		t.Errorf("unexpected violations: %v", report.Violations)
	}
	if report.Violations[0].Count != 3 {
		t.Errorf("Count = %d, want 3", report.Violations[0].Count)
	}
}

func TestValidateTemporal_ValidWhenAllCountsZero(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"check": "missing_temporal_timestamp:TOUCHED", "count": int64(0)},
			}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateTemporal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Valid {
		t.Errorf("expected a valid report, got violations: %v", report.Violations)
	}
}

func TestValidateRelationships_RequirementsWithoutPartOfIsInformationalOnly(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"check": "invalid_evidence:IMPLEMENTS", "count": int64(0)},
				{"check": "requirements_without_part_of", "count": int64(2)},
			}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateRelationships(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Valid {
		t.Error("requirements_without_part_of should not flip Valid to false")
	}
	if len(report.Violations) != 1 || report.Violations[0].Check != "requirements_without_part_of" {
		t.Errorf("unexpected violations: %v", report.Violations)
	}
}

func TestValidateRelationships_InvalidEvidenceFailsValidation(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"check": "invalid_evidence:IMPLEMENTS", "count": int64(1)},
			}, nil
		},
	}
	l := newTestLayer(backend)

	report, err := l.ValidateRelationships(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Valid {
		t.Error("expected an invalid report when invalid_evidence count is non-zero")
	}
}

func TestJoinUnionAll_JoinsBranchesWithUnionAll(t *testing.T) {
	query := joinUnionAll([]string{"A", "B", "C"})
	if !strings.Contains(query, "A\nUNION ALL\nB\nUNION ALL\nC") {
		t.Errorf("unexpected joined query: %s", query)
	}
}
