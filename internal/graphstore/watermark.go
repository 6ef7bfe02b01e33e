package graphstore

import (
	"context"
	"fmt"
	"time"
)

// Watermark is one DerivationWatermark node: the high-water mark a stage or
// derivation family has processed up to. Watermarks are monotonic — a
// caller observing watermark[key] must never advance it backwards
// (invariant 6).
type Watermark struct {
	Key       string
	LastTS    string // ISO-8601 UTC
	LastRunID string
}

// GetWatermark reads a watermark by key, returning the zero value
// (LastTS == "") if it has never been set — a stage's first bootstrap run
// treats a missing watermark as "process everything".
func GetWatermark(ctx context.Context, backend Backend, key string) (Watermark, error) {
	rows, err := backend.Query(ctx,
		"MATCH (w:DerivationWatermark {key: $key}) RETURN w.last_ts as last_ts, w.last_run_id as last_run_id",
		map[string]any{"key": key})
	if err != nil {
		return Watermark{}, fmt.Errorf("read watermark %s: %w", key, err)
	}
	if len(rows) == 0 {
		return Watermark{Key: key}, nil
	}

	w := Watermark{Key: key}
	if ts, ok := rows[0]["last_ts"].(string); ok {
		w.LastTS = ts
	}
	if runID, ok := rows[0]["last_run_id"].(string); ok {
		w.LastRunID = runID
	}
	return w, nil
}

// AdvanceWatermark MERGEs the watermark node forward, refusing to move it
// backwards in time (invariant 6: "watermarks are monotonic in time").
// Callers that need a full rerun (since_timestamp < current watermark)
// must detect that themselves before calling this — AdvanceWatermark only
// protects against a concurrent or stale caller clobbering a later value.
func AdvanceWatermark(ctx context.Context, backend Backend, key, ts, runID string) error {
	current, err := GetWatermark(ctx, backend, key)
	if err != nil {
		return err
	}
	if current.LastTS != "" && ts < current.LastTS {
		return fmt.Errorf("refusing to move watermark %s backwards: %s < %s", key, ts, current.LastTS)
	}

	_, err = backend.CreateNode(ctx, GraphNode{
		Label: "DerivationWatermark",
		Properties: map[string]any{
			"key":         key,
			"last_ts":     ts,
			"last_run_id": runID,
			"uid":         key,
		},
	})
	if err != nil {
		return fmt.Errorf("advance watermark %s: %w", key, err)
	}
	return nil
}

// Now is the canonical ISO-8601 UTC timestamp format used for watermark
// and node timestamp properties throughout the pipeline.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
