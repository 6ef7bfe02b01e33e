package deriver

import (
	"context"
	"fmt"
)

// DeriveRelatesTo runs the RELATES_TO evidence source (§4.7 family 5): a
// chunk that MENTIONS_LIBRARY L, paired with a file that USES_LIBRARY L,
// implies the chunk RELATES_TO that file. MENTIONS_LIBRARY is itself
// derived evidence, so its last_seen_ts drives incrementality here.
func (d *Deriver) DeriveRelatesTo(ctx context.Context) (int, error) {
	const key = "relates_to:shared_library"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (ch:Chunk)-[ml:MENTIONS_LIBRARY]->(l:Library)<-[:USES_LIBRARY]-(f:File)
		WHERE ml.last_seen_ts > $since
		RETURN ch.id AS chunkID, f.path AS path, ml.last_seen_ts AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query shared libraries for relates_to: %w", err)
	}

	results := make([]familyResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, familyResult{
			FromRef: "Chunk:" + asString(row["chunkID"]), ToRef: "File:" + asString(row["path"]),
			Source: "shared-library", Confidence: ConfRelatesToLibrary, Timestamp: asString(row["ts"]),
		})
	}
	return d.runFamily(ctx, key, "RELATES_TO", results)
}
