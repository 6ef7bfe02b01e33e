package deriver

import (
	"context"
	"fmt"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// mentionTarget describes one entity kind the MENTIONS_* family searches
// chunk content for: its node label, the query that yields candidate
// entities (each row exposing "key" and "name"), and the watermark/edge
// labels to use.
type mentionTarget struct {
	watermarkKey string
	edgeLabel    string
	entityQuery  string
}

var mentionTargets = []mentionTarget{
	{
		// Symbol is a structural node with no natural event timestamp, so
		// this target reprocesses every symbol each run rather than
		// filtering by $since; re-deriving an already-known mention is a
		// harmless no-op under MergeEvidence's idempotent composition.
		watermarkKey: "mentions:symbol",
		edgeLabel:    "MENTIONS_SYMBOL",
		entityQuery:  `MATCH (s:Symbol) RETURN s.uid AS key, s.name AS name`,
	},
	{
		watermarkKey: "mentions:file",
		edgeLabel:    "MENTIONS_FILE",
		entityQuery:  `MATCH (f:File) WHERE coalesce(f.last_modified_ts, '') > $since RETURN f.path AS key, f.path AS name`,
	},
	{
		watermarkKey: "mentions:commit",
		edgeLabel:    "MENTIONS_COMMIT",
		entityQuery:  `MATCH (c:GitCommit) WHERE c.timestamp > $since RETURN c.hash AS key, c.hash AS name`,
	},
	{
		watermarkKey: "mentions:library",
		edgeLabel:    "MENTIONS_LIBRARY",
		entityQuery:  `MATCH (l:Library) RETURN l.name AS key, l.name AS name`,
	},
}

// DeriveMentions runs every MENTIONS_* family (§4.7 family 4): for each
// entity, it searches the chunk fulltext index for exact and partial
// matches of the entity's name/path/hash and emits an edge from the
// matching chunk at the corresponding confidence.
func (d *Deriver) DeriveMentions(ctx context.Context) (int, error) {
	total := 0
	for _, target := range mentionTargets {
		n, err := d.deriveMentionTarget(ctx, target)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (d *Deriver) deriveMentionTarget(ctx context.Context, target mentionTarget) (int, error) {
	since, err := d.watermarkSince(ctx, target.watermarkKey)
	if err != nil {
		return 0, err
	}

	entities, err := d.backend.Query(ctx, target.entityQuery, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query entities for %s: %w", target.edgeLabel, err)
	}

	var results []familyResult
	now := graphstore.Now()
	for _, row := range entities {
		name := asString(row["name"])
		key := asString(row["key"])
		if name == "" {
			continue
		}

		exact, err := d.fulltextSearch(ctx, "chunk_fulltext", `"`+escapeLucenePhrase(name)+`"`)
		if err != nil {
			return 0, fmt.Errorf("fulltext exact search for %s: %w", target.edgeLabel, err)
		}
		for _, m := range exact {
			results = append(results, familyResult{
				FromRef: "Chunk:" + asString(m["id"]), ToRef: target.toRef(key),
				Source: "fulltext-exact", Confidence: ConfMentionExact, Timestamp: now,
			})
		}

		partial, err := d.fulltextSearch(ctx, "chunk_fulltext", escapeLucenePhrase(name)+"~")
		if err != nil {
			return 0, fmt.Errorf("fulltext partial search for %s: %w", target.edgeLabel, err)
		}
		for _, m := range partial {
			results = append(results, familyResult{
				FromRef: "Chunk:" + asString(m["id"]), ToRef: target.toRef(key),
				Source: "fulltext-partial", Confidence: ConfMentionPartial, Timestamp: now,
			})
		}
	}

	return d.runFamily(ctx, target.watermarkKey, target.edgeLabel, results)
}

// toRef builds the destination node reference for this target's label.
func (t mentionTarget) toRef(key string) string {
	switch t.edgeLabel {
	case "MENTIONS_SYMBOL":
		return "Symbol:" + key
	case "MENTIONS_FILE":
		return "File:" + key
	case "MENTIONS_COMMIT":
		return "GitCommit:" + key
	case "MENTIONS_LIBRARY":
		return "Library:" + key
	default:
		return key
	}
}

// fulltextSearch runs a Neo4j fulltext index query and returns each hit's
// Chunk.id and score. Plain db.index.fulltext.queryNodes — no APOC.
func (d *Deriver) fulltextSearch(ctx context.Context, index, query string) ([]map[string]any, error) {
	return d.backend.Query(ctx, `
		CALL db.index.fulltext.queryNodes($index, $query) YIELD node, score
		RETURN node.id AS id, score AS score
	`, map[string]any{"index": index, "query": query})
}

// escapeLucenePhrase strips characters Lucene's query parser treats
// specially, since entity names (file paths, library names) routinely
// contain them.
func escapeLucenePhrase(s string) string {
	special := `+-&&||!(){}[]^"~*?:\/`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if contains(special, r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func contains(set string, r rune) bool {
	for _, c := range set {
		if c == r {
			return true
		}
	}
	return false
}
