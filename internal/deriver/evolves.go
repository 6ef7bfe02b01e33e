package deriver

import (
	"context"
	"fmt"
	"regexp"
)

// evolvesPattern matches a commit message's supersession phrasing; the
// captured id is the requirement being superseded (the "old" id).
var evolvesPattern = regexp.MustCompile(`(?i)(?:replaces|supersedes|evolves from)\s+(FR-\d+-\d+)`)

// DeriveEvolvesFrom runs both EVOLVES_FROM evidence sources (§4.7 family 2).
func (d *Deriver) DeriveEvolvesFrom(ctx context.Context) (int, error) {
	total := 0
	for _, fn := range []func(context.Context) (int, error){
		d.evolvesCommitMessage,
		d.evolvesDocMention,
	} {
		n, err := fn(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// evolvesCommitMessage: a message containing "replaces|supersedes|evolves
// from FR-x" names the old requirement directly; the new id is any other
// FR-\d+-\d+ mentioned elsewhere in the same message.
func (d *Deriver) evolvesCommitMessage(ctx context.Context) (int, error) {
	const key = "evolves_from:commit_message"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (c:GitCommit) WHERE c.timestamp > $since
		RETURN c.message AS message, c.timestamp AS ts
		ORDER BY c.timestamp
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query commits for evolves_from: %w", err)
	}

	var results []familyResult
	var allIDs []string
	for _, row := range rows {
		message := asString(row["message"])
		ts := asString(row["ts"])

		m := evolvesPattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		oldID := m[1]
		allIDs = append(allIDs, oldID)

		for _, id := range dedupeStrings(RequirementIDPattern.FindAllString(message, -1)) {
			if id == oldID {
				continue
			}
			allIDs = append(allIDs, id)
			results = append(results, familyResult{
				FromRef: "Requirement:" + id, ToRef: "Requirement:" + oldID,
				Source: "commit-message", Confidence: ConfEvolvesCommitMsg, Timestamp: ts,
			})
		}
	}
	if err := d.ensureRequirements(ctx, allIDs); err != nil {
		return 0, err
	}
	return d.runFamily(ctx, key, "EVOLVES_FROM", results)
}

// evolvesDocMention: the same document mentions both requirement ids, and
// the newer id's first mention postdates the older id's — the document
// itself never says which one supersedes the other, so recency is the only
// signal available.
func (d *Deriver) evolvesDocMention(ctx context.Context) (int, error) {
	const key = "evolves_from:doc_mention"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (ch:Chunk)-[m1:MENTIONS]->(r1:Requirement)
		MATCH (ch)-[m2:MENTIONS]->(r2:Requirement)
		WHERE r1 <> r2 AND m2.first_seen_ts > m1.first_seen_ts
		  AND m2.first_seen_ts > $since
		RETURN r2.id AS newID, r1.id AS oldID, m2.first_seen_ts AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query doc mentions for evolves_from: %w", err)
	}

	results := make([]familyResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, familyResult{
			FromRef: "Requirement:" + asString(row["newID"]), ToRef: "Requirement:" + asString(row["oldID"]),
			Source: "doc-evolution", Confidence: ConfEvolvesDocMention, Timestamp: asString(row["ts"]),
		})
	}
	return d.runFamily(ctx, key, "EVOLVES_FROM", results)
}
