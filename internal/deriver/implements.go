package deriver

import (
	"context"
	"fmt"
)

// DeriveImplements runs all four IMPLEMENTS evidence sources (§4.7 family
// 1) and returns the total number of evidence instances written (or, under
// dry_run, counted).
func (d *Deriver) DeriveImplements(ctx context.Context) (int, error) {
	total := 0
	for _, fn := range []func(context.Context) (int, error){
		d.implementsCommitMessage,
		d.implementsDocMention,
		d.implementsCodeComment,
		d.implementsSprintWindow,
	} {
		n, err := fn(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// implementsCommitMessage: a commit message matching FR-\d+-\d+ makes every
// file that commit TOUCHED an IMPLEMENTS evidence file, at the commit's own
// timestamp.
func (d *Deriver) implementsCommitMessage(ctx context.Context) (int, error) {
	const key = "implements:commit_message"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (c:GitCommit)-[:TOUCHED]->(f:File)
		WHERE c.timestamp > $since
		WITH c, collect(DISTINCT f.path) AS paths
		RETURN c.message AS message, c.timestamp AS ts, paths AS paths
		ORDER BY c.timestamp
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query commits for implements: %w", err)
	}

	var results []familyResult
	var allIDs []string
	for _, row := range rows {
		message := asString(row["message"])
		ts := asString(row["ts"])
		ids := dedupeStrings(RequirementIDPattern.FindAllString(message, -1))
		if len(ids) == 0 {
			continue
		}
		allIDs = append(allIDs, ids...)
		paths, _ := row["paths"].([]any)
		for _, id := range ids {
			for _, p := range paths {
				results = append(results, familyResult{
					FromRef: "Requirement:" + id, ToRef: "File:" + asString(p),
					Source: "commit-message", Confidence: ConfCommitMessageMatch, Timestamp: ts,
				})
			}
		}
	}
	if err := d.ensureRequirements(ctx, allIDs); err != nil {
		return 0, err
	}
	return d.runFamily(ctx, key, "IMPLEMENTS", results)
}

// implementsDocMention: a chunk that MENTIONS a requirement, whose content
// contains a touched file's path as a substring, where that file's commit
// is INCLUDEd by a sprint that CONTAINS_DOC the chunk's document.
func (d *Deriver) implementsDocMention(ctx context.Context) (int, error) {
	const key = "implements:doc_mention"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (ch:Chunk)-[:MENTIONS]->(r:Requirement)
		MATCH (ch)-[:PART_OF]->(doc:Document)<-[:CONTAINS_DOC]-(s:Sprint)-[:INCLUDES]->(c:GitCommit)-[:TOUCHED]->(f:File)
		WHERE c.timestamp > $since AND ch.content CONTAINS f.path
		RETURN DISTINCT r.id AS reqID, f.path AS path, c.timestamp AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query doc mentions for implements: %w", err)
	}

	results := make([]familyResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, familyResult{
			FromRef: "Requirement:" + asString(row["reqID"]), ToRef: "File:" + asString(row["path"]),
			Source: "doc-mention", Confidence: ConfDocMention, Timestamp: asString(row["ts"]),
		})
	}
	return d.runFamily(ctx, key, "IMPLEMENTS", results)
}

// implementsCodeComment: an is_code chunk whose content matches a
// requirement id directly. No event timestamp drives this source — the
// file's own last-modified time stands in, matching §4.7's fallback rule
// for sources without a natural timestamp.
func (d *Deriver) implementsCodeComment(ctx context.Context) (int, error) {
	const key = "implements:code_comment"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (ch:Chunk)-[:PART_OF]->(f:File)
		WHERE f.is_code = true AND ch.content =~ '.*FR-\\d+-\\d+.*'
		  AND coalesce(f.last_modified_ts, '') > $since
		RETURN ch.content AS content, f.path AS path, f.last_modified_ts AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query code comments for implements: %w", err)
	}

	var results []familyResult
	var allIDs []string
	for _, row := range rows {
		content := asString(row["content"])
		path := asString(row["path"])
		ts := asString(row["ts"])
		ids := dedupeStrings(RequirementIDPattern.FindAllString(content, -1))
		allIDs = append(allIDs, ids...)
		for _, id := range ids {
			results = append(results, familyResult{
				FromRef: "Requirement:" + id, ToRef: "File:" + path,
				Source: "code-comment", Confidence: ConfCodeComment, Timestamp: ts,
			})
		}
	}
	if err := d.ensureRequirements(ctx, allIDs); err != nil {
		return 0, err
	}
	return d.runFamily(ctx, key, "IMPLEMENTS", results)
}

// implementsSprintWindow: the weakest fallback — a requirement PART_OF a
// sprint that INCLUDES a commit that TOUCHED the file, with no direct
// textual link between the requirement and the file at all.
func (d *Deriver) implementsSprintWindow(ctx context.Context) (int, error) {
	const key = "implements:sprint_window"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (r:Requirement)-[:PART_OF]->(s:Sprint)-[:INCLUDES]->(c:GitCommit)-[:TOUCHED]->(f:File)
		WHERE c.timestamp > $since
		RETURN DISTINCT r.id AS reqID, f.path AS path, c.timestamp AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query sprint window for implements: %w", err)
	}

	results := make([]familyResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, familyResult{
			FromRef: "Requirement:" + asString(row["reqID"]), ToRef: "File:" + asString(row["path"]),
			Source: "sprint-window", Confidence: ConfSprintWindow, Timestamp: asString(row["ts"]),
		})
	}
	return d.runFamily(ctx, key, "IMPLEMENTS", results)
}
