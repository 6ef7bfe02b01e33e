package sprint

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// sprintFolderPattern matches the **/sprints/sprint-<number>/** convention
// (§4.5 inputs).
var sprintFolderPattern = regexp.MustCompile(`(?:^|/)sprints/sprint-(\d+)(?:/|$)`)

// requirementIDPattern matches the Requirement natural key's canonical form.
var requirementIDPattern = regexp.MustCompile(`FR-\d+-\d+`)

// headingDatePattern is the first-heading date-range fallback when a
// document has no front-matter block, e.g. "Sprint 3: 2024-01-01 to
// 2024-01-14".
var headingDatePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|-|–)\s*(\d{4}-\d{2}-\d{2})`)

// Mapper links sprint documents to the commits, files, and requirements
// that fall inside their declared date window.
type Mapper struct {
	backend graphstore.Backend
}

// NewMapper binds a Mapper to the graph store.
func NewMapper(backend graphstore.Backend) *Mapper {
	return &Mapper{backend: backend}
}

// SprintFolder returns the sprint number encoded in path, if any.
func SprintFolder(path string) (int, bool) {
	m := sprintFolderPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DateRange resolves a sprint document's start/end dates from front-matter,
// falling back to a first-heading declaration. Dates are returned exactly
// as read, with no timezone conversion: a documented source-of-truth bug in
// the original system was re-formatting these dates, and this spec
// explicitly forbids repeating it (§4.5).
func DateRange(content string) (start, end string, ok bool) {
	fm, body, err := ParseFrontMatter(content)
	if err == nil && fm.StartDate != "" && fm.EndDate != "" {
		return fm.StartDate, fm.EndDate, true
	}
	for _, line := range strings.Split(body, "\n") {
		if m := headingDatePattern.FindStringSubmatch(line); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// MapDocument links one sprint document's Sprint node to its in-window
// commits and files, the document itself, and any requirement ids found in
// its content (§4.5 steps 1-5). Documents outside the sprint-folder
// convention, or lacking a resolvable date range, are skipped — not every
// Markdown document is a sprint document.
func (m *Mapper) MapDocument(ctx context.Context, docPath, content string) error {
	number, ok := SprintFolder(docPath)
	if !ok {
		return nil
	}
	start, end, ok := DateRange(content)
	if !ok {
		return nil
	}

	if err := m.writeSprint(ctx, number, start, end); err != nil {
		return err
	}
	if err := m.linkCommitsAndFiles(ctx, number, start, end); err != nil {
		return err
	}
	if err := m.linkDocument(ctx, number, docPath); err != nil {
		return err
	}
	return m.linkRequirements(ctx, number, content)
}

func (m *Mapper) writeSprint(ctx context.Context, number int, start, end string) error {
	name := fmt.Sprintf("sprint-%d", number)
	builder := graphstore.NewCypherBuilder()
	query, err := builder.BuildMergeNode("Sprint", "number", number, map[string]any{
		"uid":        name,
		"number":     number,
		"name":       name,
		"start_date": start,
		"end_date":   end,
	})
	if err != nil {
		return fmt.Errorf("build sprint node: %w", err)
	}
	return m.backend.ExecuteBatchWithParams(ctx, []graphstore.QueryWithParams{{Query: query, Params: builder.Params()}})
}

// linkCommitsAndFiles creates INCLUDES edges to every commit timestamped
// inside [start, end] and INVOLVES_FILE edges to every file those commits
// touched (§4.5 steps 2-3), in one transaction rather than one MERGE per
// commit.
func (m *Mapper) linkCommitsAndFiles(ctx context.Context, number int, start, end string) error {
	query := `
MATCH (s:Sprint {number: $number})
MATCH (c:GitCommit) WHERE c.timestamp >= $start AND c.timestamp <= $end
MERGE (s)-[:INCLUDES]->(c)
WITH s, c
MATCH (c)-[:TOUCHED]->(f:File)
MERGE (s)-[:INVOLVES_FILE]->(f)
`
	return m.backend.ExecuteBatchWithParams(ctx, []graphstore.QueryWithParams{{
		Query:  query,
		Params: map[string]any{"number": number, "start": start, "end": end},
	}})
}

func (m *Mapper) linkDocument(ctx context.Context, number int, docPath string) error {
	builder := graphstore.NewCypherBuilder()
	query, err := builder.BuildMergeEdge(
		"Sprint", "number", number,
		"Document", "path", docPath,
		"CONTAINS_DOC", nil,
	)
	if err != nil {
		return fmt.Errorf("build contains_doc: %w", err)
	}
	return m.backend.ExecuteBatchWithParams(ctx, []graphstore.QueryWithParams{{Query: query, Params: builder.Params()}})
}

// linkRequirements creates a Requirement node and a PART_OF edge to this
// sprint for every distinct FR-\d+-\d+ id found in the document's content
// (§4.5 step 5). Requirements that never appear in a sprint document or
// commit message stay unlinked, per §8's invariant that the engine must not
// fabricate a PART_OF edge just to satisfy coverage.
func (m *Mapper) linkRequirements(ctx context.Context, number int, content string) error {
	ids := requirementIDPattern.FindAllString(content, -1)
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(ids))
	var queries []graphstore.QueryWithParams
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		reqBuilder := graphstore.NewCypherBuilder()
		reqQuery, err := reqBuilder.BuildMergeNode("Requirement", "id", id, map[string]any{"uid": id, "id": id})
		if err != nil {
			return fmt.Errorf("build requirement node: %w", err)
		}
		queries = append(queries, graphstore.QueryWithParams{Query: reqQuery, Params: reqBuilder.Params()})

		edgeBuilder := graphstore.NewCypherBuilder()
		edgeQuery, err := edgeBuilder.BuildMergeEdge(
			"Requirement", "id", id,
			"Sprint", "number", number,
			"PART_OF", nil,
		)
		if err != nil {
			return fmt.Errorf("build part_of: %w", err)
		}
		queries = append(queries, graphstore.QueryWithParams{Query: edgeQuery, Params: edgeBuilder.Params()})
	}

	return m.backend.ExecuteBatchWithParams(ctx, queries)
}
