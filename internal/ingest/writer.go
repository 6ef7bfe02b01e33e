package ingest

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// FileRecord is everything Stage 3 knows about one discovered file after
// classification, decoding, and chunking — the unit the Writer turns into
// File/Document/Chunk nodes and their containment edges.
type FileRecord struct {
	Path           string // POSIX-normalised, repo-relative
	Language       string
	Extension      string
	IsDoc          bool
	IsCode         bool
	SizeBytes      int64
	LastModifiedTS string // ISO-8601 UTC
	DecodingFailed bool
	TooLarge       bool
	DocumentTitle  string // set only when IsDoc
	WordCount      int    // set only when IsDoc
	Chunks         []ChunkRecord
}

// Writer turns a Stage 3 walk's accumulated Directory entries and
// FileRecords into batched graph writes. All writes go through a single
// BatchWriter so every stage obeys the one parametrised bulk-write
// primitive §4.3 step 5 requires — no per-row transactions.
type Writer struct {
	bw *graphstore.BatchWriter
}

// NewWriter binds a Writer to the shared batch-write primitive.
func NewWriter(bw *graphstore.BatchWriter) *Writer {
	return &Writer{bw: bw}
}

// WriteDirectories creates Directory nodes and (Directory)-[CONTAINS]->(Directory)
// edges for every discovered directory. Top-level directories (no parent
// under the walked root) get no CONTAINS edge, since the repo root itself
// isn't a node in this data model.
func (w *Writer) WriteDirectories(ctx context.Context, dirs []DirEntry) error {
	nodes := make([]graphstore.GraphNode, 0, len(dirs))
	var edges []graphstore.GraphEdge

	for _, d := range dirs {
		nodes = append(nodes, graphstore.GraphNode{
			Label: "Directory",
			Properties: map[string]any{
				"path":  d.Path,
				"uid":   d.Path,
				"depth": d.Depth,
			},
		})

		if parent := parentPath(d.Path); parent != "" {
			edges = append(edges, graphstore.GraphEdge{
				Label: "CONTAINS",
				From:  "Directory:" + parent,
				To:    "Directory:" + d.Path,
			})
		}
	}

	if err := w.bw.CreateNodesForLabel(ctx, "Directory", nodes); err != nil {
		return fmt.Errorf("write directories: %w", err)
	}
	if err := w.bw.CreateEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("write directory containment: %w", err)
	}
	return nil
}

// WriteFiles creates File nodes (and Document nodes for is_doc files), the
// parent Directory's CONTAINS edge, and every file's Chunk nodes plus their
// CONTAINS_CHUNK / PART_OF edges (§4.3 steps 4-6).
func (w *Writer) WriteFiles(ctx context.Context, files []FileRecord) error {
	fileNodes := make([]graphstore.GraphNode, 0, len(files))
	var docNodes []graphstore.GraphNode
	var chunkNodes []graphstore.GraphNode
	var edges []graphstore.GraphEdge

	for _, f := range files {
		fileNodes = append(fileNodes, graphstore.GraphNode{
			Label:      "File",
			Properties: fileProperties(f),
		})

		if parent := parentPath(f.Path); parent != "" {
			edges = append(edges, graphstore.GraphEdge{
				Label: "CONTAINS",
				From:  "Directory:" + parent,
				To:    "File:" + f.Path,
			})
		}

		if f.IsDoc {
			docNodes = append(docNodes, graphstore.GraphNode{
				Label: "Document",
				Properties: map[string]any{
					"path":       f.Path,
					"uid":        f.Path,
					"title":      f.DocumentTitle,
					"word_count": f.WordCount,
				},
			})
		}

		if f.DecodingFailed || f.TooLarge {
			continue
		}

		for _, c := range f.Chunks {
			chunkID := fmt.Sprintf("%s#%d", f.Path, c.Ordinal)
			chunkNodes = append(chunkNodes, graphstore.GraphNode{
				Label: "Chunk",
				Properties: map[string]any{
					"id":                      chunkID,
					"doc_path":                f.Path,
					"heading":                 c.Heading,
					"level":                   c.Level,
					"ordinal":                 c.Ordinal,
					"content":                 c.Content,
					"content_preview":         c.ContentPreview,
					"length":                  c.Length,
					"last_modified_timestamp": f.LastModifiedTS,
				},
			})

			edges = append(edges,
				graphstore.GraphEdge{Label: "CONTAINS_CHUNK", From: "File:" + f.Path, To: "Chunk:" + chunkID},
				graphstore.GraphEdge{Label: "PART_OF", From: "Chunk:" + chunkID, To: "File:" + f.Path},
			)
			if f.IsDoc {
				edges = append(edges,
					graphstore.GraphEdge{Label: "CONTAINS_CHUNK", From: "Document:" + f.Path, To: "Chunk:" + chunkID},
					graphstore.GraphEdge{Label: "PART_OF", From: "Chunk:" + chunkID, To: "Document:" + f.Path},
				)
			}
		}
	}

	if err := w.bw.CreateNodesForLabel(ctx, "File", fileNodes); err != nil {
		return fmt.Errorf("write files: %w", err)
	}
	if err := w.bw.CreateNodesForLabel(ctx, "Document", docNodes); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	if err := w.bw.CreateNodesForLabel(ctx, "Chunk", chunkNodes); err != nil {
		return fmt.Errorf("write chunks: %w", err)
	}
	if err := w.bw.CreateEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("write file/chunk containment: %w", err)
	}
	return nil
}

func fileProperties(f FileRecord) map[string]any {
	props := map[string]any{
		"path":               f.Path,
		"uid":                f.Path,
		"language":           f.Language,
		"extension":          f.Extension,
		"is_code":            f.IsCode,
		"is_doc":             f.IsDoc,
		"size_bytes":         f.SizeBytes,
		"last_modified_ts":   f.LastModifiedTS,
		"decoding_failed":    f.DecodingFailed,
		"too_large_to_chunk": f.TooLarge,
	}
	return props
}

// parentPath returns the POSIX parent directory of a repo-relative path, or
// "" if the path is already top-level (no parent Directory node exists for
// the walked root itself).
func parentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" || !strings.Contains(p, "/") {
		return ""
	}
	return dir
}
