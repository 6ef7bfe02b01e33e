package symbols

import (
	"context"
	"fmt"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// FileSymbols pairs one file's extracted symbols with the file they belong
// to, the unit WriteSymbols consumes.
type FileSymbols struct {
	Path    string
	Symbols []Symbol
}

// FileImports pairs one file's extracted imports with the file they were
// found in.
type FileImports struct {
	Path    string
	Imports []Import
}

// Writer turns Stage 6's in-memory Symbol/Import/ManifestLibrary values
// into Symbol/Library nodes and DEFINED_IN/IMPORTS/USES_LIBRARY edges,
// following the same single-BatchWriter pattern as internal/ingest.Writer.
type Writer struct {
	bw *graphstore.BatchWriter
}

// NewWriter binds a Writer to the shared batch-write primitive.
func NewWriter(bw *graphstore.BatchWriter) *Writer {
	return &Writer{bw: bw}
}

// WriteSymbols creates Symbol nodes and (Symbol)-[DEFINED_IN]->(File) edges.
func (w *Writer) WriteSymbols(ctx context.Context, files []FileSymbols) error {
	var nodes []graphstore.GraphNode
	var edges []graphstore.GraphEdge

	for _, f := range files {
		for _, s := range f.Symbols {
			uid := symbolUID(f.Path, s)
			nodes = append(nodes, graphstore.GraphNode{
				Label: "Symbol",
				Properties: map[string]any{
					"uid":         uid,
					"name":        s.Name,
					"type":        string(s.Type),
					"signature":   s.Signature,
					"line_number": s.LineNumber,
					"file_path":   f.Path,
					"nested":      s.Nested,
				},
			})
			edges = append(edges, graphstore.GraphEdge{
				Label: "DEFINED_IN", From: "Symbol:" + uid, To: "File:" + f.Path,
			})
		}
	}

	if err := w.bw.CreateNodesForLabel(ctx, "Symbol", nodes); err != nil {
		return fmt.Errorf("write symbols: %w", err)
	}
	if err := w.bw.CreateEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("write symbol definitions: %w", err)
	}
	return nil
}

// WriteImports creates (File)-[IMPORTS]->(File) edges for imports resolved
// to a repo file, and Library nodes plus (File)-[USES_LIBRARY]->(Library)
// edges for everything else (§4.6 step 2).
func (w *Writer) WriteImports(ctx context.Context, files []FileImports) error {
	var libNodes []graphstore.GraphNode
	var edges []graphstore.GraphEdge
	seenLibs := make(map[string]bool)

	for _, f := range files {
		for _, imp := range f.Imports {
			switch imp.Kind {
			case ImportFile:
				edges = append(edges, graphstore.GraphEdge{
					Label: "IMPORTS", From: "File:" + f.Path, To: "File:" + imp.Target,
					Properties: map[string]any{"confidence": imp.Confidence, "line_number": imp.LineNumber},
				})
			case ImportLibrary:
				if !seenLibs[imp.Target] {
					seenLibs[imp.Target] = true
					libNodes = append(libNodes, graphstore.GraphNode{
						Label:      "Library",
						Properties: map[string]any{"name": imp.Target, "uid": imp.Target},
					})
				}
				edges = append(edges, graphstore.GraphEdge{
					Label: "USES_LIBRARY", From: "File:" + f.Path, To: "Library:" + imp.Target,
					Properties: map[string]any{"confidence": imp.Confidence, "line_number": imp.LineNumber, "source": "import"},
				})
			}
		}
	}

	if err := w.bw.CreateNodesForLabel(ctx, "Library", libNodes); err != nil {
		return fmt.Errorf("write libraries from imports: %w", err)
	}
	if err := w.bw.CreateEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("write import edges: %w", err)
	}
	return nil
}

// WriteManifestLibraries merges Library nodes, accumulating each
// declaration's manifest path into Library.manifest_sources (§3, §4.6 step
// 3) rather than tagging only the edge, and creates (File)-[USES_LIBRARY]->
// (Library) edges for dependencies declared in manifest files (go.mod,
// package.json, requirements.txt, Cargo.toml) — a version-bearing signal
// distinct from a plain source-level import. MergeEvidence's downstream
// MENTIONS_LIBRARY/RELATES_TO families don't care which wrote the node
// first since both MERGE on Library.name.
func (w *Writer) WriteManifestLibraries(ctx context.Context, libs []ManifestLibrary) error {
	var edges []graphstore.GraphEdge
	manifestLibs := make([]map[string]any, 0, len(libs))

	for _, l := range libs {
		manifestLibs = append(manifestLibs, map[string]any{
			"name":            l.Name,
			"version":         l.Version,
			"manifest_source": l.ManifestSource,
		})
		edges = append(edges, graphstore.GraphEdge{
			Label: "USES_LIBRARY", From: "File:" + l.ManifestSource, To: "Library:" + l.Name,
			Properties: map[string]any{"version": l.Version, "source": "manifest"},
		})
	}

	if err := w.bw.MergeManifestLibraries(ctx, manifestLibs); err != nil {
		return fmt.Errorf("write manifest libraries: %w", err)
	}
	if err := w.bw.CreateEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("write manifest library usage: %w", err)
	}
	return nil
}

// symbolUID combines the owning file's path with the symbol's declaration
// line, since names alone collide across files and overloads/methods can
// collide within one.
func symbolUID(filePath string, s Symbol) string {
	return fmt.Sprintf("%s#%d", filePath, s.LineNumber)
}
