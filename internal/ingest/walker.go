// Package ingest implements the Chunk Ingester (Stage 3): a single
// filesystem walk that turns a repository snapshot into File, Directory,
// Document, and Chunk nodes.
package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultIgnorePatterns covers version-control metadata, dependency caches,
// and build outputs, matched by shouldIgnore against the base name of every
// entry, file or directory. Grounded on
// internal/ingestion/walker.go shouldSkipDir table.
var defaultIgnorePatterns = []string{
	".git", "node_modules", "vendor", "venv", "__pycache__",
	".next", ".nuxt", "dist", "build", "out", "target",
	".cache", ".parcel-cache", "coverage", ".nyc_output",
	".pytest_cache", ".tox", ".venv", "env", "__mocks__",
	".idea", ".vscode",
}

// DirEntry is one filesystem entry discovered by Walk, either a directory
// (to drive Directory/CONTAINS writes) or a file (to drive
// File/Document/Chunk writes).
type DirEntry struct {
	Path  string // POSIX-normalised, repo-relative
	IsDir bool
	Depth int
}

// Walk performs a single traversal of root, sending entries to fn in
// discovery order and pruning any directory matching an ignore pattern
// before descending into it (§4.3 step 1: "drop entries ... before
// descending"). excludePatterns extends the default ignore list with
// user-supplied glob-style substrings.
func Walk(root string, excludePatterns []string, fn func(DirEntry) error) error {
	ignore := append(append([]string{}, defaultIgnorePatterns...), excludePatterns...)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = toPOSIX(rel)
		depth := strings.Count(rel, "/")

		if d.IsDir() {
			if shouldIgnore(d.Name(), ignore) {
				return filepath.SkipDir
			}
			return fn(DirEntry{Path: rel, IsDir: true, Depth: depth})
		}

		if shouldIgnore(d.Name(), ignore) {
			return nil
		}
		return fn(DirEntry{Path: rel, IsDir: false, Depth: depth})
	})
}

func shouldIgnore(name string, patterns []string) bool {
	for _, p := range patterns {
		if name == p || strings.HasPrefix(name, p) || strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// toPOSIX normalises a filepath.Rel result to forward slashes so paths are
// stable across Windows and POSIX (invariant 4: "the same file ingested on
// Windows and POSIX yields one node").
func toPOSIX(path string) string {
	return filepath.ToSlash(path)
}
