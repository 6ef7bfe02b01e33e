package graphstore

import (
	"context"
	"fmt"
)

// BootstrapSchema declares every uniqueness constraint, range index, and
// full-text index the pipeline relies on. Every statement uses
// `IF NOT EXISTS`, so this is safe to run on every bootstrap (§4.1,
// "runs first on every bootstrap and before any derivation") rather than
// only once — grounded on MERGE-everywhere idempotence
// discipline in neo4j_backend.go, applied here to DDL instead of writes.
func BootstrapSchema(ctx context.Context, c *Client) error {
	for _, stmt := range schemaStatements() {
		if err := c.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("schema bootstrap: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	stmts := []string{
		// uniqueness on every node kind's natural key, per §3's key column
		"CREATE CONSTRAINT git_commit_hash IF NOT EXISTS FOR (n:GitCommit) REQUIRE n.hash IS UNIQUE",
		"CREATE CONSTRAINT file_path IF NOT EXISTS FOR (n:File) REQUIRE n.path IS UNIQUE",
		"CREATE CONSTRAINT directory_path IF NOT EXISTS FOR (n:Directory) REQUIRE n.path IS UNIQUE",
		"CREATE CONSTRAINT document_path IF NOT EXISTS FOR (n:Document) REQUIRE n.path IS UNIQUE",
		"CREATE CONSTRAINT chunk_id IF NOT EXISTS FOR (n:Chunk) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT symbol_uid IF NOT EXISTS FOR (n:Symbol) REQUIRE n.uid IS UNIQUE",
		"CREATE CONSTRAINT library_name IF NOT EXISTS FOR (n:Library) REQUIRE n.name IS UNIQUE",
		"CREATE CONSTRAINT requirement_id IF NOT EXISTS FOR (n:Requirement) REQUIRE n.id IS UNIQUE",
		"CREATE CONSTRAINT sprint_number IF NOT EXISTS FOR (n:Sprint) REQUIRE n.number IS UNIQUE",
		"CREATE CONSTRAINT watermark_key IF NOT EXISTS FOR (n:DerivationWatermark) REQUIRE n.key IS UNIQUE",

		// uid uniqueness wherever a node also carries a uid, independent of
		// its natural key (GitCommit and File both set uid = their key; the
		// constraint still earns its keep by catching any future divergence)
		"CREATE CONSTRAINT git_commit_uid IF NOT EXISTS FOR (n:GitCommit) REQUIRE n.uid IS UNIQUE",
		"CREATE CONSTRAINT file_uid IF NOT EXISTS FOR (n:File) REQUIRE n.uid IS UNIQUE",
		"CREATE CONSTRAINT directory_uid IF NOT EXISTS FOR (n:Directory) REQUIRE n.uid IS UNIQUE",

		// timestamp range indexes (§4.8 windowed queries filter on these)
		"CREATE INDEX git_commit_timestamp IF NOT EXISTS FOR (n:GitCommit) ON (n.timestamp)",
		"CREATE INDEX chunk_last_modified IF NOT EXISTS FOR (n:Chunk) ON (n.last_modified_timestamp)",

		// Directory.path and Directory.depth, named explicitly in §4.1
		"CREATE INDEX directory_depth IF NOT EXISTS FOR (n:Directory) ON (n.depth)",

		// full-text indexes, named explicitly in §4.1
		"CREATE FULLTEXT INDEX chunk_fulltext IF NOT EXISTS FOR (n:Chunk) ON EACH [n.content]",
		"CREATE FULLTEXT INDEX commit_fulltext IF NOT EXISTS FOR (n:GitCommit) ON EACH [n.message]",
	}
	return stmts
}
