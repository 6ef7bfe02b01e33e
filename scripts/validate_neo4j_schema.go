// Command validate_neo4j_schema prints node and edge counts for every
// label this engine writes, a quick sanity check after a bootstrap run
// that the expected node/edge kinds actually landed.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var nodeLabels = []string{
	"GitCommit", "File", "Directory", "Document", "Chunk",
	"Symbol", "Library", "Requirement", "Sprint", "DerivationWatermark",
}

var edgeTypes = []string{
	"CONTAINS", "CONTAINS_CHUNK", "CONTAINS_DOC", "DEFINED_IN", "IMPORTS",
	"USES_LIBRARY", "TOUCHED", "REFACTORED_TO", "PART_OF", "INCLUDES", "INVOLVES_FILE",
	"IMPLEMENTS", "EVOLVES_FROM", "DEPENDS_ON",
	"MENTIONS_COMMIT", "MENTIONS_FILE", "MENTIONS_LIBRARY", "MENTIONS_SYMBOL",
	"RELATES_TO", "CO_OCCURS_WITH",
}

func main() {
	uri := os.Getenv("DEVGRAPH_GRAPH_STORE_URL")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user := os.Getenv("DEVGRAPH_GRAPH_STORE_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("DEVGRAPH_GRAPH_STORE_PASSWORD")
	if password == "" {
		log.Fatal("DEVGRAPH_GRAPH_STORE_PASSWORD environment variable must be set")
	}

	ctx := context.Background()
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		log.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	fmt.Println("=== Node counts ===")
	for _, label := range nodeLabels {
		count, err := countNodes(ctx, session, label)
		if err != nil {
			log.Printf("  %s: query failed: %v", label, err)
			continue
		}
		fmt.Printf("  %-20s %d\n", label, count)
	}

	fmt.Println("\n=== Edge counts ===")
	for _, edgeType := range edgeTypes {
		count, err := countEdges(ctx, session, edgeType)
		if err != nil {
			log.Printf("  %s: query failed: %v", edgeType, err)
			continue
		}
		fmt.Printf("  %-20s %d\n", edgeType, count)
	}

	fmt.Println("\nValidation complete.")
}

func countNodes(ctx context.Context, session neo4j.SessionWithContext, label string) (int64, error) {
	result, err := session.Run(ctx, fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label), nil)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	count, _ := record.Get("count")
	n, _ := count.(int64)
	return n, nil
}

func countEdges(ctx context.Context, session neo4j.SessionWithContext, edgeType string) (int64, error) {
	result, err := session.Run(ctx, fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", edgeType), nil)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	count, _ := record.Get("count")
	n, _ := count.(int64)
	return n, nil
}
