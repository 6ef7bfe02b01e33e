package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client is a thin, pool-tuned driver wrapper used by schema bootstrap and
// other operations that need to run raw Cypher outside the Backend
// interface (constraint/index DDL has no natural-key MERGE shape).
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
}

// NewClient opens a pooled connection and verifies connectivity before
// returning, so startup fails fast on bad credentials or an unreachable
// store rather than on the first write (§6 exit code 3, "cannot reach
// the graph store").
func NewClient(ctx context.Context, uri, user, password, database string) (*Client, error) {
	if uri == "" || user == "" || password == "" {
		return nil, fmt.Errorf("graph store credentials missing: uri=%s, user=%s", uri, user)
	}
	if database == "" {
		database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = 50
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = 3600 * time.Second
			config.ConnectionLivenessCheckTimeout = 5 * time.Second
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("create graph store driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to graph store at %s: %w", uri, err)
	}

	logger := slog.Default().With("component", "graphstore")
	logger.Info("graph store client connected", "uri", uri, "database", database)

	return &Client{driver: driver, logger: logger, database: database}, nil
}

// Close closes the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("close graph store driver: %w", err)
	}
	c.logger.Info("graph store client closed")
	return nil
}

// HealthCheck verifies the store is reachable; used by the `status` CLI
// verb and the HTTP contract's /healthz.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("graph store health check failed: %w", err)
	}
	return nil
}

// Run executes a single statement outside of the Backend abstraction, for
// DDL (constraints, indexes) that has no node/edge shape.
func (c *Client) Run(ctx context.Context, statement string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, c.driver, statement, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database))
	if err != nil {
		return fmt.Errorf("statement failed: %w", err)
	}
	return nil
}

// Driver exposes the underlying driver for components that need it
// directly (the batch writer, the lazy query iterator).
func (c *Client) Driver() neo4j.DriverWithContext {
	return c.driver
}

// Database returns the configured database name.
func (c *Client) Database() string {
	return c.database
}
