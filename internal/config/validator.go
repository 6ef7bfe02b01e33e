package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/devgraph/internal/apperrors"
)

// ValidationResult holds validation results, unchanged in shape from the
// original: accumulate, don't short-circuit on the first problem.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// ValidateConfig checks every recognised option spec.md §6 names plus the
// DOMAIN STACK extensions, rejecting unknown or malformed values at the
// boundary rather than letting a pipeline stage discover them mid-run.
func ValidateConfig(c *Config) *ValidationResult {
	mode := DetectMode()
	return ValidateConfigWithMode(c, mode)
}

// ValidateConfigWithMode validates with an explicit deployment mode: its
// insecure-default rejection tightens in packaged/CI mode and relaxes in
// development.
func ValidateConfigWithMode(c *Config, mode DeploymentMode) *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateRepoPath(result)
	c.validateGraphStore(result, mode)
	c.validateCommitLimit(result)
	c.validateMaxWorkers(result)
	c.validateJobStore(result, mode)
	c.validateEmbedding(result)
	c.validateHTTP(result)

	return result
}

// ValidateOrFatal validates configuration and panics with a *apperrors.Error
// if invalid — callers at the CLI boundary translate that into an exit code.
func (c *Config) ValidateOrFatal() {
	mode := DetectMode()
	result := ValidateConfigWithMode(c, mode)
	if result.HasErrors() {
		fmt.Println(result.Error())
		fmt.Printf("\nDeployment mode: %s (%s)\n", mode, mode.Description())
		panic(apperrors.ConfigError(result.Error()))
	}

	if len(result.Warnings) > 0 {
		fmt.Println("Configuration warnings:")
		for _, warn := range result.Warnings {
			fmt.Printf("  ⚠️  %s\n", warn)
		}
		fmt.Printf("\nDeployment mode: %s\n", mode)
	}
}

func (c *Config) validateRepoPath(result *ValidationResult) {
	if c.RepoPath == "" {
		result.AddError("repo_path is required but not set")
	}
}

func (c *Config) validateGraphStore(result *ValidationResult, mode DeploymentMode) {
	if c.GraphStoreURL == "" {
		result.AddError("graph_store_url is required but not set")
	} else if _, err := url.Parse(c.GraphStoreURL); err != nil {
		result.AddError("graph_store_url is invalid: %v", err)
	} else if strings.Contains(c.GraphStoreURL, "localhost") && mode.RequiresSecureCredentials() {
		result.AddError("graph_store_url uses localhost. In %s mode (%s), you must provide a remote database URI.", mode, mode.Description())
	}

	if c.GraphStoreUser == "" {
		result.AddWarning("graph_store_user is not set")
	}

	if c.GraphStorePassword == "" {
		result.AddError("graph_store_password is required but not set. Set it via DEVGRAPH_GRAPH_STORE_PASSWORD, the OS keychain, or the config file.")
	} else {
		insecure := []string{"password", "neo4j", "changeme"}
		for _, bad := range insecure {
			if c.GraphStorePassword == bad {
				if mode.RequiresSecureCredentials() {
					result.AddError("graph_store_password is set to an insecure default (%s). Not allowed in %s mode.", bad, mode)
				} else {
					result.AddWarning("graph_store_password is set to a very common password (%s). Consider changing it.", bad)
				}
			}
		}
	}
}

func (c *Config) validateCommitLimit(result *ValidationResult) {
	if c.CommitLimit < 0 {
		result.AddError("commit_limit must not be negative, got %d", c.CommitLimit)
	}
	if c.CommitLimit == 0 {
		result.AddWarning("commit_limit is 0, so the commit walk is not capped")
	}
}

func (c *Config) validateMaxWorkers(result *ValidationResult) {
	if c.MaxWorkers <= 0 {
		result.AddError("max_workers must be positive, got %d", c.MaxWorkers)
	}
}

func (c *Config) validateJobStore(result *ValidationResult, mode DeploymentMode) {
	switch c.JobStore.Backend {
	case "", "none":
		return
	case "postgres":
		if c.JobStore.PostgresDSN == "" {
			result.AddError("job_store.postgres_dsn is required when job_store.backend is postgres")
			return
		}
		if !strings.HasPrefix(c.JobStore.PostgresDSN, "postgres://") && !strings.HasPrefix(c.JobStore.PostgresDSN, "postgresql://") {
			result.AddError("job_store.postgres_dsn must start with postgres:// or postgresql://")
		}
		if strings.Contains(c.JobStore.PostgresDSN, "sslmode=disable") && mode.RequiresSecureCredentials() {
			result.AddError("job_store.postgres_dsn has sslmode=disable, not allowed in %s mode", mode)
		}
	case "sqlite":
		if c.JobStore.SQLitePath == "" {
			result.AddError("job_store.sqlite_path is required when job_store.backend is sqlite")
		}
	default:
		result.AddError("job_store.backend must be one of none, postgres, sqlite; got %q", c.JobStore.Backend)
	}
}

func (c *Config) validateEmbedding(result *ValidationResult) {
	switch c.Embedding.Backend {
	case "", "openai", "gemini":
	default:
		result.AddError("embedding.backend must be one of openai, gemini; got %q", c.Embedding.Backend)
	}
	if c.Embedding.APIKey == "" {
		result.AddWarning("embedding.api_key is not set. Embedding generation will be skipped unless resolved via env or keychain.")
	}
}

func (c *Config) validateHTTP(result *ValidationResult) {
	if c.HTTP.BindAddress == "" {
		result.AddWarning("http.bind_address is not set; no default address is filled in")
	}
}

// RequireGraphStore checks if the graph store configuration is valid and
// returns an error if not.
func (c *Config) RequireGraphStore() error {
	result := &ValidationResult{Valid: true}
	c.validateGraphStore(result, DetectMode())
	if result.HasErrors() {
		return apperrors.ConfigError(result.Error())
	}
	return nil
}
