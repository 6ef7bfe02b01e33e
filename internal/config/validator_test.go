package config

import "testing"

func validConfig() *Config {
	return &Config{
		RepoPath:           "/repo",
		GraphStoreURL:      "bolt://db.internal:7687",
		GraphStoreUser:     "neo4j",
		GraphStorePassword: "a-real-secret",
		CommitLimit:        1000,
		MaxWorkers:         4,
		JobStore:           JobStoreConfig{Backend: "none"},
		Embedding:          EmbeddingConfig{Backend: "openai"},
		HTTP:               HTTPConfig{BindAddress: "127.0.0.1:8765"},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	result := ValidateConfigWithMode(validConfig(), ModeDevelopment)
	if result.HasErrors() {
		t.Fatalf("expected no errors, got: %v", result.Errors)
	}
}

func TestValidateConfig_MissingRepoPath(t *testing.T) {
	c := validConfig()
	c.RepoPath = ""
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for a missing repo_path")
	}
}

func TestValidateConfig_MissingGraphStorePassword(t *testing.T) {
	c := validConfig()
	c.GraphStorePassword = ""
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for a missing graph_store_password")
	}
}

func TestValidateConfig_NegativeCommitLimit(t *testing.T) {
	c := validConfig()
	c.CommitLimit = -1
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for a negative commit_limit")
	}
}

func TestValidateConfig_ZeroMaxWorkers(t *testing.T) {
	c := validConfig()
	c.MaxWorkers = 0
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for max_workers=0")
	}
}

func TestValidateConfig_InsecurePasswordRejectedInPackagedMode(t *testing.T) {
	c := validConfig()
	c.GraphStorePassword = "password"
	result := ValidateConfigWithMode(c, ModePackaged)
	if !result.HasErrors() {
		t.Fatal("expected packaged mode to reject an insecure default password")
	}
}

func TestValidateConfig_InsecurePasswordWarnsInDevelopment(t *testing.T) {
	c := validConfig()
	c.GraphStorePassword = "neo4j"
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if result.HasErrors() {
		t.Fatalf("expected development mode to only warn, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the insecure password")
	}
}

func TestValidateConfig_LocalhostRejectedInPackagedMode(t *testing.T) {
	c := validConfig()
	c.GraphStoreURL = "bolt://localhost:7687"
	result := ValidateConfigWithMode(c, ModePackaged)
	if !result.HasErrors() {
		t.Fatal("expected packaged mode to reject a localhost graph_store_url")
	}
}

func TestValidateConfig_JobStoreBackendRequiresDSN(t *testing.T) {
	c := validConfig()
	c.JobStore = JobStoreConfig{Backend: "postgres"}
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error when job_store.backend=postgres has no DSN")
	}
}

func TestValidateConfig_UnknownJobStoreBackend(t *testing.T) {
	c := validConfig()
	c.JobStore = JobStoreConfig{Backend: "dynamodb"}
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for an unrecognised job_store.backend")
	}
}

func TestValidateConfig_UnknownEmbeddingBackend(t *testing.T) {
	c := validConfig()
	c.Embedding.Backend = "anthropic"
	result := ValidateConfigWithMode(c, ModeDevelopment)
	if !result.HasErrors() {
		t.Fatal("expected an error for an unrecognised embedding.backend")
	}
}

func TestRequireGraphStore_FailsOnMissingURL(t *testing.T) {
	c := validConfig()
	c.GraphStoreURL = ""
	if err := c.RequireGraphStore(); err == nil {
		t.Fatal("expected RequireGraphStore to fail without a graph_store_url")
	}
}

func TestRequireGraphStore_PassesWithValidConfig(t *testing.T) {
	c := validConfig()
	if err := c.RequireGraphStore(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidationResult_ErrorFormatting(t *testing.T) {
	result := &ValidationResult{Valid: true}
	result.AddError("repo_path is required")
	if result.Valid {
		t.Error("AddError should flip Valid to false")
	}
	if result.Error() == "" {
		t.Error("expected a non-empty error string once an error was added")
	}
}
