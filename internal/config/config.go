package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds every recognised option spec.md §6 names, plus the
// extension-point settings SPEC_FULL.md's DOMAIN STACK section adds
// (embedding backend, optional durable job store, HTTP bind address).
type Config struct {
	// Deployment mode, reused from mode.go unchanged.
	Mode string `yaml:"mode"`

	RepoPath             string   `yaml:"repo_path"`
	GraphStoreURL        string   `yaml:"graph_store_url"`
	GraphStoreUser       string   `yaml:"graph_store_user"`
	GraphStorePassword   string   `yaml:"graph_store_password"`
	ResetGraph           bool     `yaml:"reset_graph"`
	CommitLimit          int      `yaml:"commit_limit"`
	DeriveRelationships  bool     `yaml:"derive_relationships"`
	Subpath              string   `yaml:"subpath"`
	MaxWorkers           int      `yaml:"max_workers"`
	ExcludePatterns      []string `yaml:"exclude_patterns"`
	DryRun               bool     `yaml:"dry_run"`

	// JobStore is the optional durable extension (DS.8): "none" (default,
	// matching spec.md §6's transience requirement), "postgres", or "sqlite".
	JobStore JobStoreConfig `yaml:"job_store"`

	// Embedding configures the Stage 7 extension point (DS.7). Never
	// consulted unless a caller explicitly invokes an embedding backend.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// HTTP configures the thin HTTP/RPC contract surface (DS.9).
	HTTP HTTPConfig `yaml:"http"`
}

type JobStoreConfig struct {
	Backend     string `yaml:"backend"` // "none", "postgres", "sqlite"
	PostgresDSN string `yaml:"postgres_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type EmbeddingConfig struct {
	Backend string `yaml:"backend"` // "openai", "gemini"
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type HTTPConfig struct {
	BindAddress string `yaml:"bind_address"`
}

// Default returns the recognised-options defaults from spec.md §6.
func Default() *Config {
	return &Config{
		Mode:                "team",
		CommitLimit:         1000,
		DeriveRelationships: true,
		MaxWorkers:          runtime.NumCPU(),
		JobStore:            JobStoreConfig{Backend: "none"},
		Embedding:           EmbeddingConfig{Backend: "openai", Model: "text-embedding-3-small"},
		HTTP:                HTTPConfig{BindAddress: "127.0.0.1:8765"},
	}
}

// Load loads configuration from file, then applies DEVGRAPH_-prefixed
// environment variable overrides (§AS.3). Unknown keys in path are not
// rejected: Load ignores them, and ValidateConfig checks only the values of
// the recognised options.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("commit_limit", cfg.CommitLimit)
	v.SetDefault("derive_relationships", cfg.DeriveRelationships)
	v.SetDefault("max_workers", cfg.MaxWorkers)
	v.SetDefault("job_store", cfg.JobStore)
	v.SetDefault("embedding", cfg.Embedding)
	v.SetDefault("http", cfg.HTTP)

	v.SetEnvPrefix("DEVGRAPH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("devgraph")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".devgraph"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Config's fields carry yaml tags only, so decode by those names;
	// otherwise snake_case keys such as repo_path never reach their fields.
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	resolveGraphStorePassword(cfg)

	return cfg, nil
}

func loadEnvFiles() {
	envFiles := []string{".env.local", ".env", ".env.example"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err == nil {
				continue
			}
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".devgraph", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies DEVGRAPH_-prefixed environment variables on top
// of whatever the config file or viper defaults produced — env always wins.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEVGRAPH_REPO_PATH"); v != "" {
		cfg.RepoPath = expandPath(v)
	}
	if v := os.Getenv("DEVGRAPH_GRAPH_STORE_URL"); v != "" {
		cfg.GraphStoreURL = v
	}
	if v := os.Getenv("DEVGRAPH_GRAPH_STORE_USER"); v != "" {
		cfg.GraphStoreUser = v
	}
	if v := os.Getenv("DEVGRAPH_GRAPH_STORE_PASSWORD"); v != "" {
		cfg.GraphStorePassword = v
	}
	if v := os.Getenv("DEVGRAPH_RESET_GRAPH"); v != "" {
		cfg.ResetGraph = v == "true"
	}
	if v := os.Getenv("DEVGRAPH_COMMIT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CommitLimit = n
		}
	}
	if v := os.Getenv("DEVGRAPH_DERIVE_RELATIONSHIPS"); v != "" {
		cfg.DeriveRelationships = v == "true"
	}
	if v := os.Getenv("DEVGRAPH_SUBPATH"); v != "" {
		cfg.Subpath = v
	}
	if v := os.Getenv("DEVGRAPH_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxWorkers = n
		}
	}
	if v := os.Getenv("DEVGRAPH_EXCLUDE_PATTERNS"); v != "" {
		cfg.ExcludePatterns = strings.Split(v, ",")
	}
	if v := os.Getenv("DEVGRAPH_DRY_RUN"); v != "" {
		cfg.DryRun = v == "true"
	}
	if v := os.Getenv("DEVGRAPH_JOB_STORE_BACKEND"); v != "" {
		cfg.JobStore.Backend = v
	}
	if v := os.Getenv("DEVGRAPH_JOB_STORE_POSTGRES_DSN"); v != "" {
		cfg.JobStore.PostgresDSN = v
	}
	if v := os.Getenv("DEVGRAPH_JOB_STORE_SQLITE_PATH"); v != "" {
		cfg.JobStore.SQLitePath = v
	}
	if v := os.Getenv("DEVGRAPH_EMBEDDING_BACKEND"); v != "" {
		cfg.Embedding.Backend = v
	}
	if v := os.Getenv("DEVGRAPH_HTTP_BIND_ADDRESS"); v != "" {
		cfg.HTTP.BindAddress = v
	}
	if v := os.Getenv("DEVGRAPH_MODE"); v != "" {
		cfg.Mode = v
	}
}

// resolveGraphStorePassword fills GraphStorePassword from the OS keychain
// when neither the config file nor the environment set one directly, so a
// password from either of those always wins over the keychain (§AS.3).
func resolveGraphStorePassword(cfg *Config) {
	if cfg.GraphStorePassword != "" {
		return
	}
	km := NewKeyringManager()
	if !km.IsAvailable() {
		return
	}
	if pw, err := km.GetGraphStorePassword(); err == nil && pw != "" {
		cfg.GraphStorePassword = pw
	}
}

// Save saves configuration to file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("mode", c.Mode)
	v.Set("repo_path", c.RepoPath)
	v.Set("graph_store_url", c.GraphStoreURL)
	v.Set("graph_store_user", c.GraphStoreUser)
	v.Set("reset_graph", c.ResetGraph)
	v.Set("commit_limit", c.CommitLimit)
	v.Set("derive_relationships", c.DeriveRelationships)
	v.Set("subpath", c.Subpath)
	v.Set("max_workers", c.MaxWorkers)
	v.Set("exclude_patterns", c.ExcludePatterns)
	v.Set("dry_run", c.DryRun)
	v.Set("job_store", c.JobStore)
	v.Set("embedding", c.Embedding)
	v.Set("http", c.HTTP)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}
