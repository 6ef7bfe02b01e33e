package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// CredentialManager resolves secrets with a fixed priority chain —
// environment variable, then OS keychain, then config file, then an
// interactive prompt — retargeted from openai-api-key/github-token to this
// domain's graph_store_password and the optional embedding API key.
type CredentialManager struct {
	mode       DeploymentMode
	keyring    *KeyringManager
	configPath string
}

// Credentials is the config-file fallback shape for secrets that
// couldn't be resolved from the environment or keychain.
type Credentials struct {
	GraphStorePassword string `yaml:"graph_store_password"`
	EmbeddingAPIKey    string `yaml:"embedding_api_key"`
}

func NewCredentialManager() *CredentialManager {
	mode := DetectMode()
	homeDir, _ := os.UserHomeDir()
	configPath := filepath.Join(homeDir, ".config", "devgraph", "credentials.yaml")

	return &CredentialManager{mode: mode, keyring: NewKeyringManager(), configPath: configPath}
}

// GetGraphStorePassword retrieves the graph store connection password.
func (cm *CredentialManager) GetGraphStorePassword() (string, error) {
	if pw := os.Getenv("DEVGRAPH_GRAPH_STORE_PASSWORD"); pw != "" {
		return pw, nil
	}

	if cm.keyring.IsAvailable() {
		if pw, err := cm.keyring.GetGraphStorePassword(); err == nil && pw != "" {
			return pw, nil
		}
	}

	if creds, err := cm.loadConfigFile(); err == nil && creds.GraphStorePassword != "" {
		return creds.GraphStorePassword, nil
	}

	if cm.mode.AllowsInteractivePrompts() && isInteractive() {
		fmt.Println("\nGraph store password not found.")
		return cm.promptAndSave("Enter graph store password: ", func(s string) error {
			return cm.keyring.SetGraphStorePassword(s)
		})
	}

	return "", apperrors.ConfigErrorf(
		"DEVGRAPH_GRAPH_STORE_PASSWORD not found. Set it via:\n"+
			"  1. Environment variable: export DEVGRAPH_GRAPH_STORE_PASSWORD=...\n"+
			"  2. OS keychain: service \"devgraph\", item \"graph-store-password\"\n"+
			"  3. Config file: %s", cm.configPath)
}

// GetEmbeddingAPIKey retrieves the Stage 7 embedding backend's API key.
// Unlike the graph store password, this is optional — an empty return
// with a nil error means the embedding extension simply isn't configured.
func (cm *CredentialManager) GetEmbeddingAPIKey() (string, error) {
	for _, envVar := range []string{"DEVGRAPH_EMBEDDING_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}

	if cm.keyring.IsAvailable() {
		if key, err := cm.keyring.GetEmbeddingAPIKey(); err == nil && key != "" {
			return key, nil
		}
	}

	if creds, err := cm.loadConfigFile(); err == nil && creds.EmbeddingAPIKey != "" {
		return creds.EmbeddingAPIKey, nil
	}

	return "", nil
}

// SaveCredentials saves credentials to the keychain (preferred) or config
// file (fallback).
func (cm *CredentialManager) SaveCredentials(creds Credentials) error {
	if cm.keyring.IsAvailable() {
		if creds.GraphStorePassword != "" {
			if err := cm.keyring.SetGraphStorePassword(creds.GraphStorePassword); err != nil {
				return apperrors.Wrap(err, apperrors.Config, apperrors.SeverityHigh, "failed to save graph store password to keychain")
			}
		}
		if creds.EmbeddingAPIKey != "" {
			if err := cm.keyring.SetEmbeddingAPIKey(creds.EmbeddingAPIKey); err != nil {
				return apperrors.Wrap(err, apperrors.Config, apperrors.SeverityHigh, "failed to save embedding api key to keychain")
			}
		}
		return nil
	}

	return cm.saveConfigFile(creds)
}

func (cm *CredentialManager) loadConfigFile() (*Credentials, error) {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, err
	}
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (cm *CredentialManager) saveConfigFile(creds Credentials) error {
	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(cm.configPath, data, 0600)
}

func (cm *CredentialManager) promptAndSave(prompt string, save func(string) error) (string, error) {
	fmt.Print(prompt)
	secret, err := cm.readSecurely()
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", apperrors.ConfigError("value is required")
	}

	if cm.keyring.IsAvailable() {
		if err := save(secret); err == nil {
			fmt.Println("Saved to keychain")
		}
	}
	return secret, nil
}

func (cm *CredentialManager) readSecurely() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		bytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isInteractive() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

func (cm *CredentialManager) GetMode() DeploymentMode {
	return cm.mode
}

func (cm *CredentialManager) GetConfigPath() string {
	return cm.configPath
}

// HasCredentials reports whether a graph store password is configured
// anywhere in the resolution chain.
func (cm *CredentialManager) HasCredentials() bool {
	if os.Getenv("DEVGRAPH_GRAPH_STORE_PASSWORD") != "" {
		return true
	}
	if cm.keyring.IsAvailable() {
		if pw, err := cm.keyring.GetGraphStorePassword(); err == nil && pw != "" {
			return true
		}
	}
	if creds, err := cm.loadConfigFile(); err == nil && creds.GraphStorePassword != "" {
		return true
	}
	return false
}
