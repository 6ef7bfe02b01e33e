package config

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain.
	KeyringService = "devgraph"

	// KeyringGraphStorePasswordItem is the key for the graph store's
	// connection password, the one credential §AS.3 optionally resolves
	// through the keychain instead of plaintext config.
	KeyringGraphStorePasswordItem = "graph-store-password"

	// KeyringEmbeddingAPIKeyItem is the key for the Stage 7 embedding
	// backend's API key (DS.7) — never required unless that extension is
	// invoked.
	KeyringEmbeddingAPIKeyItem = "embedding-api-key"
)

// KeyringManager handles secure credential storage in the OS keychain,
// adapted from an OpenAI-key/GitHub-token keyring.go to this domain's one
// required credential plus the optional embedding key.
type KeyringManager struct {
	logger *slog.Logger
}

func NewKeyringManager() *KeyringManager {
	return &KeyringManager{logger: slog.Default().With("component", "keyring")}
}

func (km *KeyringManager) SetGraphStorePassword(password string) error {
	if password == "" {
		return fmt.Errorf("graph store password cannot be empty")
	}
	if err := keyring.Set(KeyringService, KeyringGraphStorePasswordItem, password); err != nil {
		km.logger.Error("failed to save graph store password to keychain", "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("graph store password saved to keychain", "service", KeyringService)
	return nil
}

func (km *KeyringManager) GetGraphStorePassword() (string, error) {
	password, err := keyring.Get(KeyringService, KeyringGraphStorePasswordItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to get graph store password from keychain", "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return password, nil
}

func (km *KeyringManager) DeleteGraphStorePassword() error {
	err := keyring.Delete(KeyringService, KeyringGraphStorePasswordItem)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete graph store password from keychain", "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	return nil
}

func (km *KeyringManager) SetEmbeddingAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("embedding api key cannot be empty")
	}
	if err := keyring.Set(KeyringService, KeyringEmbeddingAPIKeyItem, apiKey); err != nil {
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	return nil
}

func (km *KeyringManager) GetEmbeddingAPIKey() (string, error) {
	apiKey, err := keyring.Get(KeyringService, KeyringEmbeddingAPIKeyItem)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return apiKey, nil
}

// IsAvailable checks if the OS keychain is reachable (false on headless
// CI systems without a Secret Service / Keychain Access daemon).
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.Debug("keychain not available", "error", err)
		return false
	}
	return true
}

// MaskSecret masks a secret for display: first 4 and last 4 characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) < 10 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", secret[:4], secret[len(secret)-4:])
}
