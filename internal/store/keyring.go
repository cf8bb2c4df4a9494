package store

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const (
	serviceName = "gmailsense"

	// apiKeyEntry is the keyring entry holding the OpenRouter credential.
	apiKeyEntry = "OPENROUTER_KEY"
)

// KeyringTokenStore persists the Gmail OAuth2 token in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringTokenStore struct{}

// NewKeyringTokenStore returns a new KeyringTokenStore.
func NewKeyringTokenStore() *KeyringTokenStore {
	return &KeyringTokenStore{}
}

// SaveToken stores the given OAuth2 token in the OS keyring under the account ID.
func (k *KeyringTokenStore) SaveToken(accountID string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := keyring.Set(serviceName, accountID, string(data)); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// LoadToken retrieves the OAuth2 token for the given account ID from the OS keyring.
func (k *KeyringTokenStore) LoadToken(accountID string) (*oauth2.Token, error) {
	data, err := keyring.Get(serviceName, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token from keyring: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// DeleteToken removes the OAuth2 token for the given account ID from the OS keyring.
func (k *KeyringTokenStore) DeleteToken(accountID string) error {
	if err := keyring.Delete(serviceName, accountID); err != nil {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// APIKeyStore persists the OpenRouter API key in the OS keyring. A missing
// key is a fatal configuration error at run start.
type APIKeyStore struct{}

// NewAPIKeyStore returns a new APIKeyStore.
func NewAPIKeyStore() *APIKeyStore {
	return &APIKeyStore{}
}

// Save stores the API key.
func (s *APIKeyStore) Save(key string) error {
	if err := keyring.Set(serviceName, apiKeyEntry, key); err != nil {
		return fmt.Errorf("failed to save API key to keyring: %w", err)
	}
	return nil
}

// Load retrieves the API key, failing when none is stored.
func (s *APIKeyStore) Load() (string, error) {
	key, err := keyring.Get(serviceName, apiKeyEntry)
	if err != nil {
		return "", fmt.Errorf("OpenRouter API key not found; run 'gmailsense key set' first: %w", err)
	}
	return key, nil
}

// Delete removes the API key.
func (s *APIKeyStore) Delete() error {
	if err := keyring.Delete(serviceName, apiKeyEntry); err != nil {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}
