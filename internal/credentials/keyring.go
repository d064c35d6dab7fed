// Package credentials resolves API secrets from the environment or the OS keyring.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "go-chatbot"

	AnthropicAPIKeyName = "ANTHROPIC_API_KEY"
	TavilyAPIKeyName    = "TAVILY_API_KEY"
)

var (
	// ErrNotFound indicates that a requested secret was not found in the keyring.
	ErrNotFound = errors.New("secret not found")
	// ErrMissing is returned by Lookup when a secret is in neither the environment nor the keyring.
	ErrMissing = errors.New("missing credential")
)

// Known lists the secret names the chatbot reads.
func Known() []string {
	return []string{AnthropicAPIKeyName, TavilyAPIKeyName}
}

// Lookup returns the named secret from the environment, falling back to the keyring.
func Lookup(name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	v, err := GetSecret(name)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("%w: %s is not set; export it or run `chatbot secret set %s`", ErrMissing, name, name)
	}
	// An unavailable keyring (no D-Bus session, headless CI) counts as not configured.
	return "", fmt.Errorf("%w: %s is not set and the keyring is unavailable: %v", ErrMissing, name, err)
}

// GetSecret retrieves the named secret from the system keyring.
func GetSecret(name string) (string, error) {
	secret, err := keyring.Get(serviceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}
	return secret, nil
}

func SetSecret(name, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("secret %q cannot be empty", name)
	}
	if err := keyring.Set(serviceName, name, trimmed); err != nil {
		return fmt.Errorf("store secret %q: %w", name, err)
	}
	return nil
}

func DeleteSecret(name string) error {
	if err := keyring.Delete(serviceName, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete secret %q: %w", name, err)
	}
	return nil
}
