package github

import (
	"errors"
	"strings"

	"mauicli/internal/secrets"
)

// TokenEnvVar overrides the stored token
const TokenEnvVar = "GITHUB_TOKEN"

// TokenSource names where a token came from
type TokenSource string

const (
	// TokenFromEnv is the GITHUB_TOKEN variable
	TokenFromEnv TokenSource = "env"
	// TokenFromStore is the encrypted secret store
	TokenFromStore TokenSource = "store"
	// TokenNone means requests go out anonymously
	TokenNone TokenSource = "none"
)

// TokenGetter reads a stored secret
type TokenGetter interface {
	Get(name string) ([]byte, error)
}

// ResolveToken returns GITHUB_TOKEN from getenv, else the stored token. A
// missing token is not an error; a store that fails to decrypt is.
func ResolveToken(getenv func(string) string, store TokenGetter) (string, TokenSource, error) {
	if getenv != nil {
		if v := strings.TrimSpace(getenv(TokenEnvVar)); v != "" {
			return v, TokenFromEnv, nil
		}
	}
	if store == nil {
		return "", TokenNone, nil
	}

	raw, err := store.Get(secrets.GitHubToken)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return "", TokenNone, nil
		}
		return "", TokenNone, err
	}
	if v := strings.TrimSpace(string(raw)); v != "" {
		return v, TokenFromStore, nil
	}
	return "", TokenNone, nil
}
