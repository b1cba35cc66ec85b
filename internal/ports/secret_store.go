package ports

import "context"

// SecretStore holds the passwords that amxctrl.toml names through
// password_ref. Get wraps domain.ErrSecretNotFound when key is unknown.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
