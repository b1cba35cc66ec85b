// Package chain resolves password references against several stores in
// order, pass first and passwords.toml second by default.
package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	filestore "github.com/bnema/amxbpm-admin-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/amxbpm-admin-cli/internal/adapters/secrets/pass"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
)

var ErrNoBackends = errors.New("no secret backends configured")

type Backend struct {
	Name  string
	Store ports.SecretStore
}

type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}
	return &Store{backends: backends}, nil
}

// NewDefault reads pass first and the passwords file at path second.
func NewDefault(path string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: filestore.FileName, Store: filestore.NewStore(path)},
	)
}

// Put writes to the first backend that is installed.
func (s *Store) Put(ctx context.Context, key string, value string) error {
	var failures []string
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if isContextError(err) {
			return err
		}
		failures = append(failures, backend.Name+": "+err.Error())
		if !errors.Is(err, passstore.ErrUnavailable) {
			break
		}
	}
	return fmt.Errorf("store %q: %s", key, strings.Join(failures, "; "))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, _, err := s.Lookup(ctx, key)
	return value, err
}

// Lookup is Get that also names the backend which held key.
// domain.ErrSecretNotFound is reported only when every backend was either
// missing the key or not installed.
func (s *Store) Lookup(ctx context.Context, key string) (string, string, error) {
	var failures []string
	missing := true
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, backend.Name, nil
		}
		if isContextError(err) {
			return "", "", err
		}
		if !isMissing(err) {
			missing = false
		}
		failures = append(failures, backend.Name+": "+err.Error())
	}

	if missing {
		return "", "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return "", "", fmt.Errorf("secret %q: %s", key, strings.Join(failures, "; "))
}

// Delete clears key from every backend since Put may have landed in any
// of them.
func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		switch {
		case err == nil, errors.Is(err, passstore.ErrUnavailable):
		case isContextError(err):
			return err
		default:
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name, err))
		}
	}
	return errors.Join(errs...)
}

func isMissing(err error) bool {
	return errors.Is(err, domain.ErrSecretNotFound) || errors.Is(err, passstore.ErrUnavailable)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
