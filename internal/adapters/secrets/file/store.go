// Package file keeps administrator passwords in one TOML file next to
// amxctrl.toml, obfuscated the same way as the settings file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/config"
	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	FileName     = "passwords.toml"
	vaultDirMode = 0o700
	vaultMode    = 0o600
	tempPattern  = ".passwords-*.toml.tmp"
)

var ErrInvalidKey = errors.New("invalid password key")

type vault struct {
	Passwords map[string]string `toml:"passwords"`
}

// Store maps password_ref keys to obfuscated passwords. Every write
// rewrites the whole file through a rename.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// DefaultPath is ~/.amxctl/passwords.toml for home.
func DefaultPath(home string) string {
	return filepath.Join(home, ".amxctl", FileName)
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := checkKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	current.Passwords[key] = config.Encode(value)
	return s.write(current)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := checkKey(key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return "", err
	}
	encoded, ok := current.Passwords[key]
	if !ok {
		return "", fmt.Errorf("%s %q: %w", FileName, key, domain.ErrSecretNotFound)
	}
	return config.Decode(encoded)
}

// Delete leaves the file untouched when key is absent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := checkKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := current.Passwords[key]; !ok {
		return nil
	}
	delete(current.Passwords, key)
	return s.write(current)
}

// Keys lists the stored keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(current.Passwords))
	for key := range current.Passwords {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) read() (vault, error) {
	current := vault{Passwords: map[string]string{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return current, nil
	}
	if err != nil {
		return current, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := toml.Unmarshal(data, &current); err != nil {
		return current, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if current.Passwords == nil {
		current.Passwords = map[string]string{}
	}
	return current, nil
}

func (s *Store) write(current vault) error {
	data, err := toml.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, vaultDirMode); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	temp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp %s: %w", FileName, err)
	}
	tempName := temp.Name()
	defer func() { _ = os.Remove(tempName) }()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		return fmt.Errorf("write temp %s: %w", FileName, err)
	}
	if err := temp.Chmod(vaultMode); err != nil {
		_ = temp.Close()
		return fmt.Errorf("chmod temp %s: %w", FileName, err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("close temp %s: %w", FileName, err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func checkKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.ContainsAny(trimmed, "\n\r") {
		return "", fmt.Errorf("%w %q", ErrInvalidKey, key)
	}
	return trimmed, nil
}
