// Package pass reads administrator passwords from the pass password
// manager, so amxctrl.toml can carry a password_ref instead of a password.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

// DefaultTimeout bounds a gpg pinentry prompt nobody answers, which would
// otherwise stall a scheduled readiness check.
const DefaultTimeout = 20 * time.Second

const notInStoreMessage = "is not in the password store"

type invocation struct {
	args  []string
	stdin string
	env   []string
}

type runner func(ctx context.Context, call invocation) (stdout, stderr string, err error)

type Store struct {
	run     runner
	dir     string
	timeout time.Duration
}

var _ ports.SecretStore = (*Store)(nil)

type Option func(*Store)

// WithDir points pass at a password store other than ~/.password-store.
func WithDir(dir string) Option {
	return func(s *Store) { s.dir = dir }
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) { s.timeout = timeout }
}

func NewStore(opts ...Option) *Store {
	store := &Store{run: runPass, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.call(ctx, "insert", key, value+"\n", "insert", "-m", "-f", key)
	return err
}

// Get returns the first line of the entry; anything after it is treated as
// notes about the account.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.call(ctx, "show", key, "", "show", key)
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.call(ctx, "rm", key, "", "rm", "-f", key)
	return err
}

func (s *Store) call(ctx context.Context, op, key, stdin string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	call := invocation{args: args, stdin: stdin}
	if s.dir != "" {
		call.env = []string{"PASSWORD_STORE_DIR=" + s.dir}
	}

	stdout, stderr, err := s.run(ctx, call)
	switch {
	case err == nil:
		return stdout, nil
	case errors.Is(err, ErrUnavailable):
		return "", err
	case strings.Contains(stderr, notInStoreMessage):
		return "", fmt.Errorf("pass %s %q: %w", op, key, domain.ErrSecretNotFound)
	case stderr != "":
		return "", fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
	default:
		return "", fmt.Errorf("pass %s %q: %w", op, key, err)
	}
}

func runPass(ctx context.Context, call invocation) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, call.args...)
	if call.stdin != "" {
		cmd.Stdin = strings.NewReader(call.stdin)
	}
	if len(call.env) > 0 {
		cmd.Env = append(os.Environ(), call.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
