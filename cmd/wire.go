package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/amx"
	chainstore "github.com/bnema/amxbpm-admin-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/amxbpm-admin-cli/internal/adapters/secrets/file"
	"github.com/bnema/amxbpm-admin-cli/internal/ports"
)

const secretBackendEnv = "AMXCTL_SECRET_BACKEND"

type app struct {
	global      *globalOptions
	httpClient  *http.Client
	clock       ports.Clock
	now         func() time.Time
	toggleDir   string
	retryDelay  time.Duration
	secretStore func() (ports.SecretStore, error)
}

func wireApp(global *globalOptions) *app {
	return &app{
		global:      global,
		httpClient:  http.DefaultClient,
		clock:       ports.SystemClock{},
		now:         time.Now,
		toggleDir:   envOrDefault("AMXCTL_TOGGLE_DIR", "/tmp"),
		retryDelay:  amx.DefaultRetryDelay,
		secretStore: sync.OnceValues(newSecretStore),
	}
}

// newSecretStore is resolved on first use so that commands which never read
// a password_ref do not probe for pass.
func newSecretStore() (ports.SecretStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	path := filestore.DefaultPath(home)
	if os.Getenv(secretBackendEnv) == "file" {
		return filestore.NewStore(path), nil
	}

	store, err := chainstore.NewDefault(path)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}
	return store, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
