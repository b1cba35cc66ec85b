package pass

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bpmKey = "amxctl/bpm/password"

func storeWith(run runner, opts ...Option) *Store {
	store := NewStore(opts...)
	store.run = run
	return store
}

func TestPutInsertsMultiline(t *testing.T) {
	t.Parallel()

	var got invocation
	store := storeWith(func(_ context.Context, call invocation) (string, string, error) {
		got = call
		return "", "", nil
	})

	require.NoError(t, store.Put(context.Background(), bpmKey, "secret"))
	assert.Equal(t, []string{"insert", "-m", "-f", bpmKey}, got.args)
	assert.Equal(t, "secret\n", got.stdin)
	assert.Empty(t, got.env)
}

func TestGetKeepsFirstLineOnly(t *testing.T) {
	t.Parallel()

	store := storeWith(func(_ context.Context, call invocation) (string, string, error) {
		assert.Equal(t, []string{"show", bpmKey}, call.args)
		return "secret\r\nuser: tibco-admin\n", "", nil
	})

	value, err := store.Get(context.Background(), bpmKey)
	require.NoError(t, err)
	assert.Equal(t, "secret", value)
}

func TestWithDirSetsPasswordStoreDir(t *testing.T) {
	t.Parallel()

	store := storeWith(func(_ context.Context, call invocation) (string, string, error) {
		assert.Equal(t, []string{"PASSWORD_STORE_DIR=/srv/ops/pass"}, call.env)
		return "x\n", "", nil
	}, WithDir("/srv/ops/pass"))

	_, err := store.Get(context.Background(), bpmKey)
	require.NoError(t, err)
}

func TestCallsCarryDeadline(t *testing.T) {
	t.Parallel()

	store := storeWith(func(ctx context.Context, _ invocation) (string, string, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return "", "", nil
	}, WithTimeout(time.Second))

	require.NoError(t, store.Delete(context.Background(), bpmKey))
}

func TestMissingEntryIsNotFound(t *testing.T) {
	t.Parallel()

	store := storeWith(func(context.Context, invocation) (string, string, error) {
		return "", "Error: amxctl/bpm/password is not in the password store.", errors.New("exit status 1")
	})

	_, err := store.Get(context.Background(), bpmKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestUnavailablePassIsReportedAsIs(t *testing.T) {
	t.Parallel()

	store := storeWith(func(context.Context, invocation) (string, string, error) {
		return "", "", ErrUnavailable
	})

	_, err := store.Get(context.Background(), bpmKey)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGpgFailureKeepsStderr(t *testing.T) {
	t.Parallel()

	store := storeWith(func(context.Context, invocation) (string, string, error) {
		return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
	})

	_, err := store.Get(context.Background(), bpmKey)
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, bpmKey)
	assert.ErrorContains(t, err, "No secret key")
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestCancelledContextSkipsPass(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := storeWith(func(context.Context, invocation) (string, string, error) {
		t.Fatal("pass must not run")
		return "", "", nil
	})

	_, err := store.Get(ctx, bpmKey)
	require.ErrorIs(t, err, context.Canceled)
}
