package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
	portmocks "github.com/bnema/amxbpm-admin-cli/internal/ports/mocks"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)

	loaded, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Empty(t, loaded.File)
	assert.Equal(t, DefaultAdminURL, loaded.Settings.Admin.URL)
	assert.Equal(t, "dA==", loaded.Settings.Admin.Password)
	assert.Equal(t, DefaultEnvironmentPrefix, loaded.Settings.BPM.EnvironmentPrefix)
	assert.Equal(t, DefaultPollInterval, loaded.Settings.Poll.Interval)
}

func TestLoadFindsFileInCfgDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, "cfg"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, "cfg", FileName), []byte(`
[admin]
url = "http://admin-1:8120/amxadministrator"
user = "admin"

[bpm]
environment_prefix = "ORDERS"

[poll]
interval = 5
`), 0o600))

	loaded, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cfg", FileName), loaded.File)
	assert.Equal(t, "http://admin-1:8120/amxadministrator", loaded.Settings.Admin.URL)
	assert.Equal(t, "admin", loaded.Settings.Admin.User)
	assert.Equal(t, "dA==", loaded.Settings.Admin.Password)
	assert.Equal(t, "ORDERS", loaded.Settings.BPM.EnvironmentPrefix)
	assert.Equal(t, 5, loaded.Settings.Poll.Interval)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bpm]\nurl = \"http://bpm-1:8180\"\n"), 0o600))
	t.Setenv("AMXCTL_BPM_URL", "http://bpm-2:8180")

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://bpm-2:8180", loaded.Settings.BPM.URL)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestHostURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://localhost:8180", AdminSettings{URL: "http://localhost:8180/amxadministrator/"}.HostURL())
	assert.Equal(t, "http://proxy:80", AdminSettings{URL: DefaultAdminURL, BaseURL: "http://proxy:80/"}.HostURL())
}

func TestDecodeStripsControlCharacters(t *testing.T) {
	t.Parallel()

	plain, err := Decode("dA==\n")
	require.NoError(t, err)
	assert.Equal(t, "t", plain)

	plain, err = Decode(Encode("sec\tret\n"))
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)

	_, err = Decode("not base64!")
	require.Error(t, err)
}

func TestResolvePasswordPrefersSecretStore(t *testing.T) {
	t.Parallel()

	store := portmocks.NewMockSecretStore(t)
	store.EXPECT().Get(context.Background(), SecretKey("bpm")).Return("from-store", nil).Once()

	value, err := ResolvePassword(context.Background(), store, Encode("from-file"), SecretKey("bpm"))
	require.NoError(t, err)
	assert.Equal(t, "from-store", value)

	value, err = ResolvePassword(context.Background(), nil, Encode("from-file"), "")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestResolvePasswordMissingSecret(t *testing.T) {
	t.Parallel()

	store := portmocks.NewMockSecretStore(t)
	store.EXPECT().Get(context.Background(), "amxctl/admin/password").Return("", domain.ErrSecretNotFound).Once()

	_, err := ResolvePassword(context.Background(), store, "", "amxctl/admin/password")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestWriteRoundTripsAndRefusesOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", FileName)
	settings := Defaults()
	settings.Node.Filter = "amx.bpm"

	require.NoError(t, Write(path, settings, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(settingsFileMode), info.Mode().Perm())

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded.Settings)

	require.ErrorIs(t, Write(path, settings, false), ErrFileExists)
	require.NoError(t, Write(path, settings, true))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".amxctrl-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestMaskedHidesPasswords(t *testing.T) {
	t.Parallel()

	masked := Defaults().Masked()
	assert.Equal(t, maskedValue, masked.Admin.Password)
	assert.Equal(t, maskedValue, masked.BPM.Password)
	assert.Equal(t, DefaultAdminUser, masked.Admin.User)
}
