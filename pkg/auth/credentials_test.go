package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())

	account := &Account{Label: "work", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, m.Store(account))

	got, err := m.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.False(t, got.LastModified.IsZero())
}

func TestManagerRejectsIncompleteAccounts(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())

	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Account{Label: "x"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Account{Label: "x", Email: "a@b.c"}), ErrInvalidCredentials)
}

func TestManagerFallsThroughFailingStore(t *testing.T) {
	failing := NewMockStore()
	failing.SetFailing(true)
	working := NewMockStore()
	m := NewManagerWithStores(failing, working)

	account := &Account{Label: "work", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, m.Store(account))

	got, err := m.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "work", got.Label)
}

func TestManagerRetrieveNotFound(t *testing.T) {
	m := NewManagerWithStores(NewMockStore())
	_, err := m.Retrieve("missing")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerDelete(t *testing.T) {
	store := NewMockStore()
	m := NewManagerWithStores(store)

	require.NoError(t, m.Store(&Account{Label: "work", Email: "a@b.c", Password: "p"}))
	require.NoError(t, m.Delete("work"))
	assert.ErrorIs(t, m.Delete("work"), ErrCredentialsNotFound)
}

func TestResolveFromEnvironment(t *testing.T) {
	t.Setenv("SCRAPER_EMAIL", "env@example.com")
	t.Setenv("SCRAPER_PASSWORD", "envpass")

	m := NewManagerWithStores(NewMockStore())
	account, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", account.Email)
}

func TestResolveSingleStoredAccount(t *testing.T) {
	t.Setenv("SCRAPER_EMAIL", "")
	t.Setenv("SCRAPER_PASSWORD", "")

	m := NewManagerWithStores(NewMockStore())
	require.NoError(t, m.Store(&Account{Label: "only", Email: "a@b.c", Password: "p"}))

	account, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "only", account.Label)
}

func TestResolveMissingCredentials(t *testing.T) {
	t.Setenv("SCRAPER_EMAIL", "")
	t.Setenv("SCRAPER_PASSWORD", "")

	m := NewManagerWithStores(NewMockStore())
	_, err := m.Resolve("")
	assert.Error(t, err)
}

func TestEnvironmentStoreIsReadOnly(t *testing.T) {
	store := NewEnvironmentStore()
	assert.ErrorIs(t, store.Store(&Account{Label: "x"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("SCRAPER_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	account := &Account{Label: "work", Email: "ada@example.com", Password: "secret"}
	require.NoError(t, store.Store(account))

	got, err := store.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Password)

	// The file on disk must not contain the password in clear
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "ada@example.com")

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, store.Delete("work"))
	_, err = store.Retrieve("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}
