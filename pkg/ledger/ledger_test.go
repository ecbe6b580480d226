package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profilescraper/pkg/logger"
)

func openTemp(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scraped_urls.txt")
	l, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestMissingFileIsEmptySet(t *testing.T) {
	l, _ := openTemp(t)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Contains("https://example.com/in/alice"))
}

func TestAppendIsDurable(t *testing.T) {
	l, path := openTemp(t)

	require.NoError(t, l.Append("https://example.com/in/alice"))
	require.NoError(t, l.Close())

	// A fresh load must see the identifier.
	reloaded, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer reloaded.Close()

	assert.True(t, reloaded.Contains("https://example.com/in/alice"))
	assert.Equal(t, 1, reloaded.Len())
}

func TestAppendIsIdempotent(t *testing.T) {
	l, path := openTemp(t)

	require.NoError(t, l.Append("https://example.com/in/alice"))
	require.NoError(t, l.Append("https://example.com/in/alice"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "alice"))

	reloaded, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer reloaded.Close()
	assert.Equal(t, 1, reloaded.Len())
}

func TestDuplicateLinesCollapseOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraped_urls.txt")
	content := "https://example.com/in/alice\n" +
		"https://example.com/in/bob\n" +
		"https://example.com/in/alice\n" +
		"\n" // blank lines are ignored
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	l, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Contains("https://example.com/in/alice"))
	assert.True(t, l.Contains("https://example.com/in/bob"))
}

func TestContainsCoversInProcessAppends(t *testing.T) {
	l, _ := openTemp(t)

	assert.False(t, l.Contains("https://example.com/in/carol"))
	require.NoError(t, l.Append("https://example.com/in/carol"))
	assert.True(t, l.Contains("https://example.com/in/carol"))
}

func TestInterruptedRunRetainsPriorEntries(t *testing.T) {
	// Simulates the crash-safety contract: entries appended before a crash
	// survive; an identifier never appended stays eligible for retry.
	path := filepath.Join(t.TempDir(), "scraped_urls.txt")

	l, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, l.Append("https://example.com/in/done"))
	// Process "dies" without appending the in-flight identifier.
	require.NoError(t, l.Close())

	reloaded, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer reloaded.Close()

	assert.True(t, reloaded.Contains("https://example.com/in/done"))
	assert.False(t, reloaded.Contains("https://example.com/in/inflight"))
}

func TestCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.txt")
	l, err := Open(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Append("https://example.com/in/dave"))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
