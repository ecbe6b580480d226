package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profilescraper/pkg/config"
	"profilescraper/pkg/ledger"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/models"
)

func newTestStore(t *testing.T) (*Store, *ledger.Ledger, string) {
	t.Helper()
	dir := t.TempDir()

	led, err := ledger.Open(filepath.Join(dir, "scraped_urls.txt"), logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })

	store, err := NewStore(&config.OutputConfig{
		DataDir:    dir,
		JSONFile:   "profiles.json",
		CSVFile:    "profiles.csv",
		LedgerFile: "scraped_urls.txt",
	}, led, logger.NewNopLogger())
	require.NoError(t, err)

	return store, led, dir
}

func sampleProfile(url string) *models.Profile {
	p := models.NewProfile(url, time.Date(2026, 8, 17, 10, 30, 0, 0, time.UTC))
	p.Name = "Ada Lovelace"
	p.Headline = "Analyst"
	p.Location = "London"
	p.About = "First programmer"
	p.Experience = []models.Experience{
		{Title: "Analyst", Company: "Analytical Engine Co", Dates: "1842-1843"},
		{Title: "Translator", Company: "Scientific Memoirs"},
	}
	p.Education = []models.Education{{School: "Home tutoring", Degree: "Mathematics"}}
	p.Skills = []string{"Mathematics", "Analysis", "Writing"}
	p.Certifications = []models.Certification{{Name: "None", Issuer: "N/A"}}
	p.Languages = []string{"English", "French"}
	return p
}

func TestPersistWritesBothProjections(t *testing.T) {
	store, led, _ := newTestStore(t)
	p := sampleProfile("https://example.com/in/ada")

	require.NoError(t, store.Persist(p))

	// Structured store
	profiles, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada Lovelace", profiles[0].Name)
	assert.Equal(t, "2026-08-17 10:30:00", profiles[0].ScrapedAt)
	assert.Len(t, profiles[0].Experience, 2)

	// Tabular store
	f, err := os.Open(store.CSVPath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.CSVHeader(), rows[0])
	assert.Equal(t, []string{
		"https://example.com/in/ada", "2026-08-17 10:30:00",
		"Ada Lovelace", "Analyst", "London", "First programmer",
		"2", "1", "3", "1", "2",
	}, rows[1])

	// Ledger confirmed after both projections
	assert.True(t, led.Contains("https://example.com/in/ada"))
}

func TestCSVHeaderWrittenExactlyOnce(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.NoError(t, store.Persist(sampleProfile("https://example.com/in/one")))
	require.NoError(t, store.Persist(sampleProfile("https://example.com/in/two")))

	f, err := os.Open(store.CSVPath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, models.CSVHeader(), rows[0])
	assert.NotEqual(t, models.CSVHeader(), rows[1])
}

func TestCSVHeaderWrittenIntoEmptyFile(t *testing.T) {
	// An interrupted earlier run can leave the CSV created but empty;
	// the next persist must still write the header first.
	store, _, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.csv"), nil, 0644))

	require.NoError(t, store.Persist(sampleProfile("https://example.com/in/ada")))

	f, err := os.Open(store.CSVPath())
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, models.CSVHeader(), rows[0])
}

func TestEmptyProfileIsStillPersisted(t *testing.T) {
	store, led, _ := newTestStore(t)
	p := models.NewProfile("https://example.com/in/ghost", time.Now())

	require.NoError(t, store.Persist(p))

	profiles, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Empty(t, profiles[0].Name)
	assert.True(t, led.Contains("https://example.com/in/ghost"))
}

func TestJSONStoreGrowsAcrossRestarts(t *testing.T) {
	store, _, dir := newTestStore(t)
	require.NoError(t, store.Persist(sampleProfile("https://example.com/in/first")))

	// Second store instance over the same directory, as after a restart.
	led2, err := ledger.Open(filepath.Join(dir, "scraped_urls.txt"), logger.NewNopLogger())
	require.NoError(t, err)
	defer led2.Close()
	store2, err := NewStore(&config.OutputConfig{
		DataDir:  dir,
		JSONFile: "profiles.json",
		CSVFile:  "profiles.csv",
	}, led2, logger.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, store2.Persist(sampleProfile("https://example.com/in/second")))

	profiles, err := store2.LoadAll()
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestLoadAllMissingFile(t *testing.T) {
	store, _, _ := newTestStore(t)
	profiles, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLedgerAppendHappensAfterStores(t *testing.T) {
	// Close the ledger so its append fails; both projections must already
	// be written and the error must be a persistence error, leaving the
	// identifier unconfirmed.
	store, led, _ := newTestStore(t)
	require.NoError(t, led.Close())

	err := store.Persist(sampleProfile("https://example.com/in/ada"))
	require.Error(t, err)

	profiles, loadErr := store.LoadAll()
	require.NoError(t, loadErr)
	assert.Len(t, profiles, 1, "structured store written before ledger append")

	_, statErr := os.Stat(store.CSVPath())
	assert.NoError(t, statErr, "tabular store written before ledger append")
}
