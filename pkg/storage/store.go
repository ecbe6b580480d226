package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"profilescraper/pkg/config"
	"profilescraper/pkg/errors"
	"profilescraper/pkg/ledger"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/models"
)

// Store persists profiles into two synchronized projections: a JSON
// collection (source of truth, rewritten atomically on each append) and a
// flattened CSV (header written once, rows appended). The ledger append
// happens strictly after both projections are durable, so a crash
// mid-persist leaves the record eligible for retry on the next run.
type Store struct {
	jsonPath string
	csvPath  string
	ledger   *ledger.Ledger
	log      logger.Logger
}

// NewStore creates the data directory and returns a Store writing into it
func NewStore(cfg *config.OutputConfig, led *ledger.Ledger, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{
		jsonPath: filepath.Join(cfg.DataDir, cfg.JSONFile),
		csvPath:  filepath.Join(cfg.DataDir, cfg.CSVFile),
		ledger:   led,
		log:      log,
	}, nil
}

// Persist writes the profile into both projections and then marks its
// identifier processed in the ledger. Any failure before the ledger append
// leaves the identifier unconfirmed, so the record is retried on a future
// run rather than silently marked done.
func (s *Store) Persist(profile *models.Profile) error {
	if err := s.appendJSON(profile); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to write structured store", err)
	}
	if err := s.appendCSV(profile); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to write tabular store", err)
	}
	if err := s.ledger.Append(profile.ProfileURL); err != nil {
		return errors.Wrap(errors.ErrorTypePersistence, "failed to confirm record in ledger", err)
	}

	s.log.DebugWithFields("Profile persisted", map[string]interface{}{
		"profile_url": profile.ProfileURL,
		"name":        profile.Name,
	})
	return nil
}

// appendJSON rewrites the collection atomically so a reader never observes
// a half-written document.
func (s *Store) appendJSON(profile *models.Profile) error {
	profiles, err := s.LoadAll()
	if err != nil {
		return err
	}
	profiles = append(profiles, profile)

	tempPath := s.jsonPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(profiles); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode profiles: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close: %w", err)
	}

	if err := os.Rename(tempPath, s.jsonPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// appendCSV appends one flattened row, writing the header exactly once
// when the file is first created.
func (s *Store) appendCSV(profile *models.Profile) error {
	// Size, not existence: a crash can leave the file created but empty,
	// and that file still needs its header.
	stat, statErr := os.Stat(s.csvPath)
	isNew := os.IsNotExist(statErr) || (statErr == nil && stat.Size() == 0)

	file, err := os.OpenFile(s.csvPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV store: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(models.CSVHeader()); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	if err := writer.Write(profile.FlatRow()); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Sync()
}

// LoadAll reads the structured store. A missing file is an empty collection.
// Consumers needing exact-once semantics should dedup on read by
// profile_url and scraped_at, since the at-least-once retry path can leave
// duplicate records.
func (s *Store) LoadAll() ([]*models.Profile, error) {
	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Profile{}, nil
		}
		return nil, fmt.Errorf("failed to read structured store: %w", err)
	}

	var profiles []*models.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse structured store: %w", err)
	}
	return profiles, nil
}

// JSONPath returns the structured store path
func (s *Store) JSONPath() string { return s.jsonPath }

// CSVPath returns the tabular store path
func (s *Store) CSVPath() string { return s.csvPath }
