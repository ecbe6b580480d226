package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"profilescraper/pkg/logger"
)

// Ledger is the persistent set of already-processed profile identifiers.
// The backing store is a newline-delimited, append-only file: it is never
// rewritten wholesale, so an interrupted run can only lose the line being
// written, never the lines before it. Duplicate lines are tolerated on load
// and collapse into set membership.
type Ledger struct {
	path string
	seen map[string]bool
	file *os.File
	log  logger.Logger
}

// Open loads the ledger from disk and opens it for appending. A missing
// file is an empty ledger; an unreadable file logs a warning and starts
// empty rather than blocking startup.
func Open(path string, log logger.Logger) (*Ledger, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	l := &Ledger{
		path: path,
		seen: make(map[string]bool),
		log:  log,
	}
	l.load()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger for appending: %w", err)
	}
	l.file = file

	return l, nil
}

// load reads the persisted set. Failures degrade to an empty set.
func (l *Ledger) load() {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.DebugWithFields("No existing ledger, starting empty", map[string]interface{}{
				"path": l.path,
			})
			return
		}
		l.log.WithError(err).WithField("path", l.path).
			Warn("Ledger unreadable, starting with empty set")
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			l.seen[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		l.log.WithError(err).WithField("path", l.path).
			Warn("Error while reading ledger, continuing with entries read so far")
	}

	l.log.InfoWithFields("Ledger loaded", map[string]interface{}{
		"path":    l.path,
		"entries": len(l.seen),
	})
}

// Contains reports whether id has already been processed
func (l *Ledger) Contains(id string) bool {
	return l.seen[id]
}

// Append durably records id as processed. The write is synced to disk
// before returning, so a subsequent load sees it even if the process dies
// immediately after. Appending an identifier already present is a no-op.
func (l *Ledger) Append(id string) error {
	if l.seen[id] {
		return nil
	}

	if _, err := l.file.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync ledger: %w", err)
	}

	l.seen[id] = true
	return nil
}

// Len returns the number of distinct identifiers in the ledger
func (l *Ledger) Len() int {
	return len(l.seen)
}

// Path returns the backing file path
func (l *Ledger) Path() string {
	return l.path
}

// Close releases the append handle
func (l *Ledger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
