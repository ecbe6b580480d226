package scraper

import (
	"context"

	"profilescraper/pkg/extractor"
	"profilescraper/pkg/models"
)

// PageSession is the browser capability the engine drives. It is
// satisfied by session.Session; tests substitute fakes.
type PageSession interface {
	Login(ctx context.Context, loginURL, email, password string) error
	Navigate(ctx context.Context, url string) error
	ScrollToBottom(ctx context.Context) error
	PageHeight() (int64, error)
	Click(ctx context.Context, selector string) error
	CurrentURL() (string, error)
	OuterHTML() (string, error)
	Close()
}

// RecordExtractor turns a session positioned at a profile into a
// structured record. Absent fields come back empty, never as errors.
type RecordExtractor interface {
	Extract(ctx context.Context, page extractor.Page) (*models.Profile, error)
}

// Sink persists one record into the durable stores and confirms it in
// the dedup ledger.
type Sink interface {
	Persist(profile *models.Profile) error
}

// LedgerView is the membership check discovery and the processing loop
// filter against.
type LedgerView interface {
	Contains(id string) bool
}
