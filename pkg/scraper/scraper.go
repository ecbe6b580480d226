package scraper

import (
	"context"
	"path/filepath"
	"time"

	"profilescraper/pkg/auth"
	"profilescraper/pkg/config"
	"profilescraper/pkg/errors"
	"profilescraper/pkg/extractor"
	"profilescraper/pkg/ledger"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/pacing"
	"profilescraper/pkg/schedule"
	"profilescraper/pkg/session"
	"profilescraper/pkg/storage"
)

// State is the orchestrator's lifecycle position
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateDiscovering    State = "discovering"
	StateProcessing     State = "processing"
	StateDraining       State = "draining"
	StateClosed         State = "closed"
	StateFailed         State = "failed"
)

// Stop reasons reported in the run summary
const (
	StopCompleted     = "completed normally"
	StopBudgetReached = "record budget reached"
	StopWindowClosed  = "outside operating window"
	StopNoCandidates  = "no candidates found"
	StopInterrupted   = "interrupted"
)

// RunSummary reports what one run did and why it stopped
type RunSummary struct {
	Processed  int
	Skipped    int
	Failed     int
	StopReason string
}

// Scraper is the session orchestrator. One Scraper drives one run at a
// time; it exclusively owns the browser session for the run's duration
// and releases it on every exit path.
type Scraper struct {
	cfg     *config.Config
	account *auth.Account
	window  *schedule.Window
	pacer   *pacing.Generator
	ledger  *ledger.Ledger
	sink    Sink
	extract RecordExtractor
	log     logger.Logger

	newSession func(ctx context.Context) (PageSession, error)
	state      State
}

// New wires a Scraper from configuration: operating window, pacing
// generator, dedup ledger, persistence sink and extractor. The browser
// session itself is only acquired inside Run.
func New(cfg *config.Config, account *auth.Account) (*Scraper, error) {
	log := logger.GetLogger()

	pacer, err := pacing.NewGenerator(&cfg.Pacing)
	if err != nil {
		return nil, err
	}

	led, err := ledger.Open(filepath.Join(cfg.Output.DataDir, cfg.Output.LedgerFile), log)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfiguration, "failed to open dedup ledger", err)
	}

	sink, err := storage.NewStore(&cfg.Output, led, log)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfiguration, "failed to initialize storage", err)
	}

	s := &Scraper{
		cfg:     cfg,
		account: account,
		window:  schedule.NewWindow(&cfg.Schedule, log),
		pacer:   pacer,
		ledger:  led,
		sink:    sink,
		extract: extractor.New(log),
		log:     log,
		state:   StateIdle,
	}
	s.newSession = func(ctx context.Context) (PageSession, error) {
		return session.New(ctx, &cfg.Browser, pacer, log)
	}

	return s, nil
}

// State returns the orchestrator's current state
func (s *Scraper) State() State {
	return s.state
}

// SetSessionFactory overrides how Run acquires its browser session
func (s *Scraper) SetSessionFactory(f func(ctx context.Context) (PageSession, error)) {
	s.newSession = f
}

// SetExtractor overrides the record extractor
func (s *Scraper) SetExtractor(e RecordExtractor) {
	s.extract = e
}

// Ledger exposes the dedup ledger, mainly for the CLI status surface
func (s *Scraper) Ledger() *ledger.Ledger {
	return s.ledger
}

// Close releases resources held across runs
func (s *Scraper) Close() error {
	return s.ledger.Close()
}

// Run executes one scraping session against a listing location. Up to
// maxRecords profiles are processed; zero means the configured default.
// Per-record failures are absorbed; only configuration and session
// errors are returned. The returned summary is non-nil whenever err is
// nil and always carries a distinguishable stop reason.
func (s *Scraper) Run(ctx context.Context, location string, maxRecords int) (*RunSummary, error) {
	if maxRecords <= 0 {
		maxRecords = s.cfg.MaxRecords
	}

	if s.account == nil || s.account.Email == "" || s.account.Password == "" {
		s.state = StateFailed
		return nil, errors.New(errors.ErrorTypeConfiguration, "no credentials resolved for this run")
	}

	s.log.InfoWithFields("Starting scraping session", map[string]interface{}{
		"location":    location,
		"max_records": maxRecords,
	})

	s.state = StateAuthenticating
	sess, err := s.newSession(ctx)
	if err != nil {
		s.state = StateFailed
		return nil, err
	}
	// The session must be released on every exit path, including fatal
	// errors raised mid-processing.
	defer func() {
		sess.Close()
		if s.state != StateFailed {
			s.state = StateClosed
		}
	}()

	if err := sess.Login(ctx, s.cfg.Target.LoginURL, s.account.Email, s.account.Password); err != nil {
		s.state = StateFailed
		return nil, err
	}

	s.state = StateDiscovering
	discovery := NewDiscovery(s.cfg.Target.ProfilePathMarker, s.cfg.Target.ScrollBudget, s.ledger, s.log)
	candidates, err := discovery.Discover(ctx, sess, location)
	if err != nil {
		// A failed discovery pass means no candidates, not a failed run.
		s.log.WithError(err).Warn("Discovery failed, ending run with no candidates")
		candidates = nil
	}

	if len(candidates) == 0 {
		s.state = StateDraining
		summary := &RunSummary{StopReason: StopNoCandidates}
		logger.LogRunSummary(summary.Processed, summary.StopReason)
		return summary, nil
	}

	s.state = StateProcessing
	summary := s.process(ctx, sess, candidates, maxRecords)
	s.state = StateDraining

	logger.LogRunSummary(summary.Processed, summary.StopReason)
	return summary, nil
}

// process iterates candidates sequentially. Stop conditions are only
// observed at iteration boundaries; an in-flight extraction or persist
// runs to completion or local failure first.
func (s *Scraper) process(ctx context.Context, sess PageSession, candidates []string, maxRecords int) *RunSummary {
	summary := &RunSummary{StopReason: StopCompleted}

	for i, id := range candidates {
		permitted, reason := s.window.Evaluate(time.Now())
		if !permitted {
			logger.LogWindowStop(reason, time.Now())
			summary.StopReason = StopWindowClosed
			return summary
		}

		// A concurrent run or a re-derived identifier may have confirmed
		// this record since discovery; skip without consuming budget.
		if s.ledger.Contains(id) {
			s.log.WithField("profile_url", id).Debug("already processed, skipping")
			summary.Skipped++
			continue
		}

		if err := s.scrapeOne(ctx, sess, id); err != nil {
			logger.LogProfileScraped(id, "", false, err)
			summary.Failed++
		} else {
			summary.Processed++

			s.log.InfoWithFields("Progress", map[string]interface{}{
				"processed":   summary.Processed,
				"max_records": maxRecords,
			})

			if summary.Processed >= maxRecords {
				summary.StopReason = StopBudgetReached
				return summary
			}
		}

		// Every attempt navigates, so the inter-record delay applies
		// whether it succeeded or failed. Ledger skips never reach here.
		if i < len(candidates)-1 {
			delay := s.pacer.LongDelay()
			logger.LogPacingWait(delay)
			if err := sleepFor(ctx, delay); err != nil {
				summary.StopReason = StopInterrupted
				return summary
			}
		}
	}

	return summary
}

// scrapeOne navigates to a single profile, extracts it and persists the
// result. Any failure here is a per-record failure for the caller.
func (s *Scraper) scrapeOne(ctx context.Context, sess PageSession, id string) error {
	if err := sess.Navigate(ctx, id); err != nil {
		return err
	}

	profile, err := s.extract.Extract(ctx, sess)
	if err != nil {
		return err
	}
	// Identify the record by its canonical discovery identifier, not the
	// possibly redirected browser URL, so the ledger and stores agree.
	profile.ProfileURL = id

	if err := s.sink.Persist(profile); err != nil {
		return err
	}

	logger.LogProfileScraped(id, profile.Name, true, nil)
	return nil
}

func sleepFor(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
