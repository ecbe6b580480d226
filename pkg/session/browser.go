// Package session manages the headless browser the scraper drives.
// It wraps chromedp with the navigation rate cap, retry policy and
// human-like pacing the rest of the engine expects.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"profilescraper/pkg/config"
	"profilescraper/pkg/errors"
	"profilescraper/pkg/logger"
	"profilescraper/pkg/pacing"
	"profilescraper/pkg/ratelimit"
	"profilescraper/pkg/retry"
)

// Session is a live browser session. All page interaction during a run
// goes through it.
type Session struct {
	cfg   *config.BrowserConfig
	pacer *pacing.Generator
	limit ratelimit.Limiter
	log   logger.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New launches a browser and returns a ready session. The caller must
// Close it; the parent context bounds the whole browser lifetime.
func New(ctx context.Context, cfg *config.BrowserConfig, pacer *pacing.Generator, log logger.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing Chrome fails fast instead of on
	// the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(errors.ErrorTypeSession, "failed to launch browser", err)
	}

	s := &Session{
		cfg:           cfg,
		pacer:         pacer,
		limit:         ratelimit.ForNavsPerMinute(cfg.NavsPerMinute),
		log:           log,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	log.WithFields(map[string]interface{}{
		"headless":        cfg.Headless,
		"navs_per_minute": cfg.NavsPerMinute,
	}).Info("browser session started")

	return s, nil
}

// Close shuts down the browser and releases the allocator. Safe to call
// more than once.
func (s *Session) Close() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.log.Info("browser session closed")
}

// Navigate loads a URL, honoring the navigation rate cap and retrying
// transient failures with backoff.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.limit.Wait()

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = s.cfg.MaxNavRetries
	cfg.Context = ctx
	cfg.Logger = s.log

	err := retry.Do(func() error {
		navCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
		defer cancel()
		return chromedp.Run(navCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body"),
		)
	}, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSession, "navigation failed: "+url, err)
	}

	s.log.WithField("url", url).Debug("page loaded")
	return nil
}

// Login signs in at loginURL and verifies the browser landed on an
// authenticated page. A failed handshake is a session error, which
// aborts the run.
func (s *Session) Login(ctx context.Context, loginURL, email, password string) error {
	if err := s.Navigate(ctx, loginURL); err != nil {
		return err
	}

	type step struct {
		action chromedp.Action
	}
	steps := []step{
		{chromedp.WaitVisible(`#username`)},
		{chromedp.SendKeys(`#username`, email)},
		{chromedp.SendKeys(`#password`, password)},
		{chromedp.Click(`button[type="submit"]`, chromedp.NodeVisible)},
	}
	for _, st := range steps {
		if err := s.sleepShort(ctx); err != nil {
			return err
		}
		runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
		err := chromedp.Run(runCtx, st.action)
		cancel()
		if err != nil {
			return errors.Wrap(errors.ErrorTypeSession, "login form interaction failed", err)
		}
	}

	// Give the post-submit redirect time to settle before judging it.
	if err := s.sleepShort(ctx); err != nil {
		return err
	}

	current, err := s.CurrentURL()
	if err != nil {
		return err
	}
	if strings.Contains(current, "login") || strings.Contains(current, "checkpoint") {
		return errors.New(errors.ErrorTypeSession, "login rejected, still on "+current)
	}
	if !strings.Contains(current, "feed") && !strings.Contains(current, "mynetwork") {
		s.log.WithField("url", current).Warn("unexpected post-login page, continuing")
	}

	s.log.Info("login handshake complete")
	return nil
}

// ScrollStep scrolls the viewport down by one screen and pauses with a
// randomized scroll delay.
func (s *Session) ScrollStep(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(`window.scrollBy(0, window.innerHeight);`, nil),
	); err != nil {
		return errors.Wrap(errors.ErrorTypeSession, "scroll failed", err)
	}
	return s.sleepFor(ctx, s.pacer.ScrollDelay())
}

// ScrollToBottom scrolls to the end of the page and pauses.
func (s *Session) ScrollToBottom(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
	); err != nil {
		return errors.Wrap(errors.ErrorTypeSession, "scroll failed", err)
	}
	return s.sleepFor(ctx, s.pacer.ScrollDelay())
}

// PageHeight reports document.body.scrollHeight, used to detect when
// progressive loading has settled.
func (s *Session) PageHeight() (int64, error) {
	var height int64
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	); err != nil {
		return 0, errors.Wrap(errors.ErrorTypeSession, "failed to read page height", err)
	}
	return height, nil
}

// Click clicks the first visible node matching the selector, then
// pauses with a randomized click delay. Returns an error if nothing
// matches within a short wait.
func (s *Session) Click(ctx context.Context, selector string) error {
	runCtx, cancel := context.WithTimeout(s.browserCtx, 5*time.Second)
	err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.NodeVisible))
	cancel()
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSession, "click failed: "+selector, err)
	}
	return s.sleepShort(ctx)
}

// OuterHTML returns the rendered HTML of the current page.
func (s *Session) OuterHTML() (string, error) {
	var html string
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", errors.Wrap(errors.ErrorTypeSession, "failed to capture page HTML", err)
	}
	return html, nil
}

// CurrentURL returns the browser's current location.
func (s *Session) CurrentURL() (string, error) {
	var url string
	runCtx, cancel := context.WithTimeout(s.browserCtx, 10*time.Second)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", errors.Wrap(errors.ErrorTypeSession, "failed to read current URL", err)
	}
	return url, nil
}

func (s *Session) sleepShort(ctx context.Context) error {
	return s.sleepFor(ctx, s.pacer.ClickDelay())
}

func (s *Session) sleepFor(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(errors.ErrorTypeSession, "interrupted", ctx.Err())
	case <-time.After(d):
		return nil
	}
}
