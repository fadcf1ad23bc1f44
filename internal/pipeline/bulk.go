package pipeline

import (
	"context"
	"errors"
	"log"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/notify"
	"github.com/jonathan/job-autopilot/internal/selection"
)

var (
	errScrapeNotConfigured = &ConfigError{Cause: errors.New("scraper not configured")}
	errEnrichNotConfigured = &ConfigError{Cause: errors.New("contact enrichment not configured")}
)

// Scrape pulls listings from every configured source and waits for the result.
func (s *Service) Scrape(ctx context.Context) (*ingestion.Result, error) {
	release, err := s.guard.Acquire(OpScrape)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.scrape(ctx)
}

// ScrapeAsync starts a scrape in the background. It returns ErrBusy right
// away when a scrape is already running and a ConfigError when scraping is
// not set up.
func (s *Service) ScrapeAsync() error {
	if s.scraper == nil {
		return errScrapeNotConfigured
	}
	release, err := s.guard.Acquire(OpScrape)
	if err != nil {
		return err
	}
	s.background(func(ctx context.Context) {
		defer release()
		if _, err := s.scrape(ctx); err != nil {
			log.Printf("[scrape] background scrape failed: %v", err)
		}
	})
	return nil
}

func (s *Service) scrape(ctx context.Context) (*ingestion.Result, error) {
	if s.scraper == nil {
		return nil, errScrapeNotConfigured
	}
	res, err := s.scraper.Run(ctx, s.scrapeOp)
	if err != nil {
		return nil, err
	}
	s.hub.UrgentJobs(ctx, res.NewUrgent)
	s.hub.Notify(ctx, notify.Event{
		Type: notify.EventScrapeDone,
		Data: map[string]any{"stored": res.Stored, "new": res.New, "failed": res.Failed},
	})
	return res, nil
}

// Enrich looks up contacts for up to limit listings that lack one.
func (s *Service) Enrich(ctx context.Context, limit int) (*selection.Result, error) {
	release, err := s.guard.Acquire(OpEnrich)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.enrich(ctx, limit)
}

// EnrichAsync starts an enrichment in the background, or returns ErrBusy.
func (s *Service) EnrichAsync(limit int) error {
	if s.enricher == nil {
		return errEnrichNotConfigured
	}
	release, err := s.guard.Acquire(OpEnrich)
	if err != nil {
		return err
	}
	s.background(func(ctx context.Context) {
		defer release()
		if _, err := s.enrich(ctx, limit); err != nil {
			log.Printf("[enrich] background enrichment failed: %v", err)
		}
	})
	return nil
}

func (s *Service) enrich(ctx context.Context, limit int) (*selection.Result, error) {
	if s.enricher == nil {
		return nil, errEnrichNotConfigured
	}
	res, err := s.enricher.EnrichMissing(ctx, limit)
	if err != nil {
		return res, err
	}
	s.hub.Notify(ctx, notify.Event{
		Type: notify.EventEnrichDone,
		Data: map[string]any{"checked": res.Checked, "found": res.Found},
	})
	return res, nil
}

// LinkCheckResult summarizes a link check.
type LinkCheckResult struct {
	Checked int `json:"checked"`
	Stale   int `json:"stale"`
}

// CheckLinks requests the URL of up to limit active listings and marks those
// answering 404 or 410 as stale. Other failures leave the listing active.
func (s *Service) CheckLinks(ctx context.Context, limit int) (*LinkCheckResult, error) {
	release, err := s.guard.Acquire(OpCheckLinks)
	if err != nil {
		return nil, err
	}
	defer release()

	if limit <= 0 {
		limit = DefaultLinkCheckLimit
	}
	jobs, err := s.store.ListActiveJobs(ctx, limit)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(jobs))
	for i := range jobs {
		urls[i] = jobs[i].PublicURL()
	}
	results := fetch.CheckLinks(ctx, urls, s.linkN, s.linkOpts)

	res := &LinkCheckResult{}
	for i, r := range results {
		if r.State == fetch.LinkUnknown && r.Err != nil {
			log.Printf("[links] could not check %s: %v", r.URL, r.Err)
		}
		res.Checked++
		if r.State != fetch.LinkGone {
			continue
		}
		if err := s.store.SetLinkStatus(ctx, jobs[i].ID, db.LinkStale); err != nil {
			return res, err
		}
		res.Stale++
	}
	log.Printf("[links] checked %d listings, %d stale", res.Checked, res.Stale)
	return res, nil
}

// background runs fn detached from the caller's request.
func (s *Service) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(context.Background())
	}()
}
