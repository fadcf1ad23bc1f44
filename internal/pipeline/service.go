// Package pipeline is the application layer: it ties the listing store,
// ingestion, selection, writing and draft filing together behind one
// Service that the HTTP server and the CLI share.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/content"
	"github.com/jonathan/job-autopilot/internal/cv"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/notify"
	"github.com/jonathan/job-autopilot/internal/selection"
)

const (
	// DefaultListLimit is the page size for listing queries without a limit.
	DefaultListLimit = 50
	// DefaultLinkCheckLimit is how many listings one link check visits.
	DefaultLinkCheckLimit = 100
	// DefaultLinkWorkers bounds concurrent link checks.
	DefaultLinkWorkers = 4
)

// Deps are the components a Service is assembled from. Store, Profile and
// Writer are required; everything else may be left nil to disable the
// feature it backs.
type Deps struct {
	Store   *db.DB
	Profile *config.Profile
	Writer  *content.Generator

	// Enricher backs next-job enrichment and bulk contact lookups.
	Enricher *selection.Enricher
	// Scraper and ScrapeOptions back scraping.
	Scraper       *ingestion.Scraper
	ScrapeOptions ingestion.Options

	// CVs picks the résumé attached to drafts.
	CVs *cv.Library
	// Drafts files messages into the mailbox; MailboxErr explains why it is
	// nil when draft filing is not configured.
	Drafts     mail.Appender
	MailboxErr error
	From       string

	Hub *notify.Hub

	LinkOptions *fetch.Options
	LinkWorkers int
}

// Service carries out every user-facing operation. It is built once at start.
type Service struct {
	store    *db.DB
	profile  *config.Profile
	writer   *content.Generator
	selector *selection.Selector
	enricher *selection.Enricher
	scraper  *ingestion.Scraper
	scrapeOp ingestion.Options
	cvs      *cv.Library
	filer    *mail.Filer
	mailErr  error
	hub      *notify.Hub
	linkOpts *fetch.Options
	linkN    int

	guard *Guard
	wg    sync.WaitGroup
	now   func() time.Time
}

// NewService assembles a Service from its dependencies.
func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		profile:  d.Profile,
		writer:   d.Writer,
		selector: selection.NewSelector(d.Store, d.Enricher, d.Profile.Locations),
		enricher: d.Enricher,
		scraper:  d.Scraper,
		scrapeOp: d.ScrapeOptions,
		cvs:      d.CVs,
		mailErr:  d.MailboxErr,
		hub:      d.Hub,
		linkOpts: d.LinkOptions,
		linkN:    d.LinkWorkers,
		guard:    NewGuard(),
		now:      time.Now,
	}
	if d.Drafts != nil {
		s.filer = mail.NewFiler(d.Drafts, d.From, content.FallbackBody(d.Profile))
	}
	if s.linkN < 1 {
		s.linkN = DefaultLinkWorkers
	}
	return s
}

// Profile returns the candidate profile.
func (s *Service) Profile() *config.Profile {
	return s.profile
}

// Running reports whether the bulk operation op is in progress.
func (s *Service) Running(op string) bool {
	return s.guard.Running(op)
}

// Wait blocks until background operations started by the Async methods end.
func (s *Service) Wait() {
	s.wg.Wait()
}

// NextJob returns the most pressing listing without an application, or nil.
func (s *Service) NextJob(ctx context.Context) (*db.Job, error) {
	return s.selector.Next(ctx)
}

// GetJob returns a listing or a NotFoundError.
func (s *Service) GetJob(ctx context.Context, id string) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "job", ID: id}
	}
	return job, nil
}

// ListJobs returns up to limit stored listings, stale ones included, newest
// first.
func (s *Service) ListJobs(ctx context.Context, limit int) ([]db.Job, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListJobs(ctx, limit)
}

// Stats returns the dashboard counters for today.
func (s *Service) Stats(ctx context.Context) (*db.Stats, error) {
	return s.store.GetStats(ctx, s.now())
}

// ContactInfo is the stored recruiting contact of a listing.
type ContactInfo struct {
	Email   *string `json:"contact_email"`
	Name    *string `json:"contact_name"`
	Company string  `json:"company"`
}

// Contact returns the stored contact of a listing.
func (s *Service) Contact(ctx context.Context, id string) (*ContactInfo, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ContactInfo{Email: job.ContactEmail, Name: job.ContactName, Company: job.Company}, nil
}

// LetterResult is a generated cover letter.
type LetterResult struct {
	JobID       string `json:"job_id"`
	CoverLetter string `json:"cover_letter"`
	Company     string `json:"company"`
	Title       string `json:"title"`
}

// GenerateLetter writes a cover letter for a listing. Generation itself
// never fails: without a model the template letter is returned.
func (s *Service) GenerateLetter(ctx context.Context, id string) (*LetterResult, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	letter := s.writer.Letter(ctx, job)
	s.countStat(ctx, db.StatLettersGenerated)
	return &LetterResult{JobID: job.ID, CoverLetter: letter, Company: job.Company, Title: job.Title}, nil
}

func (s *Service) countStat(ctx context.Context, name string) {
	if err := s.store.IncrementDailyStat(ctx, s.now(), name, 1); err != nil {
		log.Printf("[stats] failed to count %s: %v", name, err)
	}
}
