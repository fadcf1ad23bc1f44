package ingestion

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-autopilot/internal/db"
)

// LastScrapeKey is the user_data key holding the time of the last finished scrape.
const LastScrapeKey = "last_scrape"

// Searcher finds ads for a keyword, optionally narrowed by location.
type Searcher interface {
	Search(ctx context.Context, keyword, location string) ([]Ad, error)
}

// FeedLister turns one feed URL into listings.
type FeedLister interface {
	Listings(ctx context.Context, url string, now time.Time) ([]db.Job, error)
}

// Store is the subset of the listing store the scraper writes to.
type Store interface {
	GetJob(ctx context.Context, id string) (*db.Job, error)
	UpsertJob(ctx context.Context, job *db.Job) error
	IncrementDailyStat(ctx context.Context, day time.Time, name string, delta int) error
	SetUserData(ctx context.Context, key, value string) error
}

// Options configures a scrape run.
type Options struct {
	Keywords  []string
	Locations []string
	FeedURLs  []string
	// Workers bounds concurrent outbound requests.
	Workers int
}

// Result summarizes a scrape run.
type Result struct {
	// Stored is the number of distinct listings written.
	Stored int `json:"stored"`
	// New counts listings that were not in the store before this run.
	New int `json:"new"`
	// Failed counts searches or feeds that returned an error.
	Failed int `json:"failed"`
	// NewUrgent are the new listings tagged akut.
	NewUrgent []db.Job `json:"-"`
}

// Scraper runs every keyword against every location (plus no location),
// deduplicates by id and upserts the result.
type Scraper struct {
	store  Store
	search Searcher
	feeds  FeedLister
	now    func() time.Time
}

// NewScraper creates a scraper. feeds may be nil when no feeds are configured.
func NewScraper(store Store, search Searcher, feeds FeedLister) *Scraper {
	return &Scraper{store: store, search: search, feeds: feeds, now: time.Now}
}

type query struct {
	keyword  string
	location string
}

// Run performs one scrape. Failed requests are logged and contribute no
// listings. Only store failures abort the run.
func (s *Scraper) Run(ctx context.Context, opts Options) (*Result, error) {
	now := s.now()
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var queries []query
	for _, kw := range opts.Keywords {
		for _, loc := range opts.Locations {
			queries = append(queries, query{keyword: kw, location: loc})
		}
		queries = append(queries, query{keyword: kw})
	}

	var (
		mu     sync.Mutex
		seen   = make(map[string]bool)
		batch  []db.Job
		failed int
	)
	collect := func(jobs []db.Job) {
		mu.Lock()
		defer mu.Unlock()
		for _, j := range jobs {
			if j.ID == "" || seen[j.ID] {
				continue
			}
			seen[j.ID] = true
			batch = append(batch, j)
		}
	}
	fail := func() {
		mu.Lock()
		failed++
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, q := range queries {
		g.Go(func() error {
			ads, err := s.search.Search(gctx, q.keyword, q.location)
			if err != nil {
				log.Printf("[scrape] search %q in %q failed: %v", q.keyword, locationLabel(q.location), err)
				fail()
				return nil
			}
			jobs := make([]db.Job, 0, len(ads))
			for _, ad := range ads {
				jobs = append(jobs, Normalize(ad, q.location, now))
			}
			log.Printf("[scrape] %d ads for %q in %s", len(jobs), q.keyword, locationLabel(q.location))
			collect(jobs)
			return nil
		})
	}

	if s.feeds != nil {
		for _, url := range opts.FeedURLs {
			g.Go(func() error {
				jobs, err := s.feeds.Listings(gctx, url, now)
				if err != nil {
					log.Printf("[scrape] feed %s failed: %v", url, err)
					fail()
					return nil
				}
				collect(jobs)
				return nil
			})
		}
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape cancelled: %w", err)
	}

	res := &Result{Failed: failed}
	for i := range batch {
		job := &batch[i]
		existing, err := s.store.GetJob(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		if err := s.store.UpsertJob(ctx, job); err != nil {
			return nil, err
		}
		res.Stored++
		if existing == nil {
			res.New++
			if job.Priority == db.PriorityUrgent {
				res.NewUrgent = append(res.NewUrgent, *job)
			}
		}
	}

	if err := s.store.IncrementDailyStat(ctx, now, db.StatJobsScraped, res.Stored); err != nil {
		log.Printf("[scrape] failed to record daily stat: %v", err)
	}
	if err := s.store.SetUserData(ctx, LastScrapeKey, now.UTC().Format(time.RFC3339)); err != nil {
		log.Printf("[scrape] failed to record last scrape time: %v", err)
	}

	log.Printf("[scrape] stored %d listings (%d new, %d failed requests)", res.Stored, res.New, res.Failed)
	return res, nil
}

func locationLabel(location string) string {
	if location == "" {
		return DefaultLocation
	}
	return location
}
