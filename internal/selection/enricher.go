package selection

import (
	"context"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/research"
)

// DefaultEnrichLimit is how many listings a bulk enrichment visits.
const DefaultEnrichLimit = 10

// EnrichWorkers bounds concurrent contact lookups in a bulk enrichment.
const EnrichWorkers = 3

// ContactFinder looks up a recruiting contact for a company.
type ContactFinder interface {
	FindContact(ctx context.Context, company, title string) (*research.Contact, error)
}

// NoteWriter writes the one-sentence why-perfect note for a listing.
type NoteWriter interface {
	WhyPerfect(ctx context.Context, job *db.Job) string
}

// Enricher adds contact details and the why-perfect note to listings.
type Enricher struct {
	store  Store
	finder ContactFinder
	notes  NoteWriter
}

// NewEnricher creates an enricher. finder may be nil when no contact lookup
// is configured; notes may be nil to skip why-perfect notes.
func NewEnricher(store Store, finder ContactFinder, notes NoteWriter) *Enricher {
	return &Enricher{store: store, finder: finder, notes: notes}
}

// Enrich looks up a contact for job and writes a why-perfect note when it has
// none, stores what was found and returns the updated listing. A failed
// contact lookup is logged and leaves the stored contact untouched.
func (e *Enricher) Enrich(ctx context.Context, job *db.Job) (*db.Job, error) {
	var upd db.Enrichment
	out := *job

	if e.finder != nil {
		contact, err := e.finder.FindContact(ctx, job.Company, job.Title)
		switch {
		case err != nil:
			log.Printf("[enrich] contact lookup for %s (%s) failed: %v", job.ID, job.Company, err)
		case contact != nil:
			if email := strings.TrimSpace(contact.Email); email != "" {
				upd.ContactEmail = &email
				out.ContactEmail = &email
			}
			if name := strings.TrimSpace(contact.Name); name != "" {
				upd.ContactName = &name
				out.ContactName = &name
			}
		}
	}

	if e.notes != nil && db.Value(job.WhyPerfect) == "" {
		if note := strings.TrimSpace(e.notes.WhyPerfect(ctx, job)); note != "" {
			upd.WhyPerfect = &note
			out.WhyPerfect = &note
		}
	}

	if upd.ContactEmail == nil && upd.ContactName == nil && upd.WhyPerfect == nil {
		return &out, nil
	}
	if err := e.store.UpdateJobEnrichment(ctx, job.ID, upd); err != nil {
		return nil, &Error{JobID: job.ID, Message: "failed to store enrichment", Cause: err}
	}
	return &out, nil
}

// Result summarizes a bulk enrichment.
type Result struct {
	Checked int `json:"checked"`
	// Found counts listings that gained a contact email.
	Found int `json:"found"`
}

// EnrichMissing enriches up to limit active listings that have no contact
// email, EnrichWorkers at a time. It stops early only when ctx is cancelled
// or the store fails.
func (e *Enricher) EnrichMissing(ctx context.Context, limit int) (*Result, error) {
	if limit <= 0 {
		limit = DefaultEnrichLimit
	}
	jobs, err := e.store.ListJobsMissingContact(ctx, limit)
	if err != nil {
		return nil, &Error{Message: "failed to list jobs missing contact", Cause: err}
	}

	var mu sync.Mutex
	res := &Result{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(EnrichWorkers)

	for i := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			enriched, err := e.Enrich(gctx, &jobs[i])
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			res.Checked++
			if db.Value(enriched.ContactEmail) != "" {
				res.Found++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	log.Printf("[enrich] enriched %d jobs, %d with contact email", res.Checked, res.Found)
	return res, nil
}
