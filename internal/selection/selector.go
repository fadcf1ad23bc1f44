// Package selection picks the next listing to act on and fills in the
// contact and motivation the candidate needs before applying.
package selection

import (
	"context"
	"log"

	"github.com/jonathan/job-autopilot/internal/db"
)

// Store is the subset of the listing store selection reads and updates.
type Store interface {
	NextJob(ctx context.Context, allowedLocations []string) (*db.Job, error)
	GetJob(ctx context.Context, id string) (*db.Job, error)
	ListJobsMissingContact(ctx context.Context, limit int) ([]db.Job, error)
	UpdateJobEnrichment(ctx context.Context, id string, e db.Enrichment) error
}

// Selector returns the most pressing listing the candidate has not acted on.
type Selector struct {
	store     Store
	enricher  *Enricher
	locations []string
}

// NewSelector creates a selector limited to listings whose location contains
// one of locations. enricher may be nil, in which case listings are returned
// as stored.
func NewSelector(store Store, enricher *Enricher, locations []string) *Selector {
	return &Selector{store: store, enricher: enricher, locations: locations}
}

// Locations returns the allow-list the selector filters on.
func (s *Selector) Locations() []string {
	return s.locations
}

// Next returns the next listing, or nil when nothing qualifies. A listing
// without a why-perfect note is enriched first; enrichment failures are
// logged and the stored listing is returned.
func (s *Selector) Next(ctx context.Context) (*db.Job, error) {
	job, err := s.store.NextJob(ctx, s.locations)
	if err != nil {
		return nil, &Error{Message: "failed to select next job", Cause: err}
	}
	if job == nil {
		return nil, nil
	}

	if s.enricher == nil || db.Value(job.WhyPerfect) != "" {
		return job, nil
	}

	enriched, err := s.enricher.Enrich(ctx, job)
	if err != nil {
		log.Printf("[select] enrichment failed, returning job as stored: %v", err)
		return job, nil
	}
	return enriched, nil
}
