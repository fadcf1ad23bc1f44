// Package notify fans out job events to Telegram and a message broker.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonathan/job-autopilot/internal/db"
)

// Event types.
const (
	EventUrgentJob     = "job.urgent"
	EventScrapeDone    = "scrape.done"
	EventEnrichDone    = "enrich.done"
	EventDraftSaved    = "draft.saved"
	EventStatusChanged = "application.status"
)

// Event is something that happened to a listing or an application.
type Event struct {
	Type  string         `json:"type"`
	JobID string         `json:"job_id,omitempty"`
	Job   *db.Job        `json:"job,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
	At    time.Time      `json:"at"`
}

// Notifier delivers events somewhere.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Hub delivers every event to each registered notifier. Delivery failures
// are logged and never reach the caller.
type Hub struct {
	mu        sync.RWMutex
	notifiers []Notifier
	now       func() time.Time
}

// NewHub creates a hub with the given notifiers; nil entries are skipped.
func NewHub(notifiers ...Notifier) *Hub {
	h := &Hub{now: time.Now}
	for _, n := range notifiers {
		h.Add(n)
	}
	return h
}

// Add registers a notifier.
func (h *Hub) Add(n Notifier) {
	if n == nil {
		return
	}
	h.mu.Lock()
	h.notifiers = append(h.notifiers, n)
	h.mu.Unlock()
}

// Len returns the number of registered notifiers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.notifiers)
}

// Notify stamps e and delivers it.
func (h *Hub) Notify(ctx context.Context, e Event) {
	if h == nil {
		return
	}
	if e.At.IsZero() {
		e.At = h.now().UTC()
	}
	if e.JobID == "" && e.Job != nil {
		e.JobID = e.Job.ID
	}

	h.mu.RLock()
	notifiers := h.notifiers
	h.mu.RUnlock()

	for _, n := range notifiers {
		if err := n.Notify(ctx, e); err != nil {
			log.Printf("[notify] failed to deliver %s: %v", e.Type, err)
		}
	}
}

// UrgentJobs sends one EventUrgentJob per listing.
func (h *Hub) UrgentJobs(ctx context.Context, jobs []db.Job) {
	for i := range jobs {
		h.Notify(ctx, Event{Type: EventUrgentJob, Job: &jobs[i]})
	}
}
