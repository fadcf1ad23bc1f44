package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/ingestion"
)

// Run steps, in order.
const (
	StepScrape = "scrape"
	StepStats  = "stats"
	StepNext   = "next"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// RunResult holds what a full run produced.
type RunResult struct {
	Scrape *ingestion.Result
	Stats  *db.Stats
	Next   *db.Job
}

func emitProgress(cb ProgressCallback, step, message string, content any) {
	if cb != nil {
		cb(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run scrapes, reads the counters and picks the next listing. A failed
// scrape is reported and the run continues on what is already stored.
func (s *Service) Run(ctx context.Context, onProgress ProgressCallback) (*RunResult, error) {
	out := &RunResult{}

	emitProgress(onProgress, StepScrape, "Hämtar nya jobb...", nil)
	res, err := s.Scrape(ctx)
	if err != nil {
		emitProgress(onProgress, StepScrape, fmt.Sprintf("Scraping misslyckades: %v", err), nil)
	} else {
		out.Scrape = res
		emitProgress(onProgress, StepScrape, fmt.Sprintf("%d jobb sparade", res.Stored), res)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to read stats: %w", err)
	}
	out.Stats = stats
	emitProgress(onProgress, StepStats, "Statistik", stats)

	next, err := s.NextJob(ctx)
	if err != nil {
		return out, fmt.Errorf("failed to select next job: %w", err)
	}
	out.Next = next
	if next == nil {
		emitProgress(onProgress, StepNext, MsgNoMoreJobs, nil)
	} else {
		emitProgress(onProgress, StepNext, "Nästa jobb", next)
	}
	return out, nil
}
