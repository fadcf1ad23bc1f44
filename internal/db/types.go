package db

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Priority tags, ordered from most to least pressing.
const (
	PriorityUrgent    = "akut"
	PriorityStrategic = "strategisk"
	PriorityHidden    = "hidden"
)

// Link status values for a listing.
const (
	LinkActive = "active"
	LinkStale  = "stale"
)

// Sources a listing can come from.
const (
	SourcePlatsbanken = "platsbanken"
	SourceRSS         = "rss"
)

// Application statuses.
const (
	StatusNew             = "new"
	StatusLetterGenerated = "letter_generated"
	StatusDraftSaved      = "draft_saved"
	StatusSent            = "sent"
	StatusInterview       = "interview"
	StatusRejected        = "rejected"
	StatusAccepted        = "accepted"
	StatusSkipped         = "skipped"
)

// AdURLPrefix is the public page of a Platsbanken ad, followed by its id.
const AdURLPrefix = "https://arbetsformedlingen.se/platsbanken/annonser/"

// Daily counters kept in daily_stats.
const (
	StatJobsScraped      = "jobs_scraped"
	StatApplicationsSent = "applications_sent"
	StatLettersGenerated = "letters_generated"
	StatDraftsSaved      = "drafts_saved"
)

// ErrInvalidTransition is returned when an application status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// Job is a stored listing.
type Job struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Priority    string  `json:"priority"`
	Deadline    *string `json:"deadline"`

	// Enrichment, filled in after ingestion
	ContactEmail *string `json:"contact_email"`
	ContactName  *string `json:"contact_name"`
	WhyPerfect   *string `json:"why_perfect"`

	LinkStatus string    `json:"link_status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublicURL returns the listing URL, or the Platsbanken ad page when the
// listing has none.
func (j *Job) PublicURL() string {
	if j.URL != "" {
		return j.URL
	}
	return AdURLPrefix + j.ID
}

// Value returns *p, or "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Enrichment holds fields discovered after a listing was stored.
// Nil fields leave the stored value untouched.
type Enrichment struct {
	ContactEmail *string
	ContactName  *string
	WhyPerfect   *string
}

// Application is the candidate's recorded action on a listing.
type Application struct {
	ID           int64      `json:"id"`
	JobID        string     `json:"job_id"`
	Status       string     `json:"status"`
	CoverLetter  *string    `json:"cover_letter"`
	GmailDraftID *string    `json:"gmail_draft_id"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	FollowUpAt   *time.Time `json:"follow_up_at,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Joined from jobs
	Title   string `json:"job_title,omitempty"`
	Company string `json:"company,omitempty"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalJobs         int `json:"total_jobs"`
	PendingJobs       int `json:"pending_jobs"`
	TotalApplications int `json:"total_applications"`
	SentApplications  int `json:"sent_applications"`
	Interviews        int `json:"interviews"`
	DeadlineToday     int `json:"deadline_today"`
}

// transitions lists the statuses reachable from each status.
var transitions = map[string][]string{
	StatusNew:             {StatusLetterGenerated, StatusDraftSaved, StatusSkipped},
	StatusLetterGenerated: {StatusDraftSaved, StatusSent},
	StatusDraftSaved:      {StatusSent},
	StatusSent:            {StatusInterview, StatusRejected},
	StatusInterview:       {StatusAccepted, StatusRejected},
}

// IsValidStatus reports whether s is a known application status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusLetterGenerated, StatusDraftSaved, StatusSent,
		StatusInterview, StatusRejected, StatusAccepted, StatusSkipped:
		return true
	}
	return false
}

// CanTransition reports whether an application may move from one status to another.
// Re-stating the current status is allowed so notes can be updated.
func CanTransition(from, to string) bool {
	if !IsValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// HashID derives a listing id from its descriptive fields for sources without ids.
func HashID(title, company, url string) string {
	sum := md5.Sum([]byte(title + company + url))
	return hex.EncodeToString(sum[:])[:12]
}

// PriorityRank orders priorities for selection; lower is more pressing.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 1
	case PriorityStrategic:
		return 2
	default:
		return 3
	}
}

func validStat(name string) error {
	switch name {
	case StatJobsScraped, StatApplicationsSent, StatLettersGenerated, StatDraftsSaved:
		return nil
	}
	return fmt.Errorf("unknown daily stat %q", name)
}
