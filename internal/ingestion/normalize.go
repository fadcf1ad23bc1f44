// Package ingestion pulls job listings from Platsbanken and RSS feeds and
// turns them into stored listings.
package ingestion

import (
	"strings"
	"time"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
)

// UrgentDays is the most whole days left before a deadline for a listing to
// be urgent. Partial days are dropped, so 3 days and 23 hours counts as 3.
const UrgentDays = 3

const day = 24 * time.Hour

// MaxDescriptionRunes caps stored descriptions.
const MaxDescriptionRunes = 2000

// Fallback values for ads with missing fields.
const (
	UnknownTitle    = "Okänd titel"
	UnknownCompany  = "Okänt företag"
	DefaultLocation = "Sverige"
)

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDeadline parses the deadline formats Platsbanken and feeds use.
// Times without a zone are read as UTC.
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClassifyPriority tags a listing akut when at most UrgentDays whole days
// remain before its deadline (or it has passed) and strategisk otherwise,
// including when the deadline is missing or unparseable. It never returns
// hidden.
func ClassifyPriority(deadline *string, now time.Time) string {
	if deadline == nil {
		return db.PriorityStrategic
	}
	t, ok := ParseDeadline(*deadline)
	if !ok {
		return db.PriorityStrategic
	}
	left := t.Sub(now)
	if left < 0 {
		return db.PriorityUrgent
	}
	if int(left/day) <= UrgentDays {
		return db.PriorityUrgent
	}
	return db.PriorityStrategic
}

// TruncateRunes shortens s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Normalize converts a Platsbanken ad into a listing. queryLocation is the
// location the ad was searched with, used when the ad names none.
func Normalize(ad Ad, queryLocation string, now time.Time) db.Job {
	title := strings.TrimSpace(ad.Title)
	if title == "" {
		title = UnknownTitle
	}
	company := strings.TrimSpace(ad.WorkplaceName)
	if company == "" {
		company = UnknownCompany
	}
	location := strings.TrimSpace(ad.Workplace)
	if location == "" {
		location = strings.TrimSpace(queryLocation)
	}
	if location == "" {
		location = DefaultLocation
	}

	id := string(ad.ID)
	if id == "" {
		id = db.HashID(title, company, "")
	}

	var deadline *string
	if d := strings.TrimSpace(ad.LastApplicationDate); d != "" {
		deadline = &d
	}

	return db.Job{
		ID:          id,
		Title:       title,
		Company:     company,
		Location:    location,
		Description: TruncateRunes(fetch.StripHTML(ad.Description), MaxDescriptionRunes),
		URL:         db.AdURLPrefix + id,
		Source:      db.SourcePlatsbanken,
		Priority:    ClassifyPriority(deadline, now),
		Deadline:    deadline,
		LinkStatus:  db.LinkActive,
	}
}
