package db

import (
	"context"
	"fmt"
	"time"
)

// GetStats computes the dashboard counters. today selects which deadlines
// count as due today.
func (db *DB) GetStats(ctx context.Context, today time.Time) (*Stats, error) {
	var s Stats
	err := db.queryRow(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM jobs WHERE link_status = 'active'),
		     (SELECT COUNT(*) FROM jobs j
		         WHERE j.link_status = 'active'
		           AND NOT EXISTS (SELECT 1 FROM applications a WHERE a.job_id = j.id)),
		     (SELECT COUNT(*) FROM applications WHERE status <> 'skipped'),
		     (SELECT COUNT(*) FROM applications WHERE status = 'sent'),
		     (SELECT COUNT(*) FROM applications WHERE status = 'interview'),
		     (SELECT COUNT(*) FROM jobs WHERE link_status = 'active' AND deadline LIKE ?)`,
		today.Format("2006-01-02")+"%",
	).Scan(&s.TotalJobs, &s.PendingJobs, &s.TotalApplications, &s.SentApplications, &s.Interviews, &s.DeadlineToday)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &s, nil
}

// IncrementDailyStat adds delta to one of the per-day counters.
func (db *DB) IncrementDailyStat(ctx context.Context, day time.Time, name string, delta int) error {
	if err := validStat(name); err != nil {
		return err
	}
	// name is one of the fixed column names checked above.
	_, err := db.exec(ctx,
		`INSERT INTO daily_stats (date, `+name+`) VALUES (?, ?)
		 ON CONFLICT (date) DO UPDATE SET `+name+` = daily_stats.`+name+` + excluded.`+name,
		day.Format("2006-01-02"), delta,
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", name, err)
	}
	return nil
}

// DailyStat is one day's counters.
type DailyStat struct {
	Date             string `json:"date"`
	JobsScraped      int    `json:"jobs_scraped"`
	ApplicationsSent int    `json:"applications_sent"`
	LettersGenerated int    `json:"letters_generated"`
	DraftsSaved      int    `json:"drafts_saved"`
}

// GetDailyStat returns the counters for a day, zeroed when nothing was recorded.
func (db *DB) GetDailyStat(ctx context.Context, day time.Time) (*DailyStat, error) {
	d := DailyStat{Date: day.Format("2006-01-02")}
	err := db.queryRow(ctx,
		`SELECT jobs_scraped, applications_sent, letters_generated, drafts_saved
		 FROM daily_stats WHERE date = ?`, d.Date,
	).Scan(&d.JobsScraped, &d.ApplicationsSent, &d.LettersGenerated, &d.DraftsSaved)
	if err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("failed to get daily stat: %w", err)
	}
	return &d, nil
}
