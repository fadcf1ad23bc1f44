package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const jobColumns = `j.id, j.title, j.company, j.location, j.description, j.url, j.source,
	j.priority, j.deadline, j.contact_email, j.contact_name, j.why_perfect,
	j.link_status, j.created_at, j.updated_at`

// priorityOrder sorts akut first, then strategisk, then everything else,
// with missing deadlines after dated ones.
const priorityOrder = `CASE j.priority WHEN 'akut' THEN 1 WHEN 'strategisk' THEN 2 ELSE 3 END,
	CASE WHEN j.deadline IS NULL OR j.deadline = '' THEN 1 ELSE 0 END,
	j.deadline ASC, j.created_at ASC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var deadline, email, name, why sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.URL, &j.Source,
		&j.Priority, &deadline, &email, &name, &why,
		&j.LinkStatus, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.Deadline = nullString(deadline)
	j.ContactEmail = nullString(email)
	j.ContactName = nullString(name)
	j.WhyPerfect = nullString(why)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]Job, error) {
	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// UpsertJob inserts a listing or overwrites the stored row with the same id.
// Scraped fields from the new write win. Enrichment fields are kept when the
// new write carries none, and created_at is never changed.
func (db *DB) UpsertJob(ctx context.Context, job *Job) error {
	if job.ID == "" {
		return fmt.Errorf("failed to upsert job: id is empty")
	}
	if job.Priority == "" {
		job.Priority = PriorityStrategic
	}
	if job.LinkStatus == "" {
		job.LinkStatus = LinkActive
	}

	now := db.timestamp()
	_, err := db.exec(ctx,
		`INSERT INTO jobs (id, title, company, location, description, url, source, priority, deadline,
		                   contact_email, contact_name, why_perfect, link_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     title = excluded.title,
		     company = excluded.company,
		     location = excluded.location,
		     description = excluded.description,
		     url = excluded.url,
		     source = excluded.source,
		     priority = excluded.priority,
		     deadline = excluded.deadline,
		     contact_email = COALESCE(excluded.contact_email, jobs.contact_email),
		     contact_name = COALESCE(excluded.contact_name, jobs.contact_name),
		     why_perfect = COALESCE(excluded.why_perfect, jobs.why_perfect),
		     link_status = excluded.link_status,
		     updated_at = excluded.updated_at`,
		job.ID, job.Title, job.Company, job.Location, job.Description, job.URL, job.Source,
		job.Priority, job.Deadline, job.ContactEmail, job.ContactName, job.WhyPerfect,
		job.LinkStatus, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob retrieves a listing by id. It returns nil, nil when none exists.
func (db *DB) GetJob(ctx context.Context, id string) (*Job, error) {
	j, err := scanJob(db.queryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// ListJobs returns every stored listing, stale ones included, newest first.
func (db *DB) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.query(ctx,
		`SELECT `+jobColumns+` FROM jobs j
		 ORDER BY j.created_at DESC, j.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanJobs(rows)
}

// ListActiveJobs returns active listings, oldest first, for link checking.
func (db *DB) ListActiveJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.query(ctx,
		`SELECT `+jobColumns+` FROM jobs j
		 WHERE j.link_status = 'active'
		 ORDER BY j.updated_at ASC, j.id ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanJobs(rows)
}

// ListJobsMissingContact returns active listings without a contact email.
func (db *DB) ListJobsMissingContact(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.query(ctx,
		`SELECT `+jobColumns+` FROM jobs j
		 WHERE j.link_status = 'active' AND (j.contact_email IS NULL OR j.contact_email = '')
		 ORDER BY `+priorityOrder+`
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs missing contact: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanJobs(rows)
}

// NextJob returns the most pressing active listing that has no application
// and whose location contains one of allowedLocations (case-insensitive).
// An empty allow-list matches every location. It returns nil, nil when
// nothing qualifies.
func (db *DB) NextJob(ctx context.Context, allowedLocations []string) (*Job, error) {
	rows, err := db.query(ctx,
		`SELECT `+jobColumns+` FROM jobs j
		 LEFT JOIN applications a ON a.job_id = j.id
		 WHERE a.id IS NULL AND j.link_status = 'active'
		 ORDER BY `+priorityOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to select next job: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Location matching happens here because SQLite's LOWER only folds ASCII.
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if LocationAllowed(j.Location, allowedLocations) {
			return j, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select next job: %w", err)
	}
	return nil, nil
}

// LocationAllowed reports whether location contains any allowed place name.
func LocationAllowed(location string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	loc := strings.ToLower(location)
	for _, place := range allowed {
		if place != "" && strings.Contains(loc, strings.ToLower(place)) {
			return true
		}
	}
	return false
}

// UpdateJobEnrichment stores discovered contact details and the why-perfect note.
// Nil fields are left as they are.
func (db *DB) UpdateJobEnrichment(ctx context.Context, id string, e Enrichment) error {
	res, err := db.exec(ctx,
		`UPDATE jobs SET
		     contact_email = COALESCE(?, contact_email),
		     contact_name = COALESCE(?, contact_name),
		     why_perfect = COALESCE(?, why_perfect),
		     updated_at = ?
		 WHERE id = ?`,
		e.ContactEmail, e.ContactName, e.WhyPerfect, db.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job enrichment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// SetLinkStatus marks a listing active or stale.
func (db *DB) SetLinkStatus(ctx context.Context, id, status string) error {
	if status != LinkActive && status != LinkStale {
		return fmt.Errorf("invalid link status %q", status)
	}
	res, err := db.exec(ctx,
		`UPDATE jobs SET link_status = ?, updated_at = ? WHERE id = ?`,
		status, db.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set link status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}
