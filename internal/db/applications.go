package db

import (
	"context"
	"database/sql"
	"fmt"
)

// ApplicationInput carries the fields recorded when acting on a listing.
type ApplicationInput struct {
	JobID        string
	Status       string
	CoverLetter  string
	GmailDraftID string
	Notes        string
}

// SaveApplication records an action on a listing and returns the application id.
// A listing has at most one application: when one exists it is updated in place
// and keeps its id and created_at.
func (db *DB) SaveApplication(ctx context.Context, in ApplicationInput) (int64, error) {
	if in.JobID == "" {
		return 0, fmt.Errorf("failed to save application: job id is empty")
	}
	if !IsValidStatus(in.Status) {
		return 0, fmt.Errorf("failed to save application: unknown status %q", in.Status)
	}

	existing, err := db.GetApplicationByJob(ctx, in.JobID)
	if err != nil {
		return 0, err
	}

	now := db.timestamp()
	var sentAt any
	if in.Status == StatusSent {
		sentAt = now
	}

	if existing != nil {
		_, err := db.exec(ctx,
			`UPDATE applications SET
			     status = ?,
			     cover_letter = COALESCE(?, cover_letter),
			     gmail_draft_id = COALESCE(?, gmail_draft_id),
			     notes = COALESCE(?, notes),
			     sent_at = COALESCE(?, sent_at),
			     updated_at = ?
			 WHERE id = ?`,
			in.Status, emptyToNil(in.CoverLetter), emptyToNil(in.GmailDraftID), emptyToNil(in.Notes),
			sentAt, now, existing.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update application: %w", err)
		}
		return existing.ID, nil
	}

	var id int64
	err = db.queryRow(ctx,
		`INSERT INTO applications (job_id, status, cover_letter, gmail_draft_id, notes, sent_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		in.JobID, in.Status, emptyToNil(in.CoverLetter), emptyToNil(in.GmailDraftID), emptyToNil(in.Notes),
		sentAt, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save application: %w", err)
	}
	return id, nil
}

// GetApplication retrieves an application by id. It returns nil, nil when none exists.
func (db *DB) GetApplication(ctx context.Context, id int64) (*Application, error) {
	a, err := scanApplication(db.queryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications a
		 LEFT JOIN jobs j ON j.id = a.job_id
		 WHERE a.id = ?`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// GetApplicationByJob retrieves the application for a listing, or nil, nil.
func (db *DB) GetApplicationByJob(ctx context.Context, jobID string) (*Application, error) {
	a, err := scanApplication(db.queryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications a
		 LEFT JOIN jobs j ON j.id = a.job_id
		 WHERE a.job_id = ?
		 ORDER BY a.id ASC LIMIT 1`, jobID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application for job: %w", err)
	}
	return a, nil
}

// UpdateApplicationStatus moves an application to a new status, enforcing the
// allowed transitions. Notes are replaced when non-empty.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id int64, status, notes string) (*Application, error) {
	current, err := db.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	now := db.timestamp()
	var sentAt any
	if status == StatusSent && current.SentAt == nil {
		sentAt = now
	}

	_, err = db.exec(ctx,
		`UPDATE applications SET
		     status = ?,
		     notes = COALESCE(?, notes),
		     sent_at = COALESCE(?, sent_at),
		     updated_at = ?
		 WHERE id = ?`,
		status, emptyToNil(notes), sentAt, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return db.GetApplication(ctx, id)
}

// ListApplications returns all applications with their listing's title and
// company, newest first.
func (db *DB) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := db.query(ctx,
		`SELECT `+applicationColumns+` FROM applications a
		 LEFT JOIN jobs j ON j.id = a.job_id
		 ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

const applicationColumns = `a.id, a.job_id, a.status, a.cover_letter, a.gmail_draft_id,
	a.sent_at, a.follow_up_at, a.notes, a.created_at, a.updated_at,
	COALESCE(j.title, ''), COALESCE(j.company, '')`

func scanApplication(row rowScanner) (*Application, error) {
	var a Application
	var letter, draftID, sentAt, followUp, notes sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&a.ID, &a.JobID, &a.Status, &letter, &draftID,
		&sentAt, &followUp, &notes, &createdAt, &updatedAt,
		&a.Title, &a.Company); err != nil {
		return nil, err
	}
	a.CoverLetter = nullString(letter)
	a.GmailDraftID = nullString(draftID)
	a.SentAt = parseNullTime(sentAt)
	a.FollowUpAt = parseNullTime(followUp)
	a.Notes = nullString(notes)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
