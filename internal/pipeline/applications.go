package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/notify"
)

// CoverLetterPreviewRunes caps the cover letter shown in application lists.
const CoverLetterPreviewRunes = 200

// Messages returned to the user.
const (
	MsgApplySaved   = "Ansökan sparad!"
	MsgApplyDraft   = " Utkast finns i Gmail."
	MsgSkipped      = "Jobb överhoppat"
	MsgNoMoreJobs   = "Inga fler jobb just nu. Kör scraping för att hämta nya!"
	MsgDirectDraft  = "Gmail-utkast skapat!"
	GmailDraftsURL  = "https://mail.google.com/mail/u/0/#drafts"
	MsgScrapeAsync  = "Scraping startad i bakgrunden"
	MsgStatusUpdate = "Status uppdaterad"
)

// ApplyResult is the recorded application after Apply.
type ApplyResult struct {
	ApplicationID int64  `json:"application_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Apply records that the candidate applied to a listing: draft_saved when a
// draft id is given, letter_generated otherwise.
func (s *Service) Apply(ctx context.Context, jobID, coverLetter, draftID string) (*ApplyResult, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	status := db.StatusLetterGenerated
	msg := MsgApplySaved
	if strings.TrimSpace(draftID) != "" {
		status = db.StatusDraftSaved
		msg += MsgApplyDraft
	}

	id, err := s.record(ctx, job, db.ApplicationInput{
		JobID:        job.ID,
		Status:       status,
		CoverLetter:  coverLetter,
		GmailDraftID: draftID,
	})
	if err != nil {
		return nil, err
	}
	return &ApplyResult{ApplicationID: id, Status: status, Message: msg}, nil
}

// Skip records that the candidate passed on a listing.
func (s *Service) Skip(ctx context.Context, jobID, reason string) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	_, err = s.record(ctx, job, db.ApplicationInput{JobID: job.ID, Status: db.StatusSkipped, Notes: reason})
	return err
}

// record saves an application after checking the move from the listing's
// current application status, then announces it.
func (s *Service) record(ctx context.Context, job *db.Job, in db.ApplicationInput) (int64, error) {
	existing, err := s.store.GetApplicationByJob(ctx, job.ID)
	if err != nil {
		return 0, err
	}
	from := db.StatusNew
	if existing != nil {
		from = existing.Status
	}
	if !db.CanTransition(from, in.Status) {
		return 0, fmt.Errorf("%w: %s -> %s", db.ErrInvalidTransition, from, in.Status)
	}

	id, err := s.store.SaveApplication(ctx, in)
	if err != nil {
		return 0, err
	}
	s.hub.Notify(ctx, notify.Event{
		Type: notify.EventStatusChanged,
		Job:  job,
		Data: map[string]any{"application_id": id, "status": in.Status, "notes": in.Notes},
	})
	return id, nil
}

// UpdateStatus moves an application along the status machine.
func (s *Service) UpdateStatus(ctx context.Context, applicationID int64, status, notes string) (*db.Application, error) {
	if !db.IsValidStatus(status) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	app, err := s.store.UpdateApplicationStatus(ctx, applicationID, status, notes)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Resource: "application", ID: strconv.FormatInt(applicationID, 10)}
	}

	if status == db.StatusSent {
		s.countStat(ctx, db.StatApplicationsSent)
	}
	job, err := s.store.GetJob(ctx, app.JobID)
	if err == nil && job != nil {
		s.hub.Notify(ctx, notify.Event{
			Type: notify.EventStatusChanged,
			Job:  job,
			Data: map[string]any{"application_id": app.ID, "status": app.Status, "notes": db.Value(app.Notes)},
		})
	}
	return app, nil
}

// Applications lists every application with its cover letter shortened for
// display.
func (s *Service) Applications(ctx context.Context) ([]db.Application, error) {
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if apps[i].CoverLetter != nil {
			preview := PreviewLetter(*apps[i].CoverLetter)
			apps[i].CoverLetter = &preview
		}
	}
	return apps, nil
}

// PreviewLetter cuts letters longer than CoverLetterPreviewRunes and marks
// the cut with "...".
func PreviewLetter(letter string) string {
	r := []rune(letter)
	if len(r) <= CoverLetterPreviewRunes {
		return letter
	}
	return string(r[:CoverLetterPreviewRunes]) + "..."
}
