package pipeline

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jonathan/job-autopilot/internal/cv"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/notify"
	"github.com/jonathan/job-autopilot/internal/rendering"
)

// minLetterLen is the shortest letter worth rendering and attaching.
const minLetterLen = 10

// DraftRequest overrides what CreateDraft would otherwise derive.
type DraftRequest struct {
	CoverLetter string
	ToEmail     string
}

// mailbox returns the filer or the reason it is missing.
func (s *Service) mailbox() (*mail.Filer, error) {
	if s.filer != nil {
		return s.filer, nil
	}
	cause := s.mailErr
	if cause == nil {
		cause = errors.New("mailbox not configured")
	}
	return nil, &ConfigError{Cause: cause}
}

// CreateDraft files an application draft for a listing: the pitch as body,
// the rendered letter and the category résumé as attachments. Without a
// recipient it returns a NeedsEmail result and files nothing. A filed draft
// is recorded as draft_saved with its Message-ID.
func (s *Service) CreateDraft(ctx context.Context, jobID string, req DraftRequest) (*mail.Result, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	to := strings.TrimSpace(req.ToEmail)
	if to == "" {
		to = strings.TrimSpace(db.Value(job.ContactEmail))
	}
	if to == "" {
		return &mail.Result{NeedsEmail: true, Message: mail.NeedsEmailMessage}, nil
	}

	filer, err := s.mailbox()
	if err != nil {
		return nil, err
	}

	category := s.writer.Category(job)
	pitch := s.writer.Pitch(ctx, job)
	letter := req.CoverLetter
	if strings.TrimSpace(letter) == "" {
		letter = s.writer.Letter(ctx, job)
	}

	draft := mail.Draft{
		To:      to,
		Subject: mail.Subject(job.Title, s.profile.Name),
		Body:    pitch,
	}

	if len(strings.TrimSpace(letter)) > minLetterLen {
		pdf, err := rendering.RenderLetter(rendering.Letter{
			Sender: rendering.Sender{
				Name:  s.profile.Name,
				Town:  s.profile.Town,
				Phone: s.profile.Phone,
				Email: s.profile.Email,
			},
			Company: job.Company,
			Title:   job.Title,
			Body:    letter,
			Date:    s.now(),
		})
		if err != nil {
			log.Printf("[draft] failed to render letter for %s: %v", job.ID, err)
		} else {
			draft.Attachments = append(draft.Attachments, mail.Attachment{
				Name:        rendering.FileName(s.profile.Name),
				ContentType: "application/pdf",
				Data:        pdf,
			})
		}
	}

	if s.cvs != nil {
		file, err := s.cvs.Load(ctx, category)
		switch {
		case errors.Is(err, cv.ErrNotFound):
			log.Printf("[draft] no cv for category %s: %v", category, err)
		case err != nil:
			log.Printf("[draft] failed to load cv for category %s: %v", category, err)
		default:
			draft.Attachments = append(draft.Attachments, mail.Attachment{
				Name:        file.Name,
				ContentType: "application/pdf",
				Data:        file.Data,
			})
		}
	}

	res, err := filer.File(ctx, draft)
	if err != nil {
		return res, err
	}

	if _, err := s.record(ctx, job, db.ApplicationInput{
		JobID:        job.ID,
		Status:       db.StatusDraftSaved,
		CoverLetter:  letter,
		GmailDraftID: res.DraftID,
	}); err != nil {
		log.Printf("[draft] draft filed but application for %s not recorded: %v", job.ID, err)
	}
	s.countStat(ctx, db.StatDraftsSaved)
	s.hub.Notify(ctx, notify.Event{
		Type: notify.EventDraftSaved,
		Job:  job,
		Data: map[string]any{"to_email": res.ToEmail, "subject": res.Subject, "category": category},
	})
	return res, nil
}

// DirectDraftResult is returned by DirectDraft.
type DirectDraftResult struct {
	Message   string `json:"message"`
	DraftsURL string `json:"drafts_url"`
	DraftID   string `json:"draft_id,omitempty"`
}

// DirectDraft files a plain draft that is not tied to a listing.
func (s *Service) DirectDraft(ctx context.Context, subject, body, to string) (*DirectDraftResult, error) {
	filer, err := s.mailbox()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(to) == "" {
		return nil, &ValidationError{Field: "to_email", Message: "recipient is required"}
	}
	res, err := filer.File(ctx, mail.Draft{To: to, Subject: subject, Body: body})
	if err != nil {
		return nil, err
	}
	s.countStat(ctx, db.StatDraftsSaved)
	return &DirectDraftResult{Message: MsgDirectDraft, DraftsURL: GmailDraftsURL, DraftID: res.DraftID}, nil
}
