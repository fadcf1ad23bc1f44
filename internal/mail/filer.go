package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Result is the outcome of filing a draft.
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	NeedsEmail bool   `json:"needs_email,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	ToEmail    string `json:"to_email,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

// NeedsEmailMessage is shown when a draft has no recipient.
const NeedsEmailMessage = "Ange email-adress för mottagaren"

// Filer composes drafts and hands them to an Appender.
type Filer struct {
	drafts   Appender
	from     string
	fallback string
	now      func() time.Time
}

// NewFiler creates a filer sending as from. fallbackBody replaces an empty
// draft body.
func NewFiler(drafts Appender, from, fallbackBody string) *Filer {
	return &Filer{drafts: drafts, from: from, fallback: fallbackBody, now: time.Now}
}

// File composes and appends d. A draft without recipient returns NeedsEmail
// without contacting the mailbox. Failures come back both in the result and
// as the error, which wraps ErrAuth for rejected credentials.
func (f *Filer) File(ctx context.Context, d Draft) (*Result, error) {
	d.To = strings.TrimSpace(d.To)
	if d.To == "" {
		return &Result{NeedsEmail: true, Message: NeedsEmailMessage}, nil
	}
	if strings.TrimSpace(d.Body) == "" {
		d.Body = f.fallback
	}

	id := NewMessageID()
	now := f.now()
	msg, err := Compose(f.from, d, id, now)
	if err != nil {
		return &Result{Error: err.Error()}, err
	}

	if err := f.drafts.AppendDraft(ctx, msg, now); err != nil {
		log.Printf("[draft] failed to file draft to %s: %v", d.To, err)
		return &Result{Error: err.Error()}, err
	}

	log.Printf("[draft] filed draft to %s with %d attachments", d.To, len(d.Attachments))
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Utkast skapat till %s med bilagor", d.To),
		DraftID: "<" + id + ">",
		ToEmail: d.To,
		Subject: d.Subject,
	}, nil
}

// IsAuthError reports whether err is a rejected mailbox login.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuth)
}
