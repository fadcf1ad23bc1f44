// Package mail composes application e-mails and files them as drafts in an
// IMAP mailbox.
package mail

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// MessageIDDomain is the right-hand side of generated Message-IDs.
const MessageIDDomain = "job-autopilot.local"

// Attachment is a file attached to a draft.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Draft is an application e-mail before it is filed.
type Draft struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Subject returns the subject line for an application.
func Subject(title, name string) string {
	return fmt.Sprintf("Ansökan: %s - %s", title, name)
}

// NewMessageID returns a unique Message-ID without angle brackets.
func NewMessageID() string {
	return uuid.NewString() + "@" + MessageIDDomain
}

// Compose renders a draft as a MIME message: a text/plain body followed by
// one part per attachment.
func Compose(from string, d Draft, messageID string, date time.Time) ([]byte, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	toAddr, err := mail.ParseAddress(strings.TrimSpace(d.To))
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", d.To, err)
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{fromAddr})
	h.SetAddressList("To", []*mail.Address{toAddr})
	h.SetSubject(d.Subject)
	h.SetMessageID(messageID)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create body: %w", err)
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := io.WriteString(pw, d.Body); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to write body: %w", err)
	}

	for _, a := range d.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/pdf"
		}
		var ah mail.AttachmentHeader
		ah.SetContentType(contentType, nil)
		ah.SetFilename(a.Name)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment %s: %w", a.Name, err)
		}
		if _, err := aw.Write(a.Data); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Name, err)
		}
		if err := aw.Close(); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}
