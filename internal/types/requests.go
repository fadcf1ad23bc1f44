// Package types holds the request bodies accepted by the HTTP API.
package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ApplyRequest marks a listing as applied to.
type ApplyRequest struct {
	CoverLetter  string `json:"cover_letter"`
	GmailDraftID string `json:"gmail_draft_id,omitempty"`
}

// SkipRequest passes on a listing.
type SkipRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// CreateDraftRequest files a draft for a listing. Both fields are optional;
// the letter is generated and the recipient taken from the listing when empty.
type CreateDraftRequest struct {
	CoverLetter string `json:"cover_letter,omitempty"`
	ToEmail     string `json:"to_email,omitempty" validate:"omitempty,email"`
}

// StatusRequest moves an application to another status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new letter_generated draft_saved sent interview rejected accepted skipped"`
	Notes  string `json:"notes,omitempty"`
}

// GmailDraftRequest files a free-form draft.
type GmailDraftRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body"`
	ToEmail string `json:"to_email" validate:"required,email"`
}

// Validate validates the ApplyRequest.
func (r *ApplyRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SkipRequest.
func (r *SkipRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CreateDraftRequest.
func (r *CreateDraftRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the StatusRequest.
func (r *StatusRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GmailDraftRequest.
func (r *GmailDraftRequest) Validate() error {
	return validate.Struct(r)
}
