package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/pipeline"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &pipeline.NotFoundError{Resource: "job", ID: "1"}, http.StatusNotFound},
		{"validation", &pipeline.ValidationError{Field: "status", Message: "unknown"}, http.StatusBadRequest},
		{"invalid transition", fmt.Errorf("%w: skipped -> sent", db.ErrInvalidTransition), http.StatusBadRequest},
		{"mailbox auth", fmt.Errorf("failed to file draft: %w", mail.ErrAuth), http.StatusUnauthorized},
		{"busy", fmt.Errorf("scrape: %w", pipeline.ErrBusy), http.StatusConflict},
		{"config", &pipeline.ConfigError{Cause: errors.New("GMAIL_USER is required")}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
