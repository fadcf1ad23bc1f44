// Package server provides the HTTP API for job-autopilot.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/pipeline"
)

// HTTPStatus returns the HTTP status code for an error. Missing
// credentials and unknown failures are 500.
func HTTPStatus(err error) int {
	var validation *pipeline.ValidationError
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.Is(err, db.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, mail.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
