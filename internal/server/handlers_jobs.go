package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/pipeline"
	"github.com/jonathan/job-autopilot/internal/types"
)

// msgJobNotFound is the 404 body for unknown listing ids.
const msgJobNotFound = "Job not found"

// jobFailure writes listing lookups that miss as "Job not found".
func (s *Server) jobFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pipeline.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, msgJobNotFound)
		return
	}
	s.failure(w, r, err)
}

func (s *Server) handleNextJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.svc.NextJob(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	resp := map[string]any{"success": true, "job": job}
	if job == nil {
		resp["message"] = pipeline.MsgNoMoreJobs
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", pipeline.DefaultListLimit)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	jobs, err := s.svc.ListJobs(r.Context(), limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(jobs),
		"jobs":    jobs,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.svc.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "job": job})
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := s.svc.Contact(r.Context(), r.PathValue("id"))
	if err != nil {
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":       true,
		"contact_email": contact.Email,
		"contact_name":  contact.Name,
		"company":       contact.Company,
	})
}

func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	letter, err := s.svc.GenerateLetter(r.Context(), r.PathValue("id"))
	if err != nil {
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":      true,
		"job_id":       letter.JobID,
		"cover_letter": letter.CoverLetter,
		"company":      letter.Company,
		"title":        letter.Title,
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Apply(r.Context(), r.PathValue("id"), req.CoverLetter, req.GmailDraftID)
	if err != nil {
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":        true,
		"application_id": res.ApplicationID,
		"status":         res.Status,
		"message":        res.Message,
	})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req types.SkipRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.Skip(r.Context(), r.PathValue("id"), req.Reason); err != nil {
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": pipeline.MsgSkipped,
		"reason":  req.Reason,
	})
}

// handleCreateDraft answers with the filer result. A missing recipient is
// a 200 with needs_email set so the client can ask for one. A mailbox that
// cannot be reached is reported in the result with a 200; rejected
// credentials are a 401.
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDraftRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CreateDraft(r.Context(), r.PathValue("id"), pipeline.DraftRequest{
		CoverLetter: req.CoverLetter,
		ToEmail:     req.ToEmail,
	})
	if err != nil {
		if res != nil {
			status := http.StatusOK
			if mail.IsAuthError(err) {
				status = http.StatusUnauthorized
			}
			s.jsonResponse(w, status, res)
			return
		}
		s.jobFailure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}
