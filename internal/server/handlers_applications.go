package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/job-autopilot/internal/pipeline"
	"github.com/jonathan/job-autopilot/internal/types"
)

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.svc.Applications(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":      true,
		"count":        len(apps),
		"applications": apps,
	})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.errorResponse(w, http.StatusBadRequest, "invalid application id")
		return
	}

	var req types.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.svc.UpdateStatus(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     pipeline.MsgStatusUpdate,
		"application": app,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func (s *Server) handleGmailDraft(w http.ResponseWriter, r *http.Request) {
	var req types.GmailDraftRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.DirectDraft(r.Context(), req.Subject, req.Body, req.ToEmail)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    res.Message,
		"drafts_url": res.DraftsURL,
		"draft_id":   res.DraftID,
	})
}
