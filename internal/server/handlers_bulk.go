package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/job-autopilot/internal/pipeline"
	"github.com/jonathan/job-autopilot/internal/selection"
)

const statusRunning = "running"

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ScrapeAsync(); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": pipeline.MsgScrapeAsync,
		"status":  statusRunning,
	})
}

func (s *Server) handleScrapeSync(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Scrape(r.Context())
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":      true,
		"jobs_scraped": res.Stored,
		"new_jobs":     res.New,
		"message":      fmt.Sprintf("Scraping klar! %d jobb hittade.", res.Stored),
	})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", selection.DefaultEnrichLimit)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.EnrichAsync(limit); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Berikar upp till %d jobb med kontaktinfo", limit),
		"status":  statusRunning,
	})
}

func (s *Server) handleCheckLinks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", pipeline.DefaultLinkCheckLimit)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CheckLinks(r.Context(), limit)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"checked": res.Checked,
		"stale":   res.Stale,
	})
}
