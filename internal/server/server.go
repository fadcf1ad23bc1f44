package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/pipeline"
	"github.com/jonathan/job-autopilot/internal/server/middleware"
	"github.com/jonathan/job-autopilot/internal/server/ratelimit"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "job-autopilot"

// Server is the HTTP API in front of a pipeline.Service.
type Server struct {
	httpServer     *http.Server
	svc            *pipeline.Service
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	allowedOrigins []string
}

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	RateLimit      *ratelimit.Config
	JWT            *config.JWTConfig
}

// New creates a server. The JWT config is required; a nil rate limit config
// is read from the environment.
func New(svc *pipeline.Service, cfg Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("service is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		svc:            svc,
		rateLimiter:    ratelimit.NewLimiter(rl),
		jwtService:     NewJWTService(cfg.JWT),
		allowedOrigins: cfg.AllowedOrigins,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // sync scrape and draft filing are slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Listings
	mux.Handle("GET /api/jobs/next", protected(s.handleNextJob))
	mux.Handle("GET /api/jobs", protected(s.handleListJobs))
	mux.Handle("GET /api/jobs/{id}", protected(s.handleGetJob))
	mux.Handle("GET /api/jobs/{id}/contact", protected(s.handleGetContact))
	mux.Handle("POST /api/jobs/{id}/generate-letter", protected(s.handleGenerateLetter))
	mux.Handle("POST /api/jobs/{id}/apply", protected(s.handleApply))
	mux.Handle("POST /api/jobs/{id}/skip", protected(s.handleSkip))
	mux.Handle("POST /api/jobs/{id}/create-draft", protected(s.handleCreateDraft))

	// Applications
	mux.Handle("GET /api/applications", protected(s.handleListApplications))
	mux.Handle("PUT /api/applications/{id}/status", protected(s.handleUpdateStatus))

	// Bulk operations
	mux.Handle("POST /api/scrape", protected(s.handleScrape))
	mux.Handle("POST /api/scrape/sync", protected(s.handleScrapeSync))
	mux.Handle("POST /api/enrich-contacts", protected(s.handleEnrich))
	mux.Handle("POST /api/check-links", protected(s.handleCheckLinks))

	mux.Handle("GET /api/stats", protected(s.handleStats))
	mux.Handle("POST /api/gmail/draft", protected(s.handleGmailDraft))

	return s.withRecovery(s.withRateLimit(s.withLogging(s.withCORS(mux))))
}

// Start serves until SIGINT or SIGTERM, then drains requests and waits for
// background jobs.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.svc.Wait()
	log.Println("[server] stopped")
	return nil
}

// withRecovery turns a panic into a 500.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[server] panic in %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				s.errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows the configured origins. Requests from other origins get
// no CORS headers and are left to the browser to block.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(s.allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[http] %s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// extractClientID uses the remote IP. Forwarding headers are ignored since
// they can be set by the client.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	retry := int(info.RetryAfter.Seconds())
	if info.RetryAfter > 0 && retry == 0 {
		retry = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	log.Printf("[rate-limit] %s %s from %s: limit %d per %v", r.Method, r.URL.Path, s.extractClientID(r), info.Limit, info.Window)

	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"success":     false,
		"error":       "Rate limit exceeded. Please try again later.",
		"limit":       info.Limit,
		"retry_after": retry,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] failed to encode response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]any{"success": false, "error": message})
}

// failure logs err and writes it with the status HTTPStatus picks.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.errorResponse(w, status, err.Error())
}
