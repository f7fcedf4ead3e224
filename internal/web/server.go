// Package web exposes the contact endpoint and health check over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neolimp/leadfilter/internal/pipeline"
)

type Server struct {
	pipeline   *pipeline.Pipeline
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer(p *pipeline.Pipeline, addr string, logger *zap.Logger) *Server {
	s := &Server{
		pipeline: p,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/contact", s.handleContact)
	r.Get("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleContact accepts the form either as JSON or as a classic form post,
// since the site submits both depending on the page.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	sub, err := decodeSubmission(r)
	if err != nil {
		s.logger.Warn("bad contact payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, pipeline.Response{
			OK:      false,
			Reasons: []string{},
			Error:   "payload_invalido",
		})
		return
	}

	resp, err := s.pipeline.Process(r.Context(), sub)
	switch {
	case errors.Is(err, pipeline.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, pipeline.ErrNotifyFailed):
		// The classification completed; the response still carries it so the
		// caller knows what happened before the send failed.
		writeJSON(w, http.StatusInternalServerError, resp)
	case err != nil:
		s.logger.Error("pipeline failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, pipeline.Response{
			OK:      false,
			Reasons: []string{},
			Error:   "error_interno",
		})
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func decodeSubmission(r *http.Request) (pipeline.Submission, error) {
	var sub pipeline.Submission

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			return sub, fmt.Errorf("failed to decode json body: %w", err)
		}
		return sub, nil
	}

	if err := r.ParseForm(); err != nil {
		return sub, fmt.Errorf("failed to parse form: %w", err)
	}
	sub.Nombre = r.PostFormValue("nombre")
	sub.Empresa = r.PostFormValue("empresa")
	sub.Email = r.PostFormValue("email")
	sub.Telefono = r.PostFormValue("telefono")
	sub.Servicio = r.PostFormValue("servicio")
	sub.Mensaje = r.PostFormValue("mensaje")
	sub.Origen = r.PostFormValue("origen")
	sub.Website = r.PostFormValue("website")
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
