package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/history"
	"github.com/leaderofARS/anti-phishing-system/internal/override"
)

type analyzeRequest struct {
	URL     string `json:"url"`
	Context string `json:"context,omitempty"`
}

type reportRequest struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
	UserID string `json:"user_id,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Anti-Phishing API",
		"version": s.version,
		"status":  "active",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	v, err := s.engine.Analyze(r.Context(), req.URL, req.Context)
	if err != nil {
		loggerFrom(r.Context(), s.logger).Error("analysis failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, analysisFailedDetail(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// analysisFailedDetail renders err as "Analysis failed: <cause>".
func analysisFailedDetail(err error) string {
	cause := strings.TrimPrefix(err.Error(), engine.ErrAnalysisFailed.Error()+": ")
	return "Analysis failed: " + cause
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimPrefix(r.URL.Path, checkPrefix)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	if target == "" {
		writeError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.QuickCheck(target))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.URL == "" || req.Reason == "" {
		writeError(w, http.StatusUnprocessableEntity, "url and reason are required")
		return
	}

	loggerFrom(r.Context(), s.logger).Info("phishing report",
		"url", req.URL,
		"reason", req.Reason,
		"user_id", req.UserID,
	)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Report received",
		"url":     req.URL,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}

	records := s.engine.History(limit)
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ModelInfo())
}

func (s *Server) handleAddOverride(kind override.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := r.URL.Query().Get("domain")
		if strings.TrimSpace(domain) == "" {
			writeError(w, http.StatusUnprocessableEntity, "domain is required")
			return
		}

		res, err := s.engine.AddOverride(r.Context(), kind, domain, "api")
		if err != nil {
			loggerFrom(r.Context(), s.logger).Error("failed to add override", "list", kind.String(), "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleListOverrides(kind override.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domains, err := s.engine.ListOverrides(kind)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if domains == nil {
			domains = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"domains": domains})
	}
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
