package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	tclient "go.temporal.io/sdk/client"

	"docflow/internal/activities"
	"docflow/internal/config"
	"docflow/internal/document"
	"docflow/internal/models"
	"docflow/internal/pipeline"
	"docflow/internal/storage"
	"docflow/internal/workflows"
)

type Server struct {
	cfg        config.Config
	db         *storage.DB
	jobRepo    *storage.JobRepo
	docRepo    *storage.DocumentRepo
	dispatcher *pipeline.Dispatcher
	temporal   tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	acts, err := activities.New(cfg, db)
	if err != nil {
		panic(err)
	}

	var tc tclient.Client
	if cfg.TemporalAddress != "" {
		tc, err = tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			panic(err)
		}
	} else {
		log.Printf("no temporal address configured, processing documents synchronously")
	}

	runner := pipeline.NewRunner(acts, storage.NewJobRepo(db))
	return &Server{
		cfg:        cfg,
		db:         db,
		jobRepo:    storage.NewJobRepo(db),
		docRepo:    storage.NewDocumentRepo(db),
		dispatcher: pipeline.NewDispatcher(cfg, db, runner, tc),
		temporal:   tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents/process", s.handleProcessDocument)
	mux.HandleFunc("/jobs/", s.handleJob)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type processRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	SourceURL  string `json:"source_url"`
	Options    struct {
		ForceOCR     bool   `json:"force_ocr,omitempty"`
		Pages        []int  `json:"pages,omitempty"`
		Language     string `json:"language,omitempty"`
		OutputFormat string `json:"output_format,omitempty"`
		Preferred    string `json:"preferred_provider,omitempty"`
	} `json:"options"`
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.SourceURL) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("source_url is required"))
		return
	}
	jobID, err := s.dispatcher.Dispatch(r.Context(), pipeline.Request{
		DocumentID: req.DocumentID,
		CompanyID:  req.CompanyID,
		UserID:     req.UserID,
		SourceURL:  req.SourceURL,
		Options: document.Options{
			ForceOCR:     req.Options.ForceOCR,
			Pages:        req.Options.Pages,
			Language:     req.Options.Language,
			OutputFormat: req.Options.OutputFormat,
			Preferred:    document.Provider(req.Options.Preferred),
		},
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID, "status": job.Status})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	job, err := s.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("job not found"))
		return
	}
	resp := map[string]any{"job": job}
	if s.temporal != nil && job.Status == models.JobStatusProcessing {
		if qr, qErr := s.temporal.QueryWorkflow(r.Context(), "docjob-"+jobID, "", workflows.QueryGetDocumentStatus); qErr == nil {
			var progress workflows.DocumentStatus
			if qr.Get(&progress) == nil {
				resp["progress"] = progress
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "DF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "DF-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "DF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "DF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "DF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "DF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "DF-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "source_url is required"):
			msg = "A source_url is required."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(low, "job not found"):
			msg = "No job exists with that ID."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
