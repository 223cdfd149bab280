// Package server exposes the processing pipeline over HTTP with JSON bodies.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tunde-oladipo/casefile-audit/constants"
	"github.com/tunde-oladipo/casefile-audit/internal/common"
	"github.com/tunde-oladipo/casefile-audit/internal/export"
	"github.com/tunde-oladipo/casefile-audit/internal/ingest"
	"github.com/tunde-oladipo/casefile-audit/internal/pipeline"
	"github.com/tunde-oladipo/casefile-audit/internal/store"
)

// Server wires the pipeline, store, and exporter behind an http.Handler.
type Server struct {
	processor *pipeline.Processor
	store     *store.Store
	exporter  *export.Service
	logger    *slog.Logger
	opts      pipeline.Options
	maxBody   int64
}

type Params struct {
	Processor *pipeline.Processor
	Store     *store.Store
	Exporter  *export.Service
	Logger    *slog.Logger
	Options   pipeline.Options
	// MaxRequestMB caps request bodies; zero means 32 MB.
	MaxRequestMB int
}

func New(p Params) *Server {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	maxMB := p.MaxRequestMB
	if maxMB <= 0 {
		maxMB = 32
	}
	return &Server{
		processor: p.Processor,
		store:     p.Store,
		exporter:  p.Exporter,
		logger:    p.Logger,
		opts:      p.Options,
		maxBody:   int64(maxMB) << 20,
	}
}

// Handler returns the route table for the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/export", s.handleExportRun)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type processRequest struct {
	SourceName       string        `json:"source_name"`
	Pages            []ingest.Page `json:"pages"`
	DocumentType     string        `json:"document_type,omitempty"`
	IncludePageDiags bool          `json:"include_page_diagnostics,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req processRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "pages must not be empty")
		return
	}
	if req.SourceName == "" {
		req.SourceName = "upload"
	}

	opts := s.opts
	opts.IncludePageDiagnostics = req.IncludePageDiags

	var res *pipeline.Result
	if req.DocumentType != "" && req.DocumentType != "auto" {
		texts := make([]string, len(req.Pages))
		for i, p := range req.Pages {
			texts[i] = p.Text
		}
		docType := constants.DocType(strings.ToUpper(req.DocumentType))
		res = s.processor.ProcessSingle(r.Context(), req.SourceName, strings.Join(texts, "\n\n"), docType, opts)
	} else {
		res = s.processor.ProcessPages(r.Context(), req.SourceName, req.Pages, opts)
	}

	if s.store != nil {
		if err := s.store.SaveRun(r.Context(), res); err != nil {
			s.logger.Error("http.process.save_failed", "run_id", res.ProcessingID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.serveStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serveStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.serveStoreError(w, err)
		return
	}

	book, err := s.exporter.AuditWorkbook(res)
	if err != nil {
		s.logger.Error("http.export.failed", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="casefile-audit-`+id+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(book)
}

func (s *Server) serveStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.logger.Error("http.store.error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, requestTimeout time.Duration) error {
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.TimeoutHandler(s.Handler(), requestTimeout, `{"error":"request timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
