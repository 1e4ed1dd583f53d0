// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgreen/swinglab/internal/domain/model"
)

// defaultListLimit applies when GET /analyses has no limit parameter.
const defaultListLimit = 50

// AnalysesHandler handles analysis submission and listing.
type AnalysesHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies, maxLimit int) *AnalysesHandler {
	if maxLimit <= 0 {
		maxLimit = defaultMaxListLimit
	}
	return &AnalysesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleAnalyses handles POST /analyses and GET /analyses?limit=N requests.
func (h *AnalysesHandler) HandleAnalyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AnalysesHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_analysis"
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check on the video name - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.Video) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	job := model.Job{
		JobID:        uuid.NewString(),
		Video:        req.Video,
		KeypointPath: req.KeypointPath,
		SubmittedAt:  time.Now().UTC(),
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), job); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.Video)
		writeError(w, http.StatusTooManyRequests, "backpressure", newKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, JobID: job.JobID})
}

func (h *AnalysesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_analyses"
	n := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", newKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.List(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []AnalysisEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleAnalysis handles GET /analyses/{video} requests.
func (h *AnalysesHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analysis"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	video := strings.TrimPrefix(r.URL.Path, "/analyses/")
	if video == "" || strings.Contains(video, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Analysis(r.Context(), video)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
