// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mgreen/swinglab/internal/domain/phases"
)

// PhasesHandler serves the optimization phase records.
type PhasesHandler struct{}

// NewPhasesHandler creates a new phases handler.
func NewPhasesHandler() *PhasesHandler {
	return &PhasesHandler{}
}

// HandlePhases handles GET /phases requests.
func (h *PhasesHandler) HandlePhases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, phases.All())
}

// HandlePhase handles GET /phases/{index} requests.
func (h *PhasesHandler) HandlePhase(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_phase"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	idxStr := strings.TrimPrefix(r.URL.Path, "/phases/")
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := phases.Get(idx)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
