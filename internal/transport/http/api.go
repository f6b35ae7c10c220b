package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"calma-service/internal/app"
	"calma-service/internal/domain"
)

// API serves the stateless calculators and script lookup.
type API struct {
	scripts   app.ScriptRepository
	prospects *app.ProspectEstimator
}

func NewAPI(scripts app.ScriptRepository, prospects *app.ProspectEstimator) *API {
	return &API{scripts: scripts, prospects: prospects}
}

func (a *API) HandleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var in domain.AuditInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, app.EstimateAudit(in))
}

func (a *API) HandleQuickAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	var in domain.QuickAuditInput
	if !decodeBody(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, app.EstimateQuickAudit(in))
}

func (a *API) HandleProspects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	radius, err := parseIntParam(r, "radius", app.DefaultProspectRadiusKm)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	target := strings.TrimSpace(r.URL.Query().Get("target"))
	writeJSON(w, http.StatusOK, a.prospects.Estimate(radius, target))
}

func (a *API) HandleScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	scriptID := strings.TrimSpace(r.PathValue("script_id"))
	script, err := a.scripts.GetScript(r.Context(), scriptID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, script)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayBody)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
	return false
}
