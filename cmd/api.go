package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/discovery"
	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/outreach"
	"github.com/sells-group/lead-scout/internal/store"
)

// api serves the discovery and lead endpoints.
type api struct {
	store    store.Store
	orch     *discovery.Orchestrator
	composer *outreach.Composer
}

// buildRouter wires every route. corsOrigins empty means any origin.
func buildRouter(a *app, corsOrigins []string) http.Handler {
	h := &api{store: a.Store, orch: a.Orchestrator, composer: a.Composer}
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/discovery", func(r chi.Router) {
		r.Post("/start", h.startDiscovery)
		r.Get("/", h.activeJobs)
		r.Get("/{jobId}", h.getJob)
	})

	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", h.listLeads)
		r.Get("/export/csv", h.exportCSV)
		r.Get("/export/xlsx", h.exportXLSX)
		r.Get("/{leadId}", h.getLead)
		r.Delete("/{leadId}", h.deleteLead)
		r.Post("/{leadId}/outreach", h.generateOutreach)
	})

	return r
}

func (h *api) startDiscovery(w http.ResponseWriter, r *http.Request) {
	var search model.SearchConfig
	if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	job, err := h.orch.Submit(r.Context(), search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"jobId": job.ID, "status": "started"})
}

func (h *api) activeJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.orch.Active(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []model.DiscoveryJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *api) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *api) listLeads(w http.ResponseWriter, r *http.Request) {
	filter, ok := leadFilterFromQuery(w, r)
	if !ok {
		return
	}
	leads, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if leads == nil {
		leads = []model.BusinessLead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *api) getLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.store.GetLead(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *api) deleteLead(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteLead(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, store.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *api) generateOutreach(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "leadId")
	lead, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	messages := h.composer.Compose(lead)
	alternatives := h.composer.ComposeAlternatives(lead)

	updated, err := h.store.UpdateLead(r.Context(), id, model.LeadPatch{Outreach: &messages})
	if err != nil {
		writeError(w, err)
		return
	}
	if updated == nil {
		writeError(w, store.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":     messages,
		"alternatives": alternatives,
	})
}

func (h *api) exportCSV(w http.ResponseWriter, r *http.Request) {
	leads, ok := h.exportLeads(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := export.WriteCSV(w, leads); err != nil {
		zap.L().Warn("write csv export", zap.Error(err))
	}
}

func (h *api) exportXLSX(w http.ResponseWriter, r *http.Request) {
	leads, ok := h.exportLeads(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.xlsx"`)
	if err := export.WriteXLSX(w, leads); err != nil {
		zap.L().Warn("write xlsx export", zap.Error(err))
	}
}

func (h *api) exportLeads(w http.ResponseWriter, r *http.Request) ([]model.BusinessLead, bool) {
	filter, ok := leadFilterFromQuery(w, r)
	if !ok {
		return nil, false
	}
	leads, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return leads, true
}

// leadFilterFromQuery reads jobId and minScore. It writes a 400 and returns
// false when minScore is not an integer.
func leadFilterFromQuery(w http.ResponseWriter, r *http.Request) (store.LeadFilter, bool) {
	q := r.URL.Query()
	filter := store.LeadFilter{JobID: q.Get("jobId")}
	if v := q.Get("minScore"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "minScore must be an integer"})
			return filter, false
		}
		filter.MinScore = n
	}
	return filter, true
}

// writeError maps err to a status: invalid search 400, not found 404,
// shutting down 503, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, discovery.ErrInvalidSearch):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, discovery.ErrShutdown):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	default:
		zap.L().Error("api request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("encode response", zap.Error(err))
	}
}
