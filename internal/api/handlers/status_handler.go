package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
)

const serviceName = "blood-donor-connect"

// StatusHandler serves the service status, health and tool listing endpoints
type StatusHandler struct {
	donors          *services.DonorService
	matching        *services.MatchingService
	facilities      *services.FacilityService
	tools           *ToolExecutor
	validationPhone string
	dependencies    []DependencyChecker
}

// DependencyChecker is a backing service whose reachability /health reports.
type DependencyChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(
	donors *services.DonorService,
	matching *services.MatchingService,
	facilities *services.FacilityService,
	tools *ToolExecutor,
	validationPhone string,
) *StatusHandler {
	return &StatusHandler{
		donors:          donors,
		matching:        matching,
		facilities:      facilities,
		tools:           tools,
		validationPhone: validationPhone,
	}
}

// WithDependencies adds backing services to the health report.
func (h *StatusHandler) WithDependencies(deps ...DependencyChecker) *StatusHandler {
	h.dependencies = append(h.dependencies, deps...)
	return h
}

// Stats are the collection totals reported by status endpoints
type Stats struct {
	TotalDonors   int `json:"total_donors"`
	TotalRequests int `json:"total_requests"`
}

// StatusResponse is the body of GET /
type StatusResponse struct {
	Message         string   `json:"message"`
	Status          string   `json:"status"`
	ValidationPhone string   `json:"validation_phone"`
	Cities          []string `json:"cities"`
	TotalHospitals  int      `json:"total_hospitals"`
	MCPEndpoint     string   `json:"mcp_endpoint"`
	Tools           []string `json:"tools"`
	Stats           Stats    `json:"stats"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	ValidationPhone string `json:"validation_phone"`
	TotalDonors     int    `json:"total_donors"`
	TotalRequests   int    `json:"total_requests"`

	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ToolSummary is one entry of GET /tools
type ToolSummary struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	RequiredParams []string `json:"required_params"`
}

// ToolsResponse is the body of GET /tools
type ToolsResponse struct {
	Tools  []ToolSummary `json:"tools"`
	Total  int           `json:"total"`
	Server string        `json:"server"`
}

// Status handles GET /
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, StatusResponse{
		Message:         "🩸 Blood Donor Connect - Hospital Selection Based",
		Status:          "running",
		ValidationPhone: h.validationPhone,
		Cities:          h.facilities.Regions(),
		TotalHospitals:  h.facilities.CountFacilities(),
		MCPEndpoint:     "/mcp",
		Tools:           toolNames(h.tools.Tools()),
		Stats:           stats,
	})
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp := HealthResponse{
		Status:          "healthy",
		Service:         serviceName,
		ValidationPhone: h.validationPhone,
		TotalDonors:     stats.TotalDonors,
		TotalRequests:   stats.TotalRequests,
	}
	if len(h.dependencies) > 0 {
		resp.Dependencies = make(map[string]string, len(h.dependencies))
		for _, dep := range h.dependencies {
			if err := dep.Ping(r.Context()); err != nil {
				observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("dependency", dep.Name()).Msg("Health check failed")
				resp.Dependencies[dep.Name()] = "unreachable"
				resp.Status = "degraded"
				continue
			}
			resp.Dependencies[dep.Name()] = "ok"
		}
	}

	// The registry is in memory, so a degraded backing service still serves.
	respondWithJSON(w, http.StatusOK, resp)
}

// Validate handles GET /validate
func (h *StatusHandler) Validate(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"phone":   h.validationPhone,
		"status":  "valid",
		"service": rpcServerName,
	})
}

// ListTools handles GET /tools
func (h *StatusHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := h.tools.Tools()
	summaries := make([]ToolSummary, len(tools))
	for i, t := range tools {
		summaries[i] = ToolSummary{Name: t.Name, Description: t.Description, RequiredParams: t.Required()}
	}

	respondWithJSON(w, http.StatusOK, ToolsResponse{Tools: summaries, Total: len(summaries), Server: rpcServerName})
}

func (h *StatusHandler) stats(r *http.Request) (Stats, error) {
	donors, err := h.donors.CountDonors(r.Context())
	if err != nil {
		return Stats{}, err
	}
	requests, err := h.matching.CountRequests(r.Context())
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalDonors: donors, TotalRequests: requests}, nil
}
