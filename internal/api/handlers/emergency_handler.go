package handlers

import (
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// EmergencyHandler handles emergency blood requests
type EmergencyHandler struct {
	matching *services.MatchingService
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(matching *services.MatchingService) *EmergencyHandler {
	return &EmergencyHandler{matching: matching}
}

// EmergencyListResponse is the body of GET /api/emergency-requests
type EmergencyListResponse struct {
	Requests []entities.EmergencyRequest `json:"requests"`
	Total    int                         `json:"total"`
}

// CreateRequest handles POST /api/emergency-requests. An escalation is
// still a created request, so it answers 201 as well.
func (h *EmergencyHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in services.EmergencyInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.matching.CreateEmergencyRequest(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// ListRequests handles GET /api/emergency-requests
func (h *EmergencyHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.matching.ListRequests(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, EmergencyListResponse{Requests: requests, Total: len(requests)})
}
