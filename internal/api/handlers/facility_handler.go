package handlers

import (
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
)

// FacilityHandler handles facility directory HTTP requests
type FacilityHandler struct {
	facilities *services.FacilityService
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilities *services.FacilityService) *FacilityHandler {
	return &FacilityHandler{facilities: facilities}
}

// RegionsResponse is the body of GET /api/regions
type RegionsResponse struct {
	Regions []string `json:"regions"`
	Total   int      `json:"total"`
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	page, err := h.facilities.ListFacilities(r.Context(), repositories.FacilityFilter{
		Region: r.URL.Query().Get("region"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// ResolveFacility handles GET /api/facilities/resolve. It reports the
// resolution outcome, so ambiguous and unmatched names are still 200s.
func (h *FacilityHandler) ResolveFacility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondWithJSON(w, http.StatusOK, h.facilities.Resolve(q.Get("name"), q.Get("region")))
}

// ListRegions handles GET /api/regions
func (h *FacilityHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions := h.facilities.Regions()
	respondWithJSON(w, http.StatusOK, RegionsResponse{Regions: regions, Total: len(regions)})
}
