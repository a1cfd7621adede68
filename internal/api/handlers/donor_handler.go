package handlers

import (
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

// DonorHandler handles donor registration and nearby-donor lookups
type DonorHandler struct {
	donors   *services.DonorService
	matching *services.MatchingService
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(donors *services.DonorService, matching *services.MatchingService) *DonorHandler {
	return &DonorHandler{
		donors:   donors,
		matching: matching,
	}
}

// DonorListResponse is the body of GET /api/donors
type DonorListResponse struct {
	Donors []entities.Donor `json:"donors"`
	Total  int              `json:"total"`
}

// RegisterDonor handles POST /api/donors
func (h *DonorHandler) RegisterDonor(w http.ResponseWriter, r *http.Request) {
	var in services.DonorInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	donor, err := h.donors.RegisterDonor(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, donor)
}

// ListDonors handles GET /api/donors
func (h *DonorHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.donors.ListDonors(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, DonorListResponse{Donors: donors, Total: len(donors)})
}

// FindNearby handles GET /api/donors/nearby
func (h *DonorHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	radius, err := queryFloat(r, "radius_km")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.matching.FindNearbyDonors(r.Context(), services.NearbyQuery{
		BloodType:     q.Get("blood_type"),
		Region:        q.Get("region"),
		FacilityQuery: q.Get("facility"),
		RadiusKm:      radius,
		Limit:         limit,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
