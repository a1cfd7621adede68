package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
)

type resolveResponse struct {
	Status  string              `json:"status"`
	Query   string              `json:"query"`
	Matches []entities.Facility `json:"matches"`
}

func TestFacilityHandler_ListFacilities(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/facilities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[repositories.FacilityPage](t, rec)
	assert.Equal(t, 28, all.Total)
	require.Len(t, all.Facilities, 28)
	assert.Equal(t, "Tata Memorial Hospital", all.Facilities[0].Name)
	assert.Equal(t, "Manipal Hospital Pune", all.Facilities[27].Name)

	rec = api.do(t, http.MethodGet, "/api/facilities?region=Delhi&offset=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[repositories.FacilityPage](t, rec)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Facilities, 2)
	assert.Equal(t, "Apollo Hospital Delhi", page.Facilities[0].Name)
	assert.Equal(t, "Max Super Speciality", page.Facilities[1].Name)
}

func TestFacilityHandler_ListFacilities_IsIdempotent(t *testing.T) {
	api := newTestAPI(t)

	first := api.do(t, http.MethodGet, "/api/facilities?region=kolkata", nil)
	second := api.do(t, http.MethodGet, "/api/facilities?region=kolkata", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestFacilityHandler_ListFacilities_Errors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/facilities?region=atlantis", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, "INVALID_REGION", resp.Code)
	assert.Len(t, resp.Details, 7)

	rec = api.do(t, http.MethodGet, "/api/facilities?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler_ResolveFacility(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		target     string
		wantStatus string
		wantCount  int
	}{
		{"/api/facilities/resolve?name=apollo", "ambiguous", 6},
		{"/api/facilities/resolve?name=Tata%20Memorial", "unique", 1},
		{"/api/facilities/resolve?name=NoSuchPlace", "not_found", 0},
		{"/api/facilities/resolve?name=kem&region=pune", "unique", 1},
		{"/api/facilities/resolve?name=kem&region=mumbai", "unique", 1},
		{"/api/facilities/resolve?name=kem", "ambiguous", 2},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			res := decode[resolveResponse](t, rec)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Len(t, res.Matches, tt.wantCount)
		})
	}
}

func TestFacilityHandler_ListRegions(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/regions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.RegionsResponse](t, rec)
	assert.Equal(t, []string{"mumbai", "delhi", "bangalore", "chennai", "kolkata", "hyderabad", "pune"}, resp.Regions)
	assert.Equal(t, 7, resp.Total)
}
