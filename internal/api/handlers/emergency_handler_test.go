package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
)

func TestEmergencyHandler_CreateRequest_WithDonors(t *testing.T) {
	api := newTestAPI(t)
	api.registerDonor(t, "kem", "B+", "mumbai", "KEM Hospital")
	api.registerDonor(t, "apollo", "B+", "mumbai", "Apollo Hospital Mumbai")

	rec := api.do(t, http.MethodPost, "/api/emergency-requests", map[string]string{
		"patient_name": "Ravi",
		"blood_type":   "B+",
		"region":       "mumbai",
		"facility":     "lilavati",
		"urgency":      "Critical",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[services.EmergencyResult](t, rec)
	assert.Equal(t, 1, result.Request.SequenceID)
	assert.Equal(t, "critical", result.Request.Urgency)
	assert.Equal(t, "Lilavati Hospital", result.Request.Facility.Name)
	assert.Equal(t, 25.0, result.RadiusKm)
	assert.Nil(t, result.Escalation)
	require.Equal(t, 2, result.Total)
	assert.Equal(t, "apollo", result.Donors[0].Donor.Name)
	assert.InDelta(t, 5.83, result.Donors[0].DistanceKm, 0.01)
	assert.Equal(t, "kem", result.Donors[1].Donor.Name)
}

func TestEmergencyHandler_CreateRequest_Escalates(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/emergency-requests", map[string]string{
		"patient_name": "Ravi",
		"blood_type":   "AB-",
		"facility":     "Ruby Hall",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	result := decode[services.EmergencyResult](t, rec)
	assert.Equal(t, 1, result.Request.SequenceID)
	assert.Equal(t, entities.DefaultUrgency, result.Request.Urgency)
	assert.Empty(t, result.Donors)
	require.NotNil(t, result.Escalation)
	assert.Equal(t, entities.EscalationReasonNoDonors, result.Escalation.Reason)
	assert.Equal(t, "020-2611-2300", result.Escalation.Contact)
}

func TestEmergencyHandler_CreateRequest_RejectsWithoutRecording(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/emergency-requests", map[string]string{
		"patient_name": "Ravi",
		"blood_type":   "B+",
		"facility":     "apollo",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, "AMBIGUOUS_FACILITY", resp.Code)
	candidates, ok := resp.Details.([]interface{})
	require.True(t, ok)
	assert.Len(t, candidates, 6)

	rec = api.do(t, http.MethodPost, "/api/emergency-requests", map[string]string{
		"blood_type": "B+",
		"facility":   "tata",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/emergency-requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[handlers.EmergencyListResponse](t, rec).Total)
}

func TestEmergencyHandler_ListRequests(t *testing.T) {
	api := newTestAPI(t)

	for _, patient := range []string{"one", "two", "three"} {
		rec := api.do(t, http.MethodPost, "/api/emergency-requests", map[string]string{
			"patient_name": patient,
			"blood_type":   "O-",
			"region":       "chennai",
			"facility":     "MIOT",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := api.do(t, http.MethodGet, "/api/emergency-requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[handlers.EmergencyListResponse](t, rec)
	require.Equal(t, 3, list.Total)
	for i, req := range list.Requests {
		assert.Equal(t, i+1, req.SequenceID)
	}
	assert.Equal(t, "three", list.Requests[2].PatientName)
}
