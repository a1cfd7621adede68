package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/directory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/memory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
)

const testValidationPhone = "919876543210"

// testAPI serves every handler over the bundled directory and empty
// in-memory stores.
type testAPI struct {
	mux      *http.ServeMux
	donors   *services.DonorService
	matching *services.MatchingService
	tools    *handlers.ToolExecutor
	status   *handlers.StatusHandler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dir, err := directory.Default()
	require.NoError(t, err)

	resolver := services.NewFacilityResolver(dir)
	registry := memory.NewDonorRegistry()
	ledger := memory.NewRequestLedger()
	matchingCfg := config.MatchingConfig{DefaultRadiusKm: 10, EmergencyRadiusKm: 25, NearbyLimit: 5, EmergencyLimit: 3}

	donors := services.NewDonorService(dir, resolver, registry, nil, nil)
	matching := services.NewMatchingService(dir, resolver, registry, ledger, nil, nil, nil, matchingCfg)
	facilities := services.NewFacilityService(dir, resolver)
	tools := handlers.NewToolExecutor(donors, matching, facilities, testValidationPhone)

	donorHandler := handlers.NewDonorHandler(donors, matching)
	emergencyHandler := handlers.NewEmergencyHandler(matching)
	facilityHandler := handlers.NewFacilityHandler(facilities)
	statusHandler := handlers.NewStatusHandler(donors, matching, facilities, tools, testValidationPhone)
	rpcHandler := handlers.NewRPCHandler(tools)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", statusHandler.Status)
	mux.HandleFunc("GET /health", statusHandler.Health)
	mux.HandleFunc("GET /validate", statusHandler.Validate)
	mux.HandleFunc("GET /tools", statusHandler.ListTools)
	mux.HandleFunc("POST /api/donors", donorHandler.RegisterDonor)
	mux.HandleFunc("GET /api/donors", donorHandler.ListDonors)
	mux.HandleFunc("GET /api/donors/nearby", donorHandler.FindNearby)
	mux.HandleFunc("POST /api/emergency-requests", emergencyHandler.CreateRequest)
	mux.HandleFunc("GET /api/emergency-requests", emergencyHandler.ListRequests)
	mux.HandleFunc("GET /api/facilities", facilityHandler.ListFacilities)
	mux.HandleFunc("GET /api/facilities/resolve", facilityHandler.ResolveFacility)
	mux.HandleFunc("GET /api/regions", facilityHandler.ListRegions)
	mux.HandleFunc("POST /mcp", rpcHandler.Handle)
	mux.HandleFunc("OPTIONS /mcp", rpcHandler.Options)

	return &testAPI{mux: mux, donors: donors, matching: matching, tools: tools, status: statusHandler}
}

func (a *testAPI) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) registerDonor(t *testing.T, name, bloodType, region, facility string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/donors", map[string]string{
		"name":       name,
		"blood_type": bloodType,
		"region":     region,
		"facility":   facility,
		"phone":      "98000" + name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
