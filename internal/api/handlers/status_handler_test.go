package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
)

func TestStatusHandler_Status(t *testing.T) {
	api := newTestAPI(t)
	api.registerDonor(t, "asha", "A+", "delhi", "AIIMS")

	rec := api.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.StatusResponse](t, rec)
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, testValidationPhone, resp.ValidationPhone)
	assert.Equal(t, 28, resp.TotalHospitals)
	assert.Len(t, resp.Cities, 7)
	assert.Equal(t, "/mcp", resp.MCPEndpoint)
	assert.Equal(t, []string{
		"validate", "register_blood_donor", "find_nearby_donors",
		"emergency_blood_request", "list_hospitals_by_city", "list_donors",
	}, resp.Tools)
	assert.Equal(t, handlers.Stats{TotalDonors: 1, TotalRequests: 0}, resp.Stats)
}

func TestStatusHandler_UnknownPathIsNotStatus(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusHandler_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, testValidationPhone, resp.ValidationPhone)
	assert.Zero(t, resp.TotalDonors)
	assert.Zero(t, resp.TotalRequests)
}

func TestStatusHandler_Validate(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"phone":"919876543210","status":"valid","service":"blood-donor-india"}`, rec.Body.String())
}

func TestStatusHandler_ListTools(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.ToolsResponse](t, rec)
	assert.Equal(t, 6, resp.Total)
	assert.Equal(t, "blood-donor-india", resp.Server)

	byName := map[string]handlers.ToolSummary{}
	for _, tool := range resp.Tools {
		byName[tool.Name] = tool
	}
	assert.Empty(t, byName["validate"].RequiredParams)
	assert.NotNil(t, byName["validate"].RequiredParams)
	assert.Equal(t, []string{"name", "blood_type", "city", "hospital_name", "phone"}, byName["register_blood_donor"].RequiredParams)
	assert.Equal(t, []string{"blood_type", "city", "hospital_name"}, byName["find_nearby_donors"].RequiredParams)
}

type fakeDependency struct {
	name string
	err  error
}

func (d fakeDependency) Name() string                   { return d.name }
func (d fakeDependency) Ping(ctx context.Context) error { return d.err }

func TestStatusHandler_HealthReportsDependencies(t *testing.T) {
	api := newTestAPI(t)
	api.status.WithDependencies(
		fakeDependency{name: "redis"},
		fakeDependency{name: "postgres", err: errors.New("connection refused")},
	)

	rec := api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, map[string]string{"redis": "ok", "postgres": "unreachable"}, resp.Dependencies)
}
