package routes

import (
	"net/http"

	"github.com/zatekoja/blooddonorconnect/backend/internal/api/handlers"
	"github.com/zatekoja/blooddonorconnect/backend/internal/api/middleware"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	donorHandler     *handlers.DonorHandler
	emergencyHandler *handlers.EmergencyHandler
	facilityHandler  *handlers.FacilityHandler
	statusHandler    *handlers.StatusHandler
	rpcHandler       *handlers.RPCHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	donorHandler *handlers.DonorHandler,
	emergencyHandler *handlers.EmergencyHandler,
	facilityHandler *handlers.FacilityHandler,
	statusHandler *handlers.StatusHandler,
	rpcHandler *handlers.RPCHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		donorHandler:     donorHandler,
		emergencyHandler: emergencyHandler,
		facilityHandler:  facilityHandler,
		statusHandler:    statusHandler,
		rpcHandler:       rpcHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Service status
	r.mux.HandleFunc("GET /{$}", r.statusHandler.Status)
	r.mux.HandleFunc("GET /health", r.statusHandler.Health)
	r.mux.HandleFunc("GET /validate", r.statusHandler.Validate)
	r.mux.HandleFunc("GET /tools", r.statusHandler.ListTools)

	// Donor endpoints
	r.mux.HandleFunc("POST /api/donors", r.donorHandler.RegisterDonor)
	r.mux.HandleFunc("GET /api/donors", r.donorHandler.ListDonors)
	r.mux.HandleFunc("GET /api/donors/nearby", r.donorHandler.FindNearby)

	// Emergency endpoints
	r.mux.HandleFunc("POST /api/emergency-requests", r.emergencyHandler.CreateRequest)
	r.mux.HandleFunc("GET /api/emergency-requests", r.emergencyHandler.ListRequests)

	// Facility directory endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/resolve", r.facilityHandler.ResolveFacility)
	r.mux.HandleFunc("GET /api/regions", r.facilityHandler.ListRegions)

	// JSON-RPC tool endpoint
	r.mux.HandleFunc("POST /mcp", r.rpcHandler.Handle)
	r.mux.HandleFunc("OPTIONS /mcp", r.rpcHandler.Options)

	// Apply middleware in reverse order (last middleware wraps first).
	// Recovery sits next to the mux so logging sees the 500.
	var handler http.Handler = r.mux
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
