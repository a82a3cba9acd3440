package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/blemap/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Rate limiters
	loginLimiter := middleware.NewRateLimiter(5, 1*time.Minute)    // 5 login attempts per minute
	ingestLimiter := middleware.NewRateLimiter(120, 1*time.Minute) // listeners report every few seconds

	auth := middleware.AuthMiddleware(s.AuthService)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	requireOperator := middleware.RoleMiddleware(domain.RoleOperator)
	protectOp := func(h http.HandlerFunc) http.Handler {
		return auth(requireOperator(h))
	}

	// Session endpoints
	r.Handle("/api/login", middleware.RateLimitMiddleware(loginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.AuthHandler.HandleLogout).Methods(http.MethodPost)
	r.Handle("/api/me", protect(s.AuthHandler.HandleMe)).Methods(http.MethodGet)

	// Listener ingestion (unauthenticated by design, rate limited)
	r.Handle("/api/devices", middleware.RateLimitMiddleware(ingestLimiter)(http.HandlerFunc(s.IngestHandler.HandleIngestBatch))).Methods(http.MethodPost)
	r.Handle("/api/device", middleware.RateLimitMiddleware(ingestLimiter)(http.HandlerFunc(s.IngestHandler.HandleIngestSingle))).Methods(http.MethodPost)

	// Dashboard reads
	r.HandleFunc("/api/devices", s.DeviceHandler.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.DeviceHandler.HandleStats).Methods(http.MethodGet)

	// Device mutations (operator only)
	r.Handle("/api/devices/{mac}/status", protectOp(s.DeviceHandler.HandleSetStatus)).Methods(http.MethodPost)
	r.Handle("/api/devices/{mac}/rename", protectOp(s.DeviceHandler.HandleRename)).Methods(http.MethodPost)

	// Reports
	r.Handle("/api/reports/devices", protectOp(s.ReportHandler.HandleDeviceSurvey)).Methods(http.MethodGet)

	// WebSocket endpoint
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	// Metrics endpoint (protected - requires authentication)
	r.Handle("/metrics", protect(func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	}))

	// Dashboard static files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))

	return r
}
