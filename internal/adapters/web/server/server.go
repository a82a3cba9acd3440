package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/blemap/internal/adapters/reporting"
	"github.com/lcalzada-xor/blemap/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/blemap/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr      string
	StaticDir string

	Service     ports.TrackerService
	AuthService ports.AuthService

	WSManager     *websocket.WSManager
	IngestHandler *handlers.IngestHandler
	DeviceHandler *handlers.DeviceHandler
	ReportHandler *handlers.ReportHandler
	AuthHandler   *handlers.AuthHandler

	srv *http.Server
}

// NewServer creates a new web server.
func NewServer(addr, staticDir string, service ports.TrackerService, authService ports.AuthService) *Server {
	return &Server{
		Addr:      addr,
		StaticDir: staticDir,

		Service:     service,
		AuthService: authService,

		WSManager:     websocket.NewWSManager(service),
		IngestHandler: handlers.NewIngestHandler(service),
		DeviceHandler: handlers.NewDeviceHandler(service),
		ReportHandler: handlers.NewReportHandler(service, reporting.NewPDFExporter()),
		AuthHandler:   handlers.NewAuthHandler(authService),
	}
}

// Run starts the server and the broadcaster.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "blemap-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// BroadcastDevice pushes a processed record to connected dashboards.
func (s *Server) BroadcastDevice(d domain.Device) {
	s.WSManager.BroadcastDevice(d)
}
