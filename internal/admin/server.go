package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iwatkot/maps4fs-launcher/internal/launcher"
	"github.com/iwatkot/maps4fs-launcher/internal/logging"
	"github.com/iwatkot/maps4fs-launcher/internal/metrics"
)

// Server exposes the launcher's own HTTP surface: liveness, per-service
// state, and Prometheus metrics. It is separate from the managed services'
// ports and can be disabled entirely in config.
type Server struct {
	srv *http.Server
	sup *launcher.Supervisor
	log *logging.Logger
}

// NewServer creates the admin server
func NewServer(addr string, sup *launcher.Supervisor, exporter *metrics.Exporter, log *logging.Logger) *Server {
	s := &Server{
		sup: sup,
		log: log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/services", s.handleServices).Methods("GET")
	router.Handle("/metrics", exporter).Methods("GET")

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start runs the server in the background. Admin availability is never
// allowed to take the services down, so listen errors are logged, not fatal.
func (s *Server) Start() {
	go func() {
		s.log.Info("Admin server listening", map[string]interface{}{"addr": s.srv.Addr})
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Admin server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Running       int     `json:"running"`
	Total         int     `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := s.sup.Snapshot()

	running := 0
	for _, st := range statuses {
		if st.State == string(launcher.StateRunning) {
			running++
		}
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: s.sup.Uptime().Seconds(),
		Running:       running,
		Total:         len(statuses),
	}
	if running < len(statuses) {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type servicesResponse struct {
	Services []launcher.Status `json:"services"`
	Count    int               `json:"count"`
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	statuses := s.sup.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(servicesResponse{
		Services: statuses,
		Count:    len(statuses),
	})
}
