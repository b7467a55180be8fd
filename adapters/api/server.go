package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"poissonkit/app"
	"poissonkit/domain/catalog"
	"poissonkit/domain/core"
	"poissonkit/internal"
	"poissonkit/ports"
)

// Server is the HTTP facade over the battery service. The statistical core
// stays a pure library; this surface only decodes catalogs, runs the
// battery and encodes the report.
type Server struct {
	router  *chi.Mux
	battery *app.BatteryService
	ledger  ports.ResultLedger
	logger  *internal.Logger
}

// NewServer creates the facade. The ledger may be nil, which disables the
// report listing endpoints and persistence.
func NewServer(battery *app.BatteryService, ledger ports.ResultLedger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		battery: battery,
		ledger:  ledger,
		logger:  internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/battery", s.handleRunBattery)
	if s.ledger != nil {
		s.router.Get("/v1/reports", s.handleListReports)
		s.router.Get("/v1/reports/{id}", s.handleGetReport)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// batteryRequest is the JSON body of POST /v1/battery.
type batteryRequest struct {
	Zones []struct {
		Zone   string         `json:"zone"`
		Events []float64      `json:"events"`
		Window catalog.Window `json:"window"`
	} `json:"zones"`
	BinWidth float64 `json:"bin_width,omitempty"`
	MeanWait float64 `json:"mean_wait,omitempty"`
}

func (s *Server) handleRunBattery(w http.ResponseWriter, r *http.Request) {
	var req batteryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Zones) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("at least one zone is required"))
		return
	}

	zones := make([]app.ZoneCatalog, len(req.Zones))
	for i, z := range req.Zones {
		if err := z.Window.Validate(); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		events := catalog.Catalog(z.Events)
		if err := events.Validate(); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		zones[i] = app.ZoneCatalog{
			Zone:    core.ZoneKey(z.Zone),
			Catalog: events,
			Window:  z.Window,
		}
	}

	rep, err := s.battery.Run(r.Context(), zones, app.BatteryOptions{
		BinWidth: req.BinWidth,
		MeanWait: req.MeanWait,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsInvalidWindowError(err) || core.IsInsufficientDataError(err) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.ledger.ListReports(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.ledger.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[api] encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
