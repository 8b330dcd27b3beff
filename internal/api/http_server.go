package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Services bundles the operations exposed by the transports.
type Services struct {
	Auth     domain.AuthService
	Listings domain.ListingService
	Bookings domain.BookingService
}

// ReadinessCheck is a named dependency probe used by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HTTPServer exposes the marketplace JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	auth     domain.AuthService
	listings domain.ListingService
	bookings domain.BookingService
	checks   []ReadinessCheck
	limiter  *rateLimiter
	server   *http.Server
	log      zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger, checks ...ReadinessCheck) *HTTPServer {
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "http").Logger()
	}

	s := &HTTPServer{
		cfg:      cfg,
		auth:     svc.Auth,
		listings: svc.Listings,
		bookings: svc.Bookings,
		checks:   checks,
		limiter:  newRateLimiter(cfg.RateLimit),
		log:      log,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(&s.log))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORS))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(s.authenticate).Get("/verify", s.handleVerify)
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.handleListProperties)
			r.Get("/{id}", s.handleGetProperty)
			r.Get("/{id}/availability", s.handleAvailability)
			r.Get("/{id}/quote", s.handleQuote)
		})

		r.Route("/host", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(requireHost)
			r.Get("/properties", s.handleHostProperties)
			r.Post("/properties", s.handleCreateProperty)
			r.Patch("/properties/{id}", s.handleUpdateProperty)
			r.Put("/properties/{id}/status", s.handleSetPropertyStatus)
			r.Delete("/properties/{id}", s.handleDeleteProperty)
			r.Get("/bookings", s.handleHostBookings)
			r.Get("/bookings/export", s.handleExportHostBookings)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/", s.handleCreateBooking)
			r.Get("/", s.handleGuestBookings)
			r.Get("/{id}", s.handleGetBooking)
			r.Post("/{id}/cancel", s.handleCancelBooking)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for _, c := range s.checks {
		if err := c.Check(ctx); err != nil {
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.log.Warn().Interface("failed", failed).Msg("Readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeError maps a service error onto the HTTP taxonomy and logs unexpected failures.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := httpError(err)
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeError(w, code, msg)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
