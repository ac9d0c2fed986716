package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/carepulse-appointments/internal/appointment"
)

type RouterConfig struct {
	Service    *appointment.Service
	Queries    *appointment.Queries
	Physicians *appointment.Roster
	Postgres   Pinger
	Redis      Pinger // may be nil when the update lock is disabled
	Limiter    *SubmitLimiter // nil disables submission rate limiting
	Log        *logrus.Logger
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	h := &handlers{
		svc:        cfg.Service,
		queries:    cfg.Queries,
		physicians: cfg.Physicians,
		log:        cfg.Log,
	}

	r.Get("/physicians", h.listPhysicians)
	r.Get("/intents/{intent}/ruleset", h.getRuleset)

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Get("/patient", h.getPatient)
		r.Get("/appointments", h.listAppointments)
		r.With(cfg.Limiter.Middleware).Post("/appointments", h.createAppointment)
	})

	r.Route("/appointments/{id}", func(r chi.Router) {
		r.Get("/", h.getAppointment)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Limiter.Middleware)
			r.Post("/schedule", h.updateAppointment(appointment.IntentSchedule))
			r.Post("/cancel", h.updateAppointment(appointment.IntentCancel))
		})
	})

	return r
}
