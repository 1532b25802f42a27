package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlasdental/clinic-booking/internal/booking"
	"github.com/atlasdental/clinic-booking/internal/catalog"
)

type RouterConfig struct {
	Booking *booking.Service
	Catalog catalog.Repository
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Patient booking flow
	r.Get("/availability", availabilityHandler(cfg.Booking))
	r.Post("/appointments", bookAppointmentHandler(cfg.Booking))
	r.Get("/services", listServicesHandler(cfg.Catalog))

	// Admin back-office
	r.Route("/admin", func(r chi.Router) {
		r.Post("/slots/generate", generateSlotsHandler(cfg.Booking))
		r.Get("/slots", listSlotsHandler(cfg.Booking))
		r.Delete("/slots/{id}", deleteSlotHandler(cfg.Booking))

		r.Get("/appointments", listAppointmentsHandler(cfg.Booking))
		r.Post("/appointments/{id}/status", setAppointmentStatusHandler(cfg.Booking))
		r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Booking))

		r.Post("/services", addServiceHandler(cfg.Catalog))
		r.Put("/services/{id}", updateServiceHandler(cfg.Catalog))
		r.Delete("/services/{id}", deleteServiceHandler(cfg.Catalog))

		r.Get("/settings", getSettingsHandler(cfg.Catalog))
		r.Put("/settings", updateSettingsHandler(cfg.Catalog))
	})

	return r
}
