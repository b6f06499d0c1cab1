package httphandlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

func Routes(h *ApiHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(rr chi.Router) {
		rr.Post("/backups", h.TriggerBackup)
		rr.Post("/smoke-tests", h.TriggerSmokeTest)
		rr.Get("/status", h.Status)
		rr.Get("/health", h.Health)

		rr.Get("/h", func(writer http.ResponseWriter, request *http.Request) {
			ok(writer, "Hoi, we're HTTPs live!", struct{}{})
		})
	})
	return r
}
