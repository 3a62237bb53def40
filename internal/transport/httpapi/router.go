// Package httpapi реализует HTTP API сервиса подписок поверх chi.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает маршруты API.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/platform-orders", h.ImportPlatformOrder)
		r.Get("/platform-orders/{code}", h.GetPlatformOrder)
		r.Post("/platform-orders/{code}/subscription", h.CreateSubscription)
		r.Get("/platform-orders/{code}/is-subscription", h.IsSubscription)

		r.Get("/subscriptions", h.ListSubscriptions)
		r.Post("/subscriptions/{id}/cancel", h.CancelSubscription)

		r.Put("/recurrence-products/{id}", h.UpsertRecurrenceProduct)
	})
	return r
}

// requestLogger пишет строку журнала на каждый запрос через logrus.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.WithFields(log.Fields{
					"request_id":  middleware.GetReqID(r.Context()),
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
				}).Info("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
