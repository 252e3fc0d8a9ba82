// Package api assembles the HTTP routes of the station service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kilianp07/evstation/api/capacity"
	"github.com/kilianp07/evstation/api/respond"
	"github.com/kilianp07/evstation/api/stations"
	"github.com/kilianp07/evstation/core/logger"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	Log            logger.Logger
}

// NewRouter wires the handlers on a chi router.
func NewRouter(st *stations.Handler, cp *capacity.Handler, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(respond.WithRequestID)
	if opts.Log != nil {
		r.Use(accessLog(opts.Log))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{respond.RequestIDHeader},
	}))
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/stations", st.List)
		r.Post("/recommendations", st.Recommend)
		r.Post("/capacity/analyze", cp.Analyze)
		r.Get("/capacity/report", cp.Report)
		r.Get("/capacity/busiest", cp.Busiest)
	})
	return r
}

func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debugw("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  respond.RequestID(r),
			})
		})
	}
}
