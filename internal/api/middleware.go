// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/logging"
)

// Middleware builds the shared middleware stack from server configuration.
type Middleware struct {
	cfg  config.ServerConfig
	cors func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(cfg config.ServerConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return &Middleware{
		cfg:  cfg,
		cors: corsHandler,
	}
}

// CORS returns the CORS middleware built from the configured origins.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns IP-based rate limiting for the data endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		m.cfg.RateLimitReqs,
		m.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
	)
}

// RateLimitHealth returns a permissive limiter for health probes so that
// frequent monitoring never trips the data-endpoint budget.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	return httprate.LimitByRealIP(1000, time.Minute)
}

// RequestIDWithLogging propagates or generates an X-Request-ID header and
// stores it in the request context for structured logging.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLogging logs one structured line per request with status and
// duration.
func AccessLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logging.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
