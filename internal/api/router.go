// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the Chi route tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	return &Router{
		handler:    handler,
		middleware: middleware,
	}
}

// Setup builds the HTTP handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.Use(AccessLogging())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())

		r.Get("/discover", router.handler.Discover)
		r.Get("/media/{type}/{id}/similar", router.handler.Similar)
		r.Get("/users/{userID}/recommendations", router.handler.Recommendations)
		r.Get("/users/{userID}/fingerprint", router.handler.Fingerprint)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
