// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/database"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/discover"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/recommend"
)

// MediaLookup resolves a single title. The similar endpoint uses it to
// reject unknown anchors before running the discovery pipeline.
type MediaLookup interface {
	GetMediaRecord(ctx context.Context, mediaType models.MediaType, tmdbID int64) (*models.MediaRecord, error)
}

// Handler contains the dependencies for all API endpoints.
type Handler struct {
	discover    *discover.Engine
	recommend   *recommend.Scorer
	fingerprint *recommend.Aggregator
	media       MediaLookup
	genres      discover.GenreResolver
	cfg         *config.Config
	ready       func() error
	startTime   time.Time
}

// NewHandler creates the API handler. ready is probed by the readiness
// endpoint; pass the store's ping function.
func NewHandler(engine *discover.Engine, scorer *recommend.Scorer, aggregator *recommend.Aggregator, media MediaLookup, genres discover.GenreResolver, cfg *config.Config, ready func() error) *Handler {
	return &Handler{
		discover:    engine,
		recommend:   scorer,
		fingerprint: aggregator,
		media:       media,
		genres:      genres,
		cfg:         cfg,
		ready:       ready,
		startTime:   time.Now(),
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady reports readiness: the relational store must answer a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			NewResponseWriter(w, r).ServiceUnavailable("database not ready")
			return
		}
	}
	NewResponseWriter(w, r).Success(map[string]string{"status": "ready"})
}

// Discover handles GET /api/v1/discover. All parameters are optional query
// strings; invalid values normalize to defaults rather than erroring.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := rawParamsFromQuery(r)
	spec := discover.Normalize(raw, h.genres)

	result, err := h.discover.Discover(r.Context(), spec)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithMeta(result.Results, &models.APIMeta{
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// Similar handles GET /api/v1/media/{type}/{id}/similar. It is a discovery
// query pinned to similarity mode with the path anchor.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	mediaType := models.MediaType(chi.URLParam(r, "type"))
	if !mediaType.Valid() {
		rw.BadRequest("media type must be movie or show")
		return
	}
	tmdbID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || tmdbID <= 0 {
		rw.BadRequest("id must be a positive integer")
		return
	}

	if _, err := h.media.GetMediaRecord(r.Context(), mediaType, tmdbID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("media not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	raw := rawParamsFromQuery(r)
	raw.SimilarTo = string(mediaType) + ":" + strconv.FormatInt(tmdbID, 10)
	spec := discover.Normalize(raw, h.genres)

	result, err := h.discover.Discover(r.Context(), spec)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithMeta(result.Results, &models.APIMeta{
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := parseUserID(r)
	if !ok {
		rw.BadRequest("userID must be a positive integer")
		return
	}

	result, err := h.recommend.Recommend(r.Context(), userID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(result.Results)
}

// Fingerprint handles GET /api/v1/users/{userID}/fingerprint.
func (h *Handler) Fingerprint(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := parseUserID(r)
	if !ok {
		rw.BadRequest("userID must be a positive integer")
		return
	}

	fingerprint, err := h.fingerprint.Fingerprint(r.Context(), userID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(fingerprint)
}

func parseUserID(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// rawParamsFromQuery maps the query string onto the loosely-typed discovery
// parameters. Unknown keys are ignored.
func rawParamsFromQuery(r *http.Request) discover.RawParams {
	q := r.URL.Query()

	raw := discover.RawParams{
		MediaType:          q.Get("type"),
		Country:            q.Get("country"),
		Language:           q.Get("language"),
		MinScore:           q.Get("min_score"),
		MaxScore:           q.Get("max_score"),
		MinYear:            q.Get("min_year"),
		MaxYear:            q.Get("max_year"),
		WithGenres:         q.Get("with_genres"),
		WithCast:           q.Get("with_cast"),
		WithCrew:           q.Get("with_crew"),
		StreamingProviders: q.Get("streaming_providers"),
		WatchedType:        q.Get("watched_type"),
		Pillars:            q.Get("pillars"),
		MinTier:            q.Get("min_tier"),
		SimilarTo:          q.Get("similar_to"),
		SortBy:             q.Get("sort_by"),
		SortDirection:      q.Get("sort_direction"),
		Page:               q.Get("page"),
	}

	if userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64); err == nil && userID > 0 {
		raw.UserID = userID
	}

	return raw
}
