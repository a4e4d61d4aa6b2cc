// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package discover implements the hybrid discovery query engine: it turns a
// normalized QuerySpec into a ranked, paginated page of media by combining
// an optional ANN candidate stage with per-type relational filtering, then
// merging both media types into one globally ordered page.
package discover

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/database"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/metrics"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/vector"
)

// MediaStore is the relational access the engine needs. Implemented by
// *database.DB; tests supply fakes.
type MediaStore interface {
	DiscoverMedia(ctx context.Context, f *database.DiscoverFilter) ([]models.MediaRecord, error)
}

// Engine is the discovery query engine. Stateless between requests; all
// collaborators are injected.
type Engine struct {
	store  MediaStore
	index  vector.Recommender
	cfg    config.DiscoverConfig
	vcfg   config.VectorConfig
	logger zerolog.Logger
}

// NewEngine creates a discovery engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store MediaStore, index vector.Recommender, cfg config.DiscoverConfig, vcfg config.VectorConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		index:  index,
		cfg:    cfg,
		vcfg:   vcfg,
		logger: logger.With().Str("component", "discover").Logger(),
	}
}

// Result is one discovery page.
type Result struct {
	Results  []models.RankedResult `json:"results"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`

	// Partial marks pages where one media type's query failed and the other
	// type's results were returned anyway.
	Partial bool `json:"partial,omitempty"`
}

// candidateSets holds the decoded output of the vector stage. When active,
// relational queries are restricted to these IDs; a type with no IDs yields
// zero rows without a query.
type candidateSets struct {
	active bool
	ids    map[models.MediaType][]int64
	scores map[models.MediaType]map[int64]float64
}

// Discover executes one discovery request. Unsatisfiable specs and empty
// candidate stages produce an empty page, never an error; only
// infrastructure faults on every queried type surface as errors.
func (e *Engine) Discover(ctx context.Context, spec QuerySpec) (*Result, error) {
	mode := "filter"
	if spec.SimilarTo != nil {
		mode = "similar"
	}

	if spec.Unsatisfiable {
		metrics.DiscoverRequests.WithLabelValues(mode, "empty").Inc()
		return e.emptyResult(spec), nil
	}

	candidates, err := e.resolveCandidates(ctx, spec)
	if err != nil {
		// Fail closed: a similarity-scoped query without its candidate set
		// must not silently widen into an unrestricted one.
		e.logger.Error().Err(err).Msg("vector stage failed, returning empty page")
		metrics.DiscoverRequests.WithLabelValues(mode, "error").Inc()
		return e.emptyResult(spec), nil
	}

	if candidates.active && candidates.empty() {
		metrics.DiscoverRequests.WithLabelValues(mode, "empty").Inc()
		return e.emptyResult(spec), nil
	}

	lists, queryErrs := e.runPerType(ctx, spec, candidates)

	succeeded := 0
	for _, err := range queryErrs {
		if err == nil {
			succeeded++
		} else {
			e.logger.Error().Err(err).Msg("per-type query failed")
		}
	}
	if succeeded == 0 {
		metrics.DiscoverRequests.WithLabelValues(mode, "error").Inc()
		return nil, fmt.Errorf("discover: all media type queries failed: %w", errors.Join(queryErrs...))
	}

	merged := mergeAndRank(lists, spec.SortBy, spec.SortDirection, e.cfg.PageSize)

	status := "ok"
	partial := succeeded < len(queryErrs)
	if partial {
		status = "partial"
	} else if len(merged) == 0 {
		status = "empty"
	}
	metrics.DiscoverRequests.WithLabelValues(mode, status).Inc()

	return &Result{
		Results:  merged,
		Page:     spec.Page,
		PageSize: e.cfg.PageSize,
		Partial:  partial,
	}, nil
}

func (e *Engine) emptyResult(spec QuerySpec) *Result {
	return &Result{
		Results:  []models.RankedResult{},
		Page:     spec.Page,
		PageSize: e.cfg.PageSize,
	}
}

func (c *candidateSets) empty() bool {
	for _, ids := range c.ids {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// resolveCandidates runs the vector stage when similarity mode is active.
// The index-side pre-filter only carries predicates that are true at index
// time (vote floor, poster present, media type); anything tied to mutable
// relational data is re-applied by the relational stage, so candidates are
// always a superset of the final result.
func (e *Engine) resolveCandidates(ctx context.Context, spec QuerySpec) (candidateSets, error) {
	none := candidateSets{}
	if spec.SimilarTo == nil {
		return none, nil
	}

	anchor := vector.EncodePointID(spec.SimilarTo.MediaType, spec.SimilarTo.TmdbID)

	filter := &vector.Filter{
		Must: []vector.Condition{
			vector.RangeGte("aggregated_votes", float64(e.cfg.PopularityVoteFloor)),
		},
		MustNot: []vector.Condition{
			vector.FieldEmpty("poster_path"),
			vector.ExcludeIDs([]uint64{anchor}),
		},
	}
	if len(spec.MediaTypes) == 1 {
		filter.Must = append(filter.Must, vector.MatchValue("media_type", string(spec.MediaTypes[0])))
	}

	// Overfetch: relational filtering and dedup shrink the set downstream.
	limit := e.cfg.PageSize * e.vcfg.CandidateMultiplier

	points, err := e.index.Recommend(ctx, vector.RecommendQuery{
		Positive: []uint64{anchor},
		Filter:   filter,
		Limit:    limit,
	})
	if err != nil {
		return none, err
	}

	sets := candidateSets{
		active: true,
		ids:    make(map[models.MediaType][]int64),
		scores: make(map[models.MediaType]map[int64]float64),
	}
	for _, point := range points {
		mediaType, tmdbID := vector.DecodePointID(point.ID)
		sets.ids[mediaType] = append(sets.ids[mediaType], tmdbID)
		if sets.scores[mediaType] == nil {
			sets.scores[mediaType] = make(map[int64]float64)
		}
		sets.scores[mediaType][tmdbID] = point.Score
	}

	return sets, nil
}

// runPerType fans the relational stage out over the requested media types.
// Each type gets its own limit/offset slice of the page; queries run
// concurrently and one type's failure never cancels the other.
func (e *Engine) runPerType(ctx context.Context, spec QuerySpec, candidates candidateSets) ([][]models.RankedResult, []error) {
	limits, offsets := splitPage(e.cfg.PageSize, spec.Page, len(spec.MediaTypes))

	lists := make([][]models.RankedResult, len(spec.MediaTypes))
	errs := make([]error, len(spec.MediaTypes))

	var wg sync.WaitGroup
	for i, mediaType := range spec.MediaTypes {
		if candidates.active && len(candidates.ids[mediaType]) == 0 {
			// Restriction that matched nothing for this type: zero rows,
			// no query.
			continue
		}

		wg.Add(1)
		go func(idx int, t models.MediaType) {
			defer wg.Done()

			filter := e.buildFilter(spec, t, candidates, limits[idx], offsets[idx])
			records, err := e.store.DiscoverMedia(ctx, filter)
			if err != nil {
				errs[idx] = err
				return
			}
			lists[idx] = annotate(records, candidates.scores[t])
		}(i, mediaType)
	}
	wg.Wait()

	return lists, errs
}

// splitPage computes per-type limit/offset. With both types requested the
// limit splits ceil/floor and the offset floors on both sides, so one
// logical page draws from both tables without a cross-table UNION.
func splitPage(pageSize, page, types int) (limits, offsets []int) {
	offset := (page - 1) * pageSize

	if types == 1 {
		return []int{pageSize}, []int{offset}
	}

	limits = []int{(pageSize + 1) / 2, pageSize / 2}
	offsets = []int{offset / 2, offset / 2}
	return limits, offsets
}

// buildFilter translates a QuerySpec into one media type's relational filter.
func (e *Engine) buildFilter(spec QuerySpec, mediaType models.MediaType, candidates candidateSets, limit, offset int) *database.DiscoverFilter {
	voteFloor := e.cfg.PopularityVoteFloor
	if spec.SortBy == models.SortByAggregatedScore {
		// Score ranking uses a stricter floor so low-sample scores don't
		// dominate the top of the page.
		voteFloor = e.cfg.ScoreVoteFloor
	}

	filter := &database.DiscoverFilter{
		MediaType:     mediaType,
		UserID:        spec.UserID,
		MinScore:      spec.MinScore,
		MaxScore:      spec.MaxScore,
		MinYear:       spec.MinYear,
		MaxYear:       spec.MaxYear,
		GenreNames:    spec.GenreNames,
		CastIDs:       spec.CastIDs,
		CrewIDs:       spec.CrewIDs,
		StreamingTags: spec.StreamingTags(),
		WatchedType:   spec.WatchedType,
		Pillars:       spec.Pillars,
		MinTier:       spec.MinTier,
		SortBy:        spec.SortBy,
		SortDirection: spec.SortDirection,
		VoteFloor:     voteFloor,
		Limit:         limit,
		Offset:        offset,
	}

	if candidates.active {
		filter.HasCandidates = true
		filter.CandidateIDs = candidates.ids[mediaType]
	}

	return filter
}

// annotate wraps records as ranked results, attaching vector similarity
// scores where the candidate stage produced them.
func annotate(records []models.MediaRecord, scores map[int64]float64) []models.RankedResult {
	results := make([]models.RankedResult, len(records))
	for i, record := range records {
		results[i] = models.RankedResult{MediaRecord: record}
		if scores != nil {
			if score, ok := scores[record.TmdbID]; ok {
				s := score
				results[i].SimilarityScore = &s
			}
		}
	}
	return results
}
