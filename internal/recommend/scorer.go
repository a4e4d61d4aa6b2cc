// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package recommend builds personalized suggestions from a user's rating
// history: ANN recommendation seeded by the liked/disliked split of their
// scores, blended with genre overlap, plus the aggregated taste fingerprint.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/metrics"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/vector"
)

// Store is the relational access the scorer needs. Implemented by
// *database.DB.
type Store interface {
	GetUserScores(ctx context.Context, userID int64) ([]models.ScoredItem, error)
	GetExcludedIDs(ctx context.Context, userID int64) (map[models.MediaType][]int64, error)
	GetMediaByIDs(ctx context.Context, mediaType models.MediaType, ids []int64) ([]models.MediaRecord, error)
	GetMediaGenres(ctx context.Context, mediaType models.MediaType, ids []int64) (map[int64][]string, error)
	SumLikedTraits(ctx context.Context, userID int64, mediaType models.MediaType, likeThreshold float64) (map[string]float64, error)
}

// Scorer produces per-user recommendations. Unlike discovery, a vector
// failure here is an error: there is no meaningful filter-only fallback for
// a taste-seeded query.
type Scorer struct {
	store  Store
	index  vector.Recommender
	cfg    config.ScoringConfig
	vcfg   config.VectorConfig
	limit  int
	logger zerolog.Logger
}

// NewScorer creates a recommendation scorer. limit is the maximum result
// length per request.
func NewScorer(store Store, index vector.Recommender, cfg config.ScoringConfig, vcfg config.VectorConfig, limit int, logger zerolog.Logger) *Scorer {
	return &Scorer{
		store:  store,
		index:  index,
		cfg:    cfg,
		vcfg:   vcfg,
		limit:  limit,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// Result is one recommendation response.
type Result struct {
	Results []models.RankedResult `json:"results"`
}

// Recommend computes suggestions for one user. A user with no rating
// history gets an empty result without touching the vector index.
func (s *Scorer) Recommend(ctx context.Context, userID int64) (*Result, error) {
	scored, err := s.store.GetUserScores(ctx, userID)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("recommend: load user scores: %w", err)
	}
	if len(scored) == 0 {
		metrics.RecommendRequests.WithLabelValues("empty").Inc()
		return &Result{Results: []models.RankedResult{}}, nil
	}

	positives, negatives := splitScores(scored)

	excluded, err := s.buildExcludeSet(ctx, userID, scored)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	candidates, err := s.queryIndex(ctx, positives, negatives, excluded)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	positiveGenres, err := s.positiveGenreSet(ctx, positives)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	results, err := s.hydrate(ctx, candidates, positiveGenres)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	status := "ok"
	if len(results) == 0 {
		status = "empty"
	}
	metrics.RecommendRequests.WithLabelValues(status).Inc()

	return &Result{Results: results}, nil
}

// splitScores divides the score-descending history into seed halves. The
// better-rated ceil half seeds positively, the rest negatively; with a
// single rating everything is positive.
func splitScores(scored []models.ScoredItem) (positives, negatives []models.ScoredItem) {
	mid := (len(scored) + 1) / 2
	return scored[:mid], scored[mid:]
}

// buildExcludeSet unions the rating history with watch history and
// wishlist: anything the user already engaged with is never suggested.
func (s *Scorer) buildExcludeSet(ctx context.Context, userID int64, scored []models.ScoredItem) ([]uint64, error) {
	engaged, err := s.store.GetExcludedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: load excluded ids: %w", err)
	}

	seen := make(map[uint64]struct{})
	var ids []uint64

	add := func(id uint64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, item := range scored {
		add(vector.EncodePointID(item.MediaType, item.TmdbID))
	}
	for mediaType, tmdbIDs := range engaged {
		for _, id := range vector.EncodePointIDs(mediaType, tmdbIDs) {
			add(id)
		}
	}

	return ids, nil
}

// candidate is one vector hit pending hydration.
type candidate struct {
	mediaType models.MediaType
	tmdbID    int64
	score     float64
}

// queryIndex issues one recommend call per media type concurrently. Both
// calls share the same positive and negative seeds; the per-type filter
// keeps each result homogeneous. Any failure fails the whole request.
func (s *Scorer) queryIndex(ctx context.Context, positives, negatives []models.ScoredItem, excluded []uint64) (map[models.MediaType][]candidate, error) {
	positiveIDs := encodeItems(positives)
	negativeIDs := encodeItems(negatives)

	mediaTypes := []models.MediaType{models.MediaTypeMovie, models.MediaTypeShow}
	points := make([][]vector.ScoredPoint, len(mediaTypes))
	errs := make([]error, len(mediaTypes))

	var wg sync.WaitGroup
	for i, mediaType := range mediaTypes {
		wg.Add(1)
		go func(idx int, t models.MediaType) {
			defer wg.Done()

			filter := &vector.Filter{
				Must: []vector.Condition{
					vector.MatchValue("media_type", string(t)),
					vector.RangeGte("aggregated_votes", float64(s.cfg.VoteFloor)),
					vector.RangeGte("aggregated_score_percent", s.cfg.MinScorePercent),
				},
				MustNot: []vector.Condition{
					vector.FieldEmpty("poster_path"),
					vector.FieldEmpty("backdrop_path"),
				},
			}
			if len(excluded) > 0 {
				filter.MustNot = append(filter.MustNot, vector.ExcludeIDs(excluded))
			}

			points[idx], errs[idx] = s.index.Recommend(ctx, vector.RecommendQuery{
				Positive: positiveIDs,
				Negative: negativeIDs,
				Filter:   filter,
				Limit:    s.limit * s.vcfg.CandidateMultiplier,
			})
		}(i, mediaType)
	}
	wg.Wait()

	candidates := make(map[models.MediaType][]candidate)
	for i, mediaType := range mediaTypes {
		if errs[i] != nil {
			return nil, fmt.Errorf("recommend: vector query for %s: %w", mediaType, errs[i])
		}
		for _, point := range points[i] {
			_, tmdbID := vector.DecodePointID(point.ID)
			candidates[mediaType] = append(candidates[mediaType], candidate{
				mediaType: mediaType,
				tmdbID:    tmdbID,
				score:     point.Score,
			})
		}
	}

	return candidates, nil
}

func encodeItems(items []models.ScoredItem) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, vector.EncodePointID(item.MediaType, item.TmdbID))
	}
	return ids
}

// positiveGenreSet collects the distinct genres across the positive seeds.
func (s *Scorer) positiveGenreSet(ctx context.Context, positives []models.ScoredItem) (map[string]struct{}, error) {
	byType := make(map[models.MediaType][]int64)
	for _, item := range positives {
		byType[item.MediaType] = append(byType[item.MediaType], item.TmdbID)
	}

	set := make(map[string]struct{})
	for mediaType, ids := range byType {
		genres, err := s.store.GetMediaGenres(ctx, mediaType, ids)
		if err != nil {
			return nil, fmt.Errorf("recommend: load positive genres: %w", err)
		}
		for _, names := range genres {
			for _, name := range names {
				set[name] = struct{}{}
			}
		}
	}

	return set, nil
}

// hydrate loads full records for the candidates, blends similarity with
// genre overlap into a match percentage and returns the ranked, truncated
// list.
func (s *Scorer) hydrate(ctx context.Context, candidates map[models.MediaType][]candidate, positiveGenres map[string]struct{}) ([]models.RankedResult, error) {
	results := make([]models.RankedResult, 0, s.limit)

	for mediaType, list := range candidates {
		if len(list) == 0 {
			continue
		}

		ids := make([]int64, len(list))
		scores := make(map[int64]float64, len(list))
		for i, c := range list {
			ids[i] = c.tmdbID
			scores[c.tmdbID] = c.score
		}

		records, err := s.store.GetMediaByIDs(ctx, mediaType, ids)
		if err != nil {
			return nil, fmt.Errorf("recommend: hydrate %s: %w", mediaType, err)
		}

		for _, record := range records {
			similarity := scores[record.TmdbID]
			overlap := jaccardOverlap(record.Genres, positiveGenres)
			blend := s.cfg.SimilarityWeight*similarity + s.cfg.OverlapWeight*overlap

			match := clampPercent(blend)
			sim := similarity
			results = append(results, models.RankedResult{
				MediaRecord:     record,
				SimilarityScore: &sim,
				MatchPercentage: &match,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if *a.MatchPercentage != *b.MatchPercentage {
			return *a.MatchPercentage > *b.MatchPercentage
		}
		if *a.SimilarityScore != *b.SimilarityScore {
			return *a.SimilarityScore > *b.SimilarityScore
		}
		if a.MediaType != b.MediaType {
			return a.MediaType < b.MediaType
		}
		return a.TmdbID < b.TmdbID
	})

	if len(results) > s.limit {
		results = results[:s.limit]
	}

	return results, nil
}

// jaccardOverlap computes |intersection| / |union| between a candidate's
// genres and the positive seed genre set. Either side empty means zero.
func jaccardOverlap(genres []string, positive map[string]struct{}) float64 {
	if len(genres) == 0 || len(positive) == 0 {
		return 0
	}

	union := make(map[string]struct{}, len(positive)+len(genres))
	for name := range positive {
		union[name] = struct{}{}
	}

	shared := 0
	seen := make(map[string]struct{}, len(genres))
	for _, name := range genres {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := positive[name]; ok {
			shared++
		}
		union[name] = struct{}{}
	}

	return float64(shared) / float64(len(union))
}

// clampPercent converts a [0,1] blend to a display percentage capped at 99,
// so no suggestion ever claims a perfect match.
func clampPercent(blend float64) int {
	p := int(blend * 100)
	if p < 0 {
		return 0
	}
	if p > 99 {
		return 99
	}
	return p
}
