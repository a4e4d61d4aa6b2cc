// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/vector"
)

type fakeStore struct {
	scores   []models.ScoredItem
	excluded map[models.MediaType][]int64
	media    map[models.MediaType][]models.MediaRecord
	genres   map[models.MediaType]map[int64][]string
	traits   map[models.MediaType]map[string]float64

	scoresErr error
}

func (s *fakeStore) GetUserScores(_ context.Context, _ int64) ([]models.ScoredItem, error) {
	return s.scores, s.scoresErr
}

func (s *fakeStore) GetExcludedIDs(_ context.Context, _ int64) (map[models.MediaType][]int64, error) {
	if s.excluded == nil {
		return map[models.MediaType][]int64{}, nil
	}
	return s.excluded, nil
}

func (s *fakeStore) GetMediaByIDs(_ context.Context, mediaType models.MediaType, ids []int64) ([]models.MediaRecord, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.MediaRecord
	for _, r := range s.media[mediaType] {
		if want[r.TmdbID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetMediaGenres(_ context.Context, mediaType models.MediaType, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string)
	for _, id := range ids {
		if genres, ok := s.genres[mediaType][id]; ok {
			out[id] = genres
		}
	}
	return out, nil
}

func (s *fakeStore) SumLikedTraits(_ context.Context, _ int64, mediaType models.MediaType, _ float64) (map[string]float64, error) {
	sums := make(map[string]float64, len(models.TraitKeys))
	for _, key := range models.TraitKeys {
		sums[key] = s.traits[mediaType][key]
	}
	return sums, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	queries []vector.RecommendQuery

	points map[models.MediaType][]vector.ScoredPoint
	err    error
}

func (i *fakeIndex) Recommend(_ context.Context, query vector.RecommendQuery) ([]vector.ScoredPoint, error) {
	i.mu.Lock()
	i.queries = append(i.queries, query)
	i.mu.Unlock()

	if i.err != nil {
		return nil, i.err
	}

	// Per-type fake results keyed by the media_type match condition.
	for _, cond := range query.Filter.Must {
		if cond.Match != nil {
			if t, ok := cond.Match.Value.(string); ok {
				return i.points[models.MediaType(t)], nil
			}
		}
	}
	return nil, nil
}

func scoringDefaults() config.ScoringConfig {
	return config.ScoringConfig{
		VoteFloor:        500,
		MinScorePercent:  55,
		LikeThreshold:    6,
		TopTraits:        4,
		SimilarityWeight: 0.9,
		OverlapWeight:    0.1,
	}
}

func newTestScorer(store *fakeStore, index *fakeIndex) *Scorer {
	return NewScorer(store, index, scoringDefaults(), config.VectorConfig{CandidateMultiplier: 5}, 40, zerolog.Nop())
}

func TestSplitScores(t *testing.T) {
	items := func(ids ...int64) []models.ScoredItem {
		out := make([]models.ScoredItem, len(ids))
		for i, id := range ids {
			out[i] = models.ScoredItem{TmdbID: id, MediaType: models.MediaTypeMovie}
		}
		return out
	}

	tests := []struct {
		name     string
		in       []models.ScoredItem
		wantPos  int
		wantNeg  int
	}{
		{"single item all positive", items(1), 1, 0},
		{"two items split one-one", items(1, 2), 1, 1},
		{"odd count favors positive", items(1, 2, 3), 2, 1},
		{"even count splits evenly", items(1, 2, 3, 4), 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, neg := splitScores(tt.in)
			if len(pos) != tt.wantPos || len(neg) != tt.wantNeg {
				t.Errorf("split = %d/%d, want %d/%d", len(pos), len(neg), tt.wantPos, tt.wantNeg)
			}
		})
	}
}

func TestSplitScores_HighRatedGoesPositive(t *testing.T) {
	// Input arrives score-descending from the store.
	scored := []models.ScoredItem{
		{TmdbID: 100, MediaType: models.MediaTypeMovie, Score: 9},
		{TmdbID: 200, MediaType: models.MediaTypeMovie, Score: 2},
	}

	pos, neg := splitScores(scored)
	if len(pos) != 1 || pos[0].TmdbID != 100 {
		t.Errorf("positives = %v, want [100]", pos)
	}
	if len(neg) != 1 || neg[0].TmdbID != 200 {
		t.Errorf("negatives = %v, want [200]", neg)
	}
}

func TestScorerRecommend_EmptyHistory(t *testing.T) {
	index := &fakeIndex{}
	scorer := newTestScorer(&fakeStore{}, index)

	result, err := scorer.Recommend(context.Background(), 7)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("results = %v, want empty", result.Results)
	}
	if len(index.queries) != 0 {
		t.Error("empty history must not touch the vector index")
	}
}

func TestScorerRecommend_EndToEnd(t *testing.T) {
	store := &fakeStore{
		scores: []models.ScoredItem{
			{TmdbID: 100, MediaType: models.MediaTypeMovie, Score: 9},
			{TmdbID: 200, MediaType: models.MediaTypeMovie, Score: 2},
		},
		excluded: map[models.MediaType][]int64{
			models.MediaTypeMovie: {300},
		},
		media: map[models.MediaType][]models.MediaRecord{
			models.MediaTypeMovie: {
				{MediaType: models.MediaTypeMovie, TmdbID: 604, Genres: []string{"Action", "Science Fiction"}},
			},
			models.MediaTypeShow: {
				{MediaType: models.MediaTypeShow, TmdbID: 1396, Genres: []string{"Drama"}},
			},
		},
		genres: map[models.MediaType]map[int64][]string{
			models.MediaTypeMovie: {100: {"Action", "Science Fiction"}},
		},
	}
	index := &fakeIndex{
		points: map[models.MediaType][]vector.ScoredPoint{
			models.MediaTypeMovie: {{ID: vector.EncodePointID(models.MediaTypeMovie, 604), Score: 0.9}},
			models.MediaTypeShow:  {{ID: vector.EncodePointID(models.MediaTypeShow, 1396), Score: 0.8}},
		},
	}
	scorer := newTestScorer(store, index)

	result, err := scorer.Recommend(context.Background(), 7)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(index.queries) != 2 {
		t.Fatalf("index queries = %d, want 2 (one per media type)", len(index.queries))
	}

	// Seeds: positive = better half, negative = rest.
	posID := vector.EncodePointID(models.MediaTypeMovie, 100)
	negID := vector.EncodePointID(models.MediaTypeMovie, 200)
	for _, q := range index.queries {
		if len(q.Positive) != 1 || q.Positive[0] != posID {
			t.Errorf("positive = %v, want [%d]", q.Positive, posID)
		}
		if len(q.Negative) != 1 || q.Negative[0] != negID {
			t.Errorf("negative = %v, want [%d]", q.Negative, negID)
		}

		// Exclude set covers rated and engaged titles; artwork fields
		// must both be non-empty.
		var excluded []uint64
		empty := make(map[string]bool)
		for _, cond := range q.Filter.MustNot {
			if cond.HasID != nil {
				excluded = cond.HasID
			}
			if cond.IsEmpty != nil {
				empty[cond.IsEmpty.Key] = true
			}
		}
		if len(excluded) != 3 {
			t.Errorf("exclude set = %v, want 3 ids (2 rated + 1 engaged)", excluded)
		}
		if !empty["poster_path"] || !empty["backdrop_path"] {
			t.Errorf("must_not is_empty keys = %v, want poster_path and backdrop_path", empty)
		}
	}

	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(result.Results))
	}

	// Movie 604 shares both genres with the positive seed: overlap 1.0,
	// blend 0.9*0.9 + 0.1*1.0 = 0.91 -> 91%. Show 1396 has no overlap:
	// 0.9*0.8 = 0.72 -> 72%.
	first := result.Results[0]
	if first.TmdbID != 604 || first.MatchPercentage == nil || *first.MatchPercentage != 91 {
		t.Errorf("first = %+v, want movie 604 at 91%%", first)
	}
	second := result.Results[1]
	if second.TmdbID != 1396 || second.MatchPercentage == nil || *second.MatchPercentage != 72 {
		t.Errorf("second = %+v, want show 1396 at 72%%", second)
	}
}

func TestBuildExcludeSet_DedupesAcrossSources(t *testing.T) {
	store := &fakeStore{
		excluded: map[models.MediaType][]int64{
			models.MediaTypeMovie: {100, 200},
			models.MediaTypeShow:  {100},
		},
	}
	scorer := newTestScorer(store, &fakeIndex{})

	scored := []models.ScoredItem{{TmdbID: 100, MediaType: models.MediaTypeMovie, Score: 8}}
	ids, err := scorer.buildExcludeSet(context.Background(), 7, scored)
	if err != nil {
		t.Fatalf("buildExcludeSet() error = %v", err)
	}

	// Movie 100 appears both rated and engaged; the show with the same
	// TMDB ID stays distinct.
	want := map[uint64]bool{
		vector.EncodePointID(models.MediaTypeMovie, 100): true,
		vector.EncodePointID(models.MediaTypeMovie, 200): true,
		vector.EncodePointID(models.MediaTypeShow, 100):  true,
	}
	if len(ids) != len(want) {
		t.Fatalf("exclude set = %v, want %d distinct ids", ids, len(want))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %d in exclude set", id)
		}
	}
}

func TestScorerRecommend_VectorFailureIsFatal(t *testing.T) {
	store := &fakeStore{
		scores: []models.ScoredItem{{TmdbID: 100, MediaType: models.MediaTypeMovie, Score: 8}},
	}
	index := &fakeIndex{err: errors.New("index down")}
	scorer := newTestScorer(store, index)

	if _, err := scorer.Recommend(context.Background(), 7); err == nil {
		t.Error("Recommend() should fail when the vector index fails")
	}
}

func TestScorerRecommend_StoreFailure(t *testing.T) {
	store := &fakeStore{scoresErr: errors.New("db closed")}
	scorer := newTestScorer(store, &fakeIndex{})

	if _, err := scorer.Recommend(context.Background(), 7); err == nil {
		t.Error("Recommend() should propagate store errors")
	}
}

func TestJaccardOverlap(t *testing.T) {
	positive := map[string]struct{}{"Action": {}, "Drama": {}}

	tests := []struct {
		name   string
		genres []string
		want   float64
	}{
		{"identical", []string{"Action", "Drama"}, 1.0},
		{"half shared", []string{"Action", "Comedy"}, 1.0 / 3.0},
		{"disjoint", []string{"Comedy"}, 0},
		{"empty candidate", nil, 0},
		{"duplicates count once", []string{"Action", "Action"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccardOverlap(tt.genres, positive); got != tt.want {
				t.Errorf("jaccardOverlap(%v) = %v, want %v", tt.genres, got, tt.want)
			}
		})
	}
}

func TestJaccardOverlap_EmptyPositiveSet(t *testing.T) {
	if got := jaccardOverlap([]string{"Action"}, nil); got != 0 {
		t.Errorf("jaccardOverlap with empty positives = %v, want 0", got)
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		blend float64
		want  int
	}{
		{0, 0},
		{-0.2, 0},
		{0.5, 50},
		{0.999, 99},
		{1.0, 99},
		{1.7, 99},
	}

	for _, tt := range tests {
		if got := clampPercent(tt.blend); got != tt.want {
			t.Errorf("clampPercent(%v) = %d, want %d", tt.blend, got, tt.want)
		}
	}
}
