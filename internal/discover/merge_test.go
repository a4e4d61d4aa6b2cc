// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package discover

import (
	"testing"
	"time"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

func ranked(mediaType models.MediaType, tmdbID int64, popularity float64) models.RankedResult {
	return models.RankedResult{
		MediaRecord: models.MediaRecord{
			MediaType:  mediaType,
			TmdbID:     tmdbID,
			Popularity: popularity,
		},
	}
}

func ids(results []models.RankedResult) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.TmdbID
	}
	return out
}

func TestMergeAndRank_GlobalOrderAcrossTypes(t *testing.T) {
	movies := []models.RankedResult{
		ranked(models.MediaTypeMovie, 1, 90),
		ranked(models.MediaTypeMovie, 2, 50),
	}
	shows := []models.RankedResult{
		ranked(models.MediaTypeShow, 3, 70),
		ranked(models.MediaTypeShow, 4, 30),
	}

	merged := mergeAndRank([][]models.RankedResult{movies, shows}, models.SortByPopularity, models.SortDesc, 10)

	want := []int64{1, 3, 2, 4}
	got := ids(merged)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestMergeAndRank_AscendingDirection(t *testing.T) {
	lists := [][]models.RankedResult{
		{ranked(models.MediaTypeMovie, 1, 90), ranked(models.MediaTypeMovie, 2, 50)},
	}

	merged := mergeAndRank(lists, models.SortByPopularity, models.SortAsc, 10)

	if merged[0].TmdbID != 2 || merged[1].TmdbID != 1 {
		t.Errorf("ascending order = %v, want [2 1]", ids(merged))
	}
}

func TestMergeAndRank_TruncatesToPageSize(t *testing.T) {
	lists := [][]models.RankedResult{
		{
			ranked(models.MediaTypeMovie, 1, 90),
			ranked(models.MediaTypeMovie, 2, 80),
			ranked(models.MediaTypeMovie, 3, 70),
		},
	}

	merged := mergeAndRank(lists, models.SortByPopularity, models.SortDesc, 2)
	if len(merged) != 2 {
		t.Fatalf("len = %d, want 2", len(merged))
	}
	if merged[0].TmdbID != 1 || merged[1].TmdbID != 2 {
		t.Errorf("page = %v, want [1 2]", ids(merged))
	}
}

func TestMergeAndRank_TiesBreakDeterministically(t *testing.T) {
	lists := [][]models.RankedResult{
		{ranked(models.MediaTypeShow, 5, 50), ranked(models.MediaTypeShow, 2, 50)},
		{ranked(models.MediaTypeMovie, 9, 50)},
	}

	merged := mergeAndRank(lists, models.SortByPopularity, models.SortDesc, 10)

	// Equal keys order by media type (movie < show), then tmdb id.
	got := ids(merged)
	want := []int64{9, 2, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order = %v, want %v", got, want)
		}
	}
}

func TestSortKey_ScoreAndDateFallbacks(t *testing.T) {
	score := 82.0
	withScore := ranked(models.MediaTypeMovie, 1, 0)
	withScore.Ratings.AggregatedPercent = &score

	noScore := ranked(models.MediaTypeMovie, 2, 0)

	if got := sortKey(&withScore, models.SortByAggregatedScore); got != 82 {
		t.Errorf("sortKey(with score) = %v, want 82", got)
	}
	if got := sortKey(&noScore, models.SortByAggregatedScore); got != 0 {
		t.Errorf("sortKey(nil score) = %v, want 0", got)
	}

	date := time.Date(1999, 3, 31, 0, 0, 0, 0, time.UTC)
	withDate := ranked(models.MediaTypeMovie, 3, 0)
	withDate.ReleaseDate = &date

	if got := sortKey(&withDate, models.SortByReleaseDate); got != float64(date.Unix()) {
		t.Errorf("sortKey(with date) = %v, want %v", got, float64(date.Unix()))
	}
	if got := sortKey(&noScore, models.SortByReleaseDate); got != 0 {
		t.Errorf("sortKey(nil date) = %v, want 0", got)
	}
}

func TestMergeAndRank_EmptyInput(t *testing.T) {
	merged := mergeAndRank(nil, models.SortByPopularity, models.SortDesc, 40)
	if len(merged) != 0 {
		t.Errorf("merged = %v, want empty", merged)
	}
}
