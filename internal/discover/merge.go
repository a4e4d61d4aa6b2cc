// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package discover

import (
	"sort"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// mergeAndRank unions the per-type result lists, re-applies the global sort
// in memory and truncates to the page size. The in-memory re-sort is
// required: with half-and-half pagination neither sub-list alone reflects
// the true global order at the page boundary. The sort is deterministic;
// ties break by (mediaType, tmdbID).
func mergeAndRank(lists [][]models.RankedResult, sortBy models.SortBy, direction models.SortDirection, pageSize int) []models.RankedResult {
	var merged []models.RankedResult
	for _, list := range lists {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return rankedLess(&merged[i], &merged[j], sortBy, direction)
	})

	if len(merged) > pageSize {
		merged = merged[:pageSize]
	}
	return merged
}

// rankedLess orders two results under the chosen sort key. The natural order
// of every key is descending; an ascending direction negates the primary
// comparison but not the tiebreak.
func rankedLess(a, b *models.RankedResult, sortBy models.SortBy, direction models.SortDirection) bool {
	ka := sortKey(a, sortBy)
	kb := sortKey(b, sortBy)

	if ka != kb {
		if direction == models.SortAsc {
			return ka < kb
		}
		return ka > kb
	}

	if a.MediaType != b.MediaType {
		return a.MediaType < b.MediaType
	}
	return a.TmdbID < b.TmdbID
}

// sortKey projects a result onto the comparable axis of the sort mode.
// Missing values are zero: null scores and popularity sort as 0, missing or
// unparseable release dates as epoch 0.
func sortKey(r *models.RankedResult, sortBy models.SortBy) float64 {
	switch sortBy {
	case models.SortByAggregatedScore:
		if r.Ratings.AggregatedPercent == nil {
			return 0
		}
		return *r.Ratings.AggregatedPercent
	case models.SortByReleaseDate:
		if r.ReleaseDate == nil {
			return 0
		}
		return float64(r.ReleaseDate.Unix())
	default:
		return r.Popularity
	}
}
