// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package models

import "time"

// MediaType identifies the physical media table a record belongs to.
type MediaType string

const (
	// MediaTypeMovie selects the movies table.
	MediaTypeMovie MediaType = "movie"
	// MediaTypeShow selects the shows table.
	MediaTypeShow MediaType = "show"
)

// Valid reports whether the media type is one of the known values.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeShow
}

// Table returns the relational table name backing this media type.
func (t MediaType) Table() string {
	if t == MediaTypeShow {
		return "shows"
	}
	return "movies"
}

// SortBy selects the global ordering of a discovery result page.
type SortBy string

const (
	// SortByPopularity orders by the popularity column (default).
	SortByPopularity SortBy = "popularity"
	// SortByAggregatedScore orders by the normalized aggregated score percent.
	SortByAggregatedScore SortBy = "aggregated_score"
	// SortByReleaseDate orders by the release date.
	SortByReleaseDate SortBy = "release_date"
)

// Column returns the SQL column the sort key maps to. Whatever column is
// chosen here also receives a NOT NULL predicate so that sort-by-X never
// surfaces rows lacking X.
func (s SortBy) Column() string {
	switch s {
	case SortByAggregatedScore:
		return "aggregated_score_percent"
	case SortByReleaseDate:
		return "release_date"
	default:
		return "popularity"
	}
}

// SortDirection is the direction applied to the chosen sort key.
type SortDirection string

const (
	// SortAsc sorts ascending.
	SortAsc SortDirection = "asc"
	// SortDesc sorts descending (default).
	SortDesc SortDirection = "desc"
)

// WatchedType filters discovery results by the user's watch state.
// Watched and plan-to-watch are implemented as inner joins; didn't-watch is a
// left join plus an IS NULL predicate because it changes row multiplicity.
type WatchedType string

const (
	// WatchedTypeAny applies no watch-state restriction.
	WatchedTypeAny WatchedType = ""
	// WatchedTypeWatched keeps only titles in the user's watch history.
	WatchedTypeWatched WatchedType = "watched"
	// WatchedTypePlanToWatch keeps only titles on the user's wishlist.
	WatchedTypePlanToWatch WatchedType = "plan_to_watch"
	// WatchedTypeDidntWatch keeps only titles absent from the watch history.
	WatchedTypeDidntWatch WatchedType = "didnt_watch"
)

// ProviderRating holds one rating provider's signal for a title.
type ProviderRating struct {
	// Score is the provider's raw score on its native scale (nil when the
	// provider has no rating for the title).
	Score *float64 `json:"score"`

	// Percent is the score normalized to 0-100.
	Percent *float64 `json:"percent"`

	// Votes is the provider's vote or review count.
	Votes int64 `json:"votes"`
}

// Ratings is the fixed bag of per-provider scores carried by every record.
type Ratings struct {
	Tmdb           ProviderRating `json:"tmdb"`
	Imdb           ProviderRating `json:"imdb"`
	Metacritic     ProviderRating `json:"metacritic"`
	RottenTomatoes ProviderRating `json:"rotten_tomatoes"`

	// AggregatedPercent is the cross-provider normalized score (0-100).
	AggregatedPercent *float64 `json:"aggregated_percent"`

	// AggregatedVotes is the combined vote count across providers.
	AggregatedVotes int64 `json:"aggregated_votes"`
}

// MediaRecord is one row of the media store projected for the query engine.
// It is read-only from the engine's perspective.
type MediaRecord struct {
	MediaType MediaType `json:"media_type"`
	TmdbID    int64     `json:"tmdb_id"`

	Title        string     `json:"title"`
	ReleaseYear  int        `json:"release_year"`
	ReleaseDate  *time.Time `json:"release_date"`
	PosterPath   string     `json:"poster_path"`
	BackdropPath *string    `json:"backdrop_path"`

	Popularity float64 `json:"popularity"`
	Ratings    Ratings `json:"ratings"`

	// Genres is the title's genre names.
	Genres []string `json:"genres"`

	// StreamingTags are per-country availability tags of the form
	// "{countryCode}_{providerID}", e.g. "US_8" for Netflix in the US.
	StreamingTags []string `json:"streaming_tags,omitempty"`

	// TraitScores maps trait keys (adrenaline, tension, ...) to 0-10 scores.
	// Absent traits are simply missing from the map.
	TraitScores map[string]float64 `json:"trait_scores,omitempty"`
}

// RankedResult is a MediaRecord with optional similarity annotations attached
// by the vector stage or the recommendation scorer. Request-scoped, never
// persisted.
type RankedResult struct {
	MediaRecord

	// SimilarityScore is the raw ANN similarity when a vector stage ran.
	SimilarityScore *float64 `json:"similarity_score,omitempty"`

	// MatchPercentage is the blended 0-99 match score in recommendation mode.
	MatchPercentage *int `json:"match_percentage,omitempty"`
}

// ScoredItem is one entry of a user's rating history feeding the
// recommendation scorer's positive/negative split.
type ScoredItem struct {
	TmdbID    int64     `json:"tmdb_id"`
	MediaType MediaType `json:"media_type"`
	Score     float64   `json:"score"`
}

// TraitKeys is the canonical, ordered set of trait-score keys carried by the
// media tables. Column name is "trait_" + key.
var TraitKeys = []string{
	"adrenaline", "tension", "suspense", "scare",
	"humor", "romance", "warmth", "melancholy",
	"intellect", "curiosity", "complexity", "realism",
	"artistry", "spectacle", "performance", "atmosphere",
}

// TraitColumn returns the SQL column name for a trait key.
func TraitColumn(key string) string {
	return "trait_" + key
}
