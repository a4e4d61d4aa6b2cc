// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package discover

import (
	"strconv"
	"strings"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// RawParams are the loosely-typed request parameters as they arrive from the
// transport layer. Every field is optional; empty means absent.
type RawParams struct {
	UserID int64

	// MediaType selects "all", "movie" or "show".
	MediaType string

	Country  string
	Language string

	MinScore string
	MaxScore string
	MinYear  string
	MaxYear  string

	// WithGenres is a comma list of TMDB genre IDs or genre names.
	WithGenres string

	// WithCast / WithCrew are comma lists of person IDs.
	WithCast string
	WithCrew string

	// StreamingProviders is a comma list of provider IDs, combined with
	// Country into availability tags.
	StreamingProviders string

	WatchedType string

	// Pillars is a comma list of fingerprint pillar names; MinTier is the
	// selectivity tier (1-3) applied to all of them.
	Pillars string
	MinTier string

	// SimilarTo activates similarity mode: "movie:603" or "show:1396".
	SimilarTo string

	SortBy        string
	SortDirection string
	Page          string
}

// SimilarRef identifies the anchor title of a "similar to X" query.
type SimilarRef struct {
	MediaType models.MediaType
	TmdbID    int64
}

// QuerySpec is the fully-typed, normalized request. Invalid or unknown raw
// values never raise; they normalize to safe defaults, and a logically
// unsatisfiable combination is marked so the engine can return an empty page
// without touching the stores.
type QuerySpec struct {
	UserID int64

	MediaTypes []models.MediaType

	Country  string
	Language string

	MinScore *float64
	MaxScore *float64
	MinYear  *int
	MaxYear  *int

	GenreNames []string
	CastIDs    []int64
	CrewIDs    []int64

	StreamingProviderIDs []int64

	WatchedType models.WatchedType

	Pillars []string
	MinTier int

	SimilarTo *SimilarRef

	SortBy        models.SortBy
	SortDirection models.SortDirection
	Page          int

	// Unsatisfiable marks combinations like minYear > maxYear that are
	// normalized to an empty result rather than an error.
	Unsatisfiable bool
}

// GenreResolver resolves TMDB genre IDs to canonical genre names. External
// lookup collaborator; a static table implementation lives in this package.
type GenreResolver interface {
	GenreName(id int64) (string, bool)
}

// Normalize coerces raw parameters into a QuerySpec.
func Normalize(raw RawParams, genres GenreResolver) QuerySpec {
	spec := QuerySpec{
		UserID:        raw.UserID,
		Country:       strings.ToUpper(strings.TrimSpace(raw.Country)),
		Language:      strings.ToLower(strings.TrimSpace(raw.Language)),
		MediaTypes:    normalizeMediaTypes(raw.MediaType),
		WatchedType:   normalizeWatchedType(raw.WatchedType),
		SortBy:        normalizeSortBy(raw.SortBy),
		SortDirection: normalizeSortDirection(raw.SortDirection),
		Page:          normalizePage(raw.Page),
		MinTier:       normalizeTier(raw.MinTier),
	}

	spec.MinScore = parseFloatPtr(raw.MinScore)
	spec.MaxScore = parseFloatPtr(raw.MaxScore)
	spec.MinYear = parseIntPtr(raw.MinYear)
	spec.MaxYear = parseIntPtr(raw.MaxYear)

	spec.GenreNames = normalizeGenres(raw.WithGenres, genres)
	spec.CastIDs = parseIDList(raw.WithCast)
	spec.CrewIDs = parseIDList(raw.WithCrew)
	spec.StreamingProviderIDs = parseIDList(raw.StreamingProviders)
	spec.Pillars = normalizePillars(raw.Pillars)
	spec.SimilarTo = parseSimilarRef(raw.SimilarTo)

	if spec.MinScore != nil && spec.MaxScore != nil && *spec.MinScore > *spec.MaxScore {
		spec.Unsatisfiable = true
	}
	if spec.MinYear != nil && spec.MaxYear != nil && *spec.MinYear > *spec.MaxYear {
		spec.Unsatisfiable = true
	}

	return spec
}

// StreamingTags composes the per-country availability tags for the
// requested providers. No country means no streaming restriction.
func (s *QuerySpec) StreamingTags() []string {
	if s.Country == "" || len(s.StreamingProviderIDs) == 0 {
		return nil
	}
	tags := make([]string, len(s.StreamingProviderIDs))
	for i, providerID := range s.StreamingProviderIDs {
		tags[i] = s.Country + "_" + strconv.FormatInt(providerID, 10)
	}
	return tags
}

func normalizeMediaTypes(raw string) []models.MediaType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(models.MediaTypeMovie), "movies":
		return []models.MediaType{models.MediaTypeMovie}
	case string(models.MediaTypeShow), "shows", "tv":
		return []models.MediaType{models.MediaTypeShow}
	default:
		return []models.MediaType{models.MediaTypeMovie, models.MediaTypeShow}
	}
}

func normalizeWatchedType(raw string) models.WatchedType {
	switch models.WatchedType(strings.ToLower(strings.TrimSpace(raw))) {
	case models.WatchedTypeWatched:
		return models.WatchedTypeWatched
	case models.WatchedTypePlanToWatch:
		return models.WatchedTypePlanToWatch
	case models.WatchedTypeDidntWatch:
		return models.WatchedTypeDidntWatch
	default:
		return models.WatchedTypeAny
	}
}

func normalizeSortBy(raw string) models.SortBy {
	switch models.SortBy(strings.ToLower(strings.TrimSpace(raw))) {
	case models.SortByAggregatedScore:
		return models.SortByAggregatedScore
	case models.SortByReleaseDate:
		return models.SortByReleaseDate
	default:
		return models.SortByPopularity
	}
}

func normalizeSortDirection(raw string) models.SortDirection {
	if strings.EqualFold(strings.TrimSpace(raw), string(models.SortAsc)) {
		return models.SortAsc
	}
	return models.SortDesc
}

func normalizePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func normalizeTier(raw string) int {
	tier, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || tier < 1 {
		return 1
	}
	if tier > 3 {
		return 3
	}
	return tier
}

// normalizeGenres accepts numeric genre IDs (resolved through the lookup)
// and literal genre names, mixed freely. Unresolvable IDs are dropped.
func normalizeGenres(raw string, genres GenreResolver) []string {
	var names []string
	for _, token := range splitCSV(raw) {
		if id, err := strconv.ParseInt(token, 10, 64); err == nil {
			if genres != nil {
				if name, ok := genres.GenreName(id); ok {
					names = append(names, name)
				}
			}
			continue
		}
		names = append(names, token)
	}
	return names
}

func normalizePillars(raw string) []string {
	var pillars []string
	for _, token := range splitCSV(raw) {
		name := strings.ToLower(token)
		if models.KnownPillar(name) {
			pillars = append(pillars, name)
		}
	}
	return pillars
}

// parseSimilarRef parses "movie:603" style anchors; malformed values
// deactivate similarity mode.
func parseSimilarRef(raw string) *SimilarRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return nil
	}

	mediaType := models.MediaType(strings.ToLower(parts[0]))
	if !mediaType.Valid() {
		return nil
	}

	tmdbID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || tmdbID <= 0 {
		return nil
	}

	return &SimilarRef{MediaType: mediaType, TmdbID: tmdbID}
}

func parseFloatPtr(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntPtr(raw string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, token := range splitCSV(raw) {
		if id, err := strconv.ParseInt(token, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
