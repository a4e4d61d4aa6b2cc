// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/metrics"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// DiscoverFilter carries the fully-normalized relational predicates for one
// media type. All fields are optional unless noted; absent fields emit no
// predicate. Values are bound through the named-parameter builder, never
// interpolated.
type DiscoverFilter struct {
	MediaType models.MediaType

	// UserID scopes the watch-state join; required when WatchedType is set.
	UserID int64

	MinScore *float64
	MaxScore *float64
	MinYear  *int
	MaxYear  *int

	// GenreNames are already-resolved genre names (OR within the list).
	GenreNames []string

	// CastIDs / CrewIDs restrict to titles featuring any of the given people.
	CastIDs []int64
	CrewIDs []int64

	// StreamingTags are composited "{country}_{providerID}" availability
	// tags (OR within the list).
	StreamingTags []string

	WatchedType models.WatchedType

	// Pillars filters on fingerprint pillars at the given tier.
	Pillars []string
	MinTier int

	// CandidateIDs restricts results to a vector-stage candidate set.
	// Distinguish "no restriction" (HasCandidates false) from "restriction
	// that matched nothing" (HasCandidates true, empty slice): the latter
	// must produce zero rows and is short-circuited by the engine.
	CandidateIDs  []int64
	HasCandidates bool

	SortBy        models.SortBy
	SortDirection models.SortDirection

	// VoteFloor is the minimum aggregated vote count; the engine passes a
	// stricter floor when ranking by score than by popularity.
	VoteFloor int

	Limit  int
	Offset int
}

// mediaSelectList returns the projection for MediaRecord scans, aliased to m.
func mediaSelectList() string {
	cols := []string{
		"m.tmdb_id", "m.title", "m.release_year", "m.release_date",
		"m.poster_path", "m.backdrop_path", "m.popularity",
		"m.tmdb_score", "m.tmdb_score_percent", "m.tmdb_votes",
		"m.imdb_score", "m.imdb_score_percent", "m.imdb_votes",
		"m.metacritic_score", "m.metacritic_score_percent", "m.metacritic_votes",
		"m.rotten_score", "m.rotten_score_percent", "m.rotten_votes",
		"m.aggregated_score_percent", "m.aggregated_votes",
		"m.genres", "m.streaming_tags",
	}
	for _, key := range models.TraitKeys {
		cols = append(cols, "m."+models.TraitColumn(key))
	}
	return strings.Join(cols, ", ")
}

// buildDiscoverQuery composes the parameterized statement for one media type.
// Predicate composition order: base sanity, candidate membership, ranges,
// pillars, streaming, genres, cast/crew, watch-state join, sort NOT NULL.
func buildDiscoverQuery(f *DiscoverFilter) (*Builder, error) {
	if !f.MediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", f.MediaType)
	}

	b := NewBuilder(mediaSelectList(), f.MediaType.Table()+" m")

	// Base sanity predicates: rows missing core display fields never
	// surface, and a vote floor keeps unrated noise out.
	b.Where("m.title IS NOT NULL").
		Where("m.release_year IS NOT NULL").
		Where("m.poster_path IS NOT NULL AND m.poster_path <> ''").
		Where("m.popularity IS NOT NULL").
		Where("m.aggregated_votes >= :vote_floor").
		Bind("vote_floor", f.VoteFloor)

	if f.HasCandidates {
		b.Where("m.tmdb_id IN (:candidate_ids)").Bind("candidate_ids", f.CandidateIDs)
	}

	if f.MinScore != nil {
		b.Where("m.aggregated_score_percent >= :min_score").Bind("min_score", *f.MinScore)
	}
	if f.MaxScore != nil {
		b.Where("m.aggregated_score_percent <= :max_score").Bind("max_score", *f.MaxScore)
	}
	if f.MinYear != nil {
		b.Where("m.release_year >= :min_year").Bind("min_year", *f.MinYear)
	}
	if f.MaxYear != nil {
		b.Where("m.release_year <= :max_year").Bind("max_year", *f.MaxYear)
	}

	if len(f.Pillars) > 0 {
		addPillarPredicates(b, f.Pillars, f.MinTier)
	}

	if len(f.StreamingTags) > 0 {
		addListMembership(b, "m.streaming_tags", "stream_tag", f.StreamingTags)
	}
	if len(f.GenreNames) > 0 {
		addListMembership(b, "m.genres", "genre", f.GenreNames)
	}

	if len(f.CastIDs) > 0 {
		b.Where(`EXISTS (SELECT 1 FROM person_appearances pa
			WHERE pa.media_type = :media_type AND pa.tmdb_id = m.tmdb_id
			AND pa.role = 'cast' AND pa.person_id IN (:cast_ids))`).
			Bind("cast_ids", f.CastIDs)
	}
	if len(f.CrewIDs) > 0 {
		b.Where(`EXISTS (SELECT 1 FROM person_appearances pc
			WHERE pc.media_type = :media_type AND pc.tmdb_id = m.tmdb_id
			AND pc.role = 'crew' AND pc.person_id IN (:crew_ids))`).
			Bind("crew_ids", f.CrewIDs)
	}
	if len(f.CastIDs) > 0 || len(f.CrewIDs) > 0 {
		b.Bind("media_type", string(f.MediaType))
	}

	addWatchStateJoin(b, f)
	addOrdering(b, f)

	b.Limit(f.Limit).Offset(f.Offset)

	return b, nil
}

// addPillarPredicates requires, per pillar, that at least PillarMinTraits of
// the pillar's trait columns clear the tier threshold. Trait column names
// come from the static pillar table, never from user input.
func addPillarPredicates(b *Builder, pillars []string, tier int) {
	b.Bind("pillar_threshold", models.ThresholdForTier(tier))

	for _, pillar := range pillars {
		traits, ok := models.PillarTraits[pillar]
		if !ok {
			continue
		}

		terms := make([]string, len(traits))
		for i, trait := range traits {
			terms[i] = fmt.Sprintf(
				"(CASE WHEN m.%s >= :pillar_threshold THEN 1 ELSE 0 END)",
				models.TraitColumn(trait),
			)
		}
		b.Where(fmt.Sprintf("(%s) >= %d", strings.Join(terms, " + "), models.PillarMinTraits))
	}
}

// addListMembership matches any of the given values against a comma-joined
// list column, one OR clause per value.
func addListMembership(b *Builder, column, paramPrefix string, values []string) {
	clauses := make([]string, len(values))
	for i, value := range values {
		name := fmt.Sprintf("%s_%d", paramPrefix, i)
		clauses[i] = fmt.Sprintf("list_contains(str_split(%s, ','), :%s)", column, name)
		b.Bind(name, value)
	}
	b.Where("(" + strings.Join(clauses, " OR ") + ")")
}

// addWatchStateJoin attaches the user-state join. Watched and plan-to-watch
// are inner joins; didn't-watch is a left join with an IS NULL predicate
// because it inverts row multiplicity semantics.
func addWatchStateJoin(b *Builder, f *DiscoverFilter) {
	if f.WatchedType == models.WatchedTypeAny {
		return
	}

	b.Bind("watch_user", f.UserID).Bind("watch_media_type", string(f.MediaType))

	switch f.WatchedType {
	case models.WatchedTypeWatched:
		b.Join(`INNER JOIN user_watch_history wh ON wh.user_id = :watch_user
			AND wh.media_type = :watch_media_type AND wh.tmdb_id = m.tmdb_id`)
	case models.WatchedTypePlanToWatch:
		b.Join(`INNER JOIN user_wishlist wl ON wl.user_id = :watch_user
			AND wl.media_type = :watch_media_type AND wl.tmdb_id = m.tmdb_id`)
	case models.WatchedTypeDidntWatch:
		b.Join(`LEFT JOIN user_watch_history wh ON wh.user_id = :watch_user
			AND wh.media_type = :watch_media_type AND wh.tmdb_id = m.tmdb_id`)
		b.Where("wh.tmdb_id IS NULL")
	}
}

// addOrdering applies the sort key with an explicit direction, a NOT NULL
// predicate on the sort column, and a tmdb_id tiebreak so that pagination is
// deterministic across identical requests.
func addOrdering(b *Builder, f *DiscoverFilter) {
	column := "m." + f.SortBy.Column()
	direction := "DESC"
	if f.SortDirection == models.SortAsc {
		direction = "ASC"
	}

	b.Where(column + " IS NOT NULL")
	b.OrderBy(column + " " + direction)
	b.OrderBy("m.tmdb_id ASC")
}

// DiscoverMedia runs the relational stage for one media type and returns the
// matching records in SQL order. An empty result is a nil slice, not an error.
func (db *DB) DiscoverMedia(ctx context.Context, f *DiscoverFilter) ([]models.MediaRecord, error) {
	builder, err := buildDiscoverQuery(f)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.Render()
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("discover", f.MediaType.Table(), start, err)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", f.MediaType, err)
	}
	defer rows.Close()

	var records []models.MediaRecord
	for rows.Next() {
		record, err := scanMediaRecord(rows, f.MediaType)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", f.MediaType, err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", f.MediaType, err)
	}

	return records, nil
}

// scanMediaRecord scans one projected row. Missing payload fields scan as
// NULL and become zero values or absent map entries, never errors.
func scanMediaRecord(rows *sql.Rows, mediaType models.MediaType) (models.MediaRecord, error) {
	var (
		record models.MediaRecord

		releaseYear  sql.NullInt64
		releaseDate  sql.NullTime
		posterPath   sql.NullString
		backdropPath sql.NullString
		popularity   sql.NullFloat64

		tmdbScore, tmdbPercent             sql.NullFloat64
		imdbScore, imdbPercent             sql.NullFloat64
		metacriticScore, metacriticPercent sql.NullFloat64
		rottenScore, rottenPercent         sql.NullFloat64
		tmdbVotes, imdbVotes               sql.NullInt64
		metacriticVotes, rottenVotes       sql.NullInt64

		aggregatedPercent sql.NullFloat64
		aggregatedVotes   sql.NullInt64

		genres        sql.NullString
		streamingTags sql.NullString
	)

	traits := make([]sql.NullFloat64, len(models.TraitKeys))

	dest := []interface{}{
		&record.TmdbID, &record.Title, &releaseYear, &releaseDate,
		&posterPath, &backdropPath, &popularity,
		&tmdbScore, &tmdbPercent, &tmdbVotes,
		&imdbScore, &imdbPercent, &imdbVotes,
		&metacriticScore, &metacriticPercent, &metacriticVotes,
		&rottenScore, &rottenPercent, &rottenVotes,
		&aggregatedPercent, &aggregatedVotes,
		&genres, &streamingTags,
	}
	for i := range traits {
		dest = append(dest, &traits[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return models.MediaRecord{}, err
	}

	record.MediaType = mediaType
	record.ReleaseYear = int(releaseYear.Int64)
	if releaseDate.Valid {
		d := releaseDate.Time
		record.ReleaseDate = &d
	}
	record.PosterPath = posterPath.String
	if backdropPath.Valid {
		record.BackdropPath = &backdropPath.String
	}
	record.Popularity = popularity.Float64

	record.Ratings = models.Ratings{
		Tmdb:              providerRating(tmdbScore, tmdbPercent, tmdbVotes),
		Imdb:              providerRating(imdbScore, imdbPercent, imdbVotes),
		Metacritic:        providerRating(metacriticScore, metacriticPercent, metacriticVotes),
		RottenTomatoes:    providerRating(rottenScore, rottenPercent, rottenVotes),
		AggregatedPercent: nullableFloat(aggregatedPercent),
		AggregatedVotes:   aggregatedVotes.Int64,
	}

	record.Genres = splitList(genres.String)
	record.StreamingTags = splitList(streamingTags.String)

	record.TraitScores = make(map[string]float64)
	for i, key := range models.TraitKeys {
		if traits[i].Valid {
			record.TraitScores[key] = traits[i].Float64
		}
	}

	return record, nil
}

func providerRating(score, percent sql.NullFloat64, votes sql.NullInt64) models.ProviderRating {
	return models.ProviderRating{
		Score:   nullableFloat(score),
		Percent: nullableFloat(percent),
		Votes:   votes.Int64,
	}
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// splitList splits a comma-joined list column; empty strings yield nil.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
