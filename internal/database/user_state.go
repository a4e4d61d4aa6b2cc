// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/metrics"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// GetUserScores returns a user's rating history ordered by score descending,
// which is the order the recommendation scorer splits into positive and
// negative halves.
func (db *DB) GetUserScores(ctx context.Context, userID int64) ([]models.ScoredItem, error) {
	query := `
		SELECT media_type, tmdb_id, score
		FROM user_scores
		WHERE user_id = ?
		ORDER BY score DESC, tmdb_id ASC
	`

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, userID)
	metrics.ObserveDBQuery("user_scores", "user_scores", start, err)
	if err != nil {
		return nil, fmt.Errorf("query user scores: %w", err)
	}
	defer rows.Close()

	var items []models.ScoredItem
	for rows.Next() {
		var (
			mediaType string
			item      models.ScoredItem
		)
		if err := rows.Scan(&mediaType, &item.TmdbID, &item.Score); err != nil {
			return nil, fmt.Errorf("scan user score: %w", err)
		}
		item.MediaType = models.MediaType(mediaType)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user scores: %w", err)
	}

	return items, nil
}

// GetExcludedIDs returns the user's watch-history and wishlist IDs per media
// type. The recommendation scorer folds these into its exclude set so that
// already-seen and already-planned titles never come back as suggestions.
func (db *DB) GetExcludedIDs(ctx context.Context, userID int64) (map[models.MediaType][]int64, error) {
	query := `
		SELECT media_type, tmdb_id FROM user_watch_history WHERE user_id = ?
		UNION
		SELECT media_type, tmdb_id FROM user_wishlist WHERE user_id = ?
	`

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, userID, userID)
	metrics.ObserveDBQuery("excluded_ids", "user_watch_history", start, err)
	if err != nil {
		return nil, fmt.Errorf("query excluded ids: %w", err)
	}
	defer rows.Close()

	excluded := make(map[models.MediaType][]int64)
	for rows.Next() {
		var (
			mediaType string
			tmdbID    int64
		)
		if err := rows.Scan(&mediaType, &tmdbID); err != nil {
			return nil, fmt.Errorf("scan excluded id: %w", err)
		}
		t := models.MediaType(mediaType)
		excluded[t] = append(excluded[t], tmdbID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate excluded ids: %w", err)
	}

	return excluded, nil
}

// GetMediaByIDs hydrates full records for a candidate ID set of one media
// type. Order is not preserved; callers re-rank by their own score. IDs
// without a matching row are silently absent.
func (db *DB) GetMediaByIDs(ctx context.Context, mediaType models.MediaType, ids []int64) ([]models.MediaRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if !mediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}

	b := NewBuilder(mediaSelectList(), mediaType.Table()+" m")
	b.Where("m.tmdb_id IN (:ids)").Bind("ids", ids)

	query, args, err := b.Render()
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("media_by_ids", mediaType.Table(), start, err)
	if err != nil {
		return nil, fmt.Errorf("query media by ids: %w", err)
	}
	defer rows.Close()

	var records []models.MediaRecord
	for rows.Next() {
		record, err := scanMediaRecord(rows, mediaType)
		if err != nil {
			return nil, fmt.Errorf("scan media record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media records: %w", err)
	}

	return records, nil
}

// GetMediaRecord fetches one title by its TMDB ID. Returns ErrNotFound when
// no row matches.
func (db *DB) GetMediaRecord(ctx context.Context, mediaType models.MediaType, tmdbID int64) (*models.MediaRecord, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}

	b := NewBuilder(mediaSelectList(), mediaType.Table()+" m")
	b.Where("m.tmdb_id = :id").Bind("id", tmdbID)
	b.Limit(1)

	query, args, err := b.Render()
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("media_record", mediaType.Table(), start, err)
	if err != nil {
		return nil, fmt.Errorf("query media record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate media record: %w", err)
		}
		return nil, fmt.Errorf("media %s %d: %w", mediaType, tmdbID, ErrNotFound)
	}

	record, err := scanMediaRecord(rows, mediaType)
	if err != nil {
		return nil, fmt.Errorf("scan media record: %w", err)
	}
	return &record, nil
}

// GetMediaGenres returns the genre names per tmdb_id for one media type.
// Used to build the positive set's genre multiset for overlap scoring.
func (db *DB) GetMediaGenres(ctx context.Context, mediaType models.MediaType, ids []int64) (map[int64][]string, error) {
	if len(ids) == 0 {
		return map[int64][]string{}, nil
	}
	if !mediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}

	b := NewBuilder("m.tmdb_id, m.genres", mediaType.Table()+" m")
	b.Where("m.tmdb_id IN (:ids)").Bind("ids", ids)

	query, args, err := b.Render()
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.ObserveDBQuery("media_genres", mediaType.Table(), start, err)
	if err != nil {
		return nil, fmt.Errorf("query media genres: %w", err)
	}
	defer rows.Close()

	genres := make(map[int64][]string, len(ids))
	for rows.Next() {
		var (
			tmdbID int64
			joined *string
		)
		if err := rows.Scan(&tmdbID, &joined); err != nil {
			return nil, fmt.Errorf("scan media genres: %w", err)
		}
		if joined != nil {
			genres[tmdbID] = splitList(*joined)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media genres: %w", err)
	}

	return genres, nil
}
