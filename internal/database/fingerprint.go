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

// SumLikedTraits sums each trait-score column across every title of one
// media type the user scored at or above likeThreshold. NULL traits count as
// zero. A user with no liked titles yields an all-zero map, not an error.
func (db *DB) SumLikedTraits(ctx context.Context, userID int64, mediaType models.MediaType, likeThreshold float64) (map[string]float64, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", mediaType)
	}

	sums := make([]string, len(models.TraitKeys))
	for i, key := range models.TraitKeys {
		sums[i] = fmt.Sprintf("SUM(COALESCE(m.%s, 0))", models.TraitColumn(key))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s m
		INNER JOIN user_scores us ON us.media_type = ?
			AND us.tmdb_id = m.tmdb_id
		WHERE us.user_id = ? AND us.score >= ?
	`, strings.Join(sums, ", "), mediaType.Table())

	ctx, cancel := db.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, string(mediaType), userID, likeThreshold)

	totals := make([]sql.NullFloat64, len(models.TraitKeys))
	dest := make([]interface{}, len(totals))
	for i := range totals {
		dest[i] = &totals[i]
	}

	err := row.Scan(dest...)
	metrics.ObserveDBQuery("fingerprint", mediaType.Table(), start, err)
	if err != nil {
		return nil, fmt.Errorf("sum liked traits for %s: %w", mediaType, err)
	}

	result := make(map[string]float64, len(models.TraitKeys))
	for i, key := range models.TraitKeys {
		result[key] = totals[i].Float64
	}

	return result, nil
}
