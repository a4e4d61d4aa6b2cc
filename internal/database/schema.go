// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// mediaColumns is the shared column definition of the movies and shows
// tables. Genres and streaming tags are stored as comma-joined strings and
// split with str_split() in predicates; trait scores are one column per
// canonical trait key.
func mediaColumns() string {
	cols := []string{
		"tmdb_id BIGINT PRIMARY KEY",
		"title VARCHAR",
		"release_year INTEGER",
		"release_date DATE",
		"poster_path VARCHAR",
		"backdrop_path VARCHAR",
		"popularity DOUBLE",
		"tmdb_score DOUBLE",
		"tmdb_score_percent DOUBLE",
		"tmdb_votes BIGINT DEFAULT 0",
		"imdb_score DOUBLE",
		"imdb_score_percent DOUBLE",
		"imdb_votes BIGINT DEFAULT 0",
		"metacritic_score DOUBLE",
		"metacritic_score_percent DOUBLE",
		"metacritic_votes BIGINT DEFAULT 0",
		"rotten_score DOUBLE",
		"rotten_score_percent DOUBLE",
		"rotten_votes BIGINT DEFAULT 0",
		"aggregated_score_percent DOUBLE",
		"aggregated_votes BIGINT DEFAULT 0",
		"genres VARCHAR",
		"streaming_tags VARCHAR",
	}
	for _, key := range models.TraitKeys {
		cols = append(cols, models.TraitColumn(key)+" DOUBLE")
	}
	return strings.Join(cols, ", ")
}

// schemaStatements returns the CREATE TABLE statements for all tables the
// query engine reads. Idempotent; population happens in the external ETL.
func schemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS movies (%s)", mediaColumns()),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS shows (%s)", mediaColumns()),
		`CREATE TABLE IF NOT EXISTS person_appearances (
			person_id BIGINT NOT NULL,
			media_type VARCHAR NOT NULL,
			tmdb_id BIGINT NOT NULL,
			role VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_watch_history (
			user_id BIGINT NOT NULL,
			media_type VARCHAR NOT NULL,
			tmdb_id BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_wishlist (
			user_id BIGINT NOT NULL,
			media_type VARCHAR NOT NULL,
			tmdb_id BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_scores (
			user_id BIGINT NOT NULL,
			media_type VARCHAR NOT NULL,
			tmdb_id BIGINT NOT NULL,
			score DOUBLE NOT NULL
		)`,
	}
}

// initSchema creates all tables if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
