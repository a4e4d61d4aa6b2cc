// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package config loads and validates application configuration using
// Koanf v2 with layered sources: struct defaults, optional YAML file,
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/validation"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Vector   VectorConfig   `koanf:"vector"`
	Discover DiscoverConfig `koanf:"discover"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// RateLimitReqs is the allowed requests per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"min=1"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=1s"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig configures the DuckDB media store.
type DatabaseConfig struct {
	// Path is the DuckDB database file; empty string opens in-memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads sets the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`

	// QueryTimeout bounds individual relational queries.
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"min=1s"`
}

// VectorConfig configures the ANN vector index client.
type VectorConfig struct {
	// URL is the base URL of the vector index REST endpoint.
	URL string `koanf:"url" validate:"required,url"`

	// Collection is the point collection holding media taste vectors.
	Collection string `koanf:"collection" validate:"required"`

	// Timeout bounds individual recommend calls.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// CandidateMultiplier oversizes candidate fetches relative to the page
	// size so that downstream relational filtering and dedup can shrink the
	// set without starving the page.
	CandidateMultiplier int `koanf:"candidate_multiplier" validate:"min=1,max=20"`

	// BreakerMaxFailures trips the circuit breaker after this many
	// consecutive failures.
	BreakerMaxFailures int `koanf:"breaker_max_failures" validate:"min=1"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `koanf:"breaker_cooldown" validate:"min=1s"`
}

// DiscoverConfig tunes the discovery query engine.
type DiscoverConfig struct {
	// PageSize is the number of results per discovery page.
	PageSize int `koanf:"page_size" validate:"min=1,max=100"`

	// PopularityVoteFloor is the minimum aggregated vote count applied when
	// ranking by popularity.
	PopularityVoteFloor int `koanf:"popularity_vote_floor" validate:"min=0"`

	// ScoreVoteFloor is the stricter vote floor applied when ranking by
	// score, keeping low-sample score noise out of the top of the page.
	ScoreVoteFloor int `koanf:"score_vote_floor" validate:"min=0"`
}

// ScoringConfig tunes the recommendation scorer and fingerprint aggregator.
type ScoringConfig struct {
	// VoteFloor is the minimum aggregated vote count for recommendation
	// candidates; stricter than the discovery floors.
	VoteFloor int `koanf:"vote_floor" validate:"min=0"`

	// MinScorePercent is the minimum normalized aggregated score for
	// recommendation candidates.
	MinScorePercent float64 `koanf:"min_score_percent" validate:"min=0,max=100"`

	// LikeThreshold is the user score at or above which a rated title counts
	// as liked for the taste fingerprint.
	LikeThreshold float64 `koanf:"like_threshold" validate:"min=0,max=10"`

	// TopTraits is the size of the compact fingerprint slice.
	TopTraits int `koanf:"top_traits" validate:"min=1,max=16"`

	// SimilarityWeight and OverlapWeight blend ANN similarity with genre
	// overlap into the match percentage.
	SimilarityWeight float64 `koanf:"similarity_weight" validate:"min=0,max=1"`
	OverlapWeight    float64 `koanf:"overlap_weight" validate:"min=0,max=1"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if c.Scoring.SimilarityWeight+c.Scoring.OverlapWeight == 0 {
		return fmt.Errorf("invalid configuration: scoring weights must not both be zero")
	}

	return nil
}
