// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package vector provides the client for the ANN taste-vector index. The
// index is an external collaborator consumed purely through its recommend
// contract; its internal ANN implementation is out of scope here.
package vector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/metrics"
)

// Recommender is the contract the query engines consume. Satisfied by
// *Client; test fakes implement it in-process.
type Recommender interface {
	// Recommend runs one ANN recommend call. A zero-match result is an
	// empty slice, not an error; errors indicate infrastructure faults.
	Recommend(ctx context.Context, query RecommendQuery) ([]ScoredPoint, error)
}

// Client talks to the vector index REST API. Calls are wrapped in a circuit
// breaker so a dead index degrades fast instead of stalling every request.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]ScoredPoint]
	logger     zerolog.Logger
}

// NewClient creates a vector index client from configuration.
func NewClient(cfg *config.VectorConfig, logger zerolog.Logger) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "vector").Logger(),
	}

	settings := gobreaker.Settings{
		Name:    "vector-index",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerMaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]ScoredPoint](settings)

	return c
}

// Recommend issues one recommend call through the circuit breaker.
func (c *Client) Recommend(ctx context.Context, query RecommendQuery) ([]ScoredPoint, error) {
	if len(query.Positive) == 0 {
		return nil, fmt.Errorf("vector: recommend requires at least one positive point")
	}

	start := time.Now()
	points, err := c.breaker.Execute(func() ([]ScoredPoint, error) {
		return c.recommend(ctx, query)
	})
	metrics.VectorCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.VectorCallErrors.WithLabelValues("breaker_open").Inc()
		}
		return nil, err
	}

	return points, nil
}

// recommend performs the actual HTTP round trip.
func (c *Client) recommend(ctx context.Context, query RecommendQuery) ([]ScoredPoint, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("vector: marshal recommend query: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/recommend", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vector: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.VectorCallErrors.WithLabelValues("request").Inc()
		return nil, fmt.Errorf("vector: recommend call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		metrics.VectorCallErrors.WithLabelValues("status").Inc()
		return nil, c.statusError(resp)
	}

	var decoded recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.VectorCallErrors.WithLabelValues("request").Inc()
		return nil, fmt.Errorf("vector: decode recommend response: %w", err)
	}

	c.logger.Debug().
		Int("positive", len(query.Positive)).
		Int("negative", len(query.Negative)).
		Int("results", len(decoded.Result)).
		Msg("recommend call complete")

	return decoded.Result, nil
}

// statusError extracts the index's error message from a non-200 response.
func (c *Client) statusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var apiErr apiErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Status.Error != "" {
			return fmt.Errorf("vector: index returned %d: %s", resp.StatusCode, apiErr.Status.Error)
		}
	}
	return fmt.Errorf("vector: index returned status %d", resp.StatusCode)
}
