// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package vector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
)

func testClient(t *testing.T, serverURL string, maxFailures int) *Client {
	t.Helper()
	return NewClient(&config.VectorConfig{
		URL:                 serverURL,
		Collection:          "media",
		Timeout:             2 * time.Second,
		CandidateMultiplier: 5,
		BreakerMaxFailures:  maxFailures,
		BreakerCooldown:     time.Minute,
	}, zerolog.Nop())
}

func TestClientRecommend_Success(t *testing.T) {
	var gotPath string
	var gotQuery RecommendQuery

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotQuery); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(recommendResponse{
			Result: []ScoredPoint{
				{ID: 1206, Score: 0.91},
				{ID: 2793, Score: 0.87},
			},
			Status: "ok",
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)

	points, err := client.Recommend(context.Background(), RecommendQuery{
		Positive: []uint64{1206},
		Limit:    40,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if gotPath != "/collections/media/points/recommend" {
		t.Errorf("path = %q, want /collections/media/points/recommend", gotPath)
	}
	if len(gotQuery.Positive) != 1 || gotQuery.Positive[0] != 1206 {
		t.Errorf("request positive = %v, want [1206]", gotQuery.Positive)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].ID != 1206 || points[0].Score != 0.91 {
		t.Errorf("points[0] = %+v", points[0])
	}
}

func TestClientRecommend_RequiresPositive(t *testing.T) {
	client := testClient(t, "http://localhost:0", 3)

	if _, err := client.Recommend(context.Background(), RecommendQuery{Limit: 40}); err == nil {
		t.Error("Recommend() with no positives should error")
	}
}

func TestClientRecommend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":{"error":"collection not found"}}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 10)

	_, err := client.Recommend(context.Background(), RecommendQuery{Positive: []uint64{1}, Limit: 1})
	if err == nil {
		t.Fatal("Recommend() expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "collection not found") {
		t.Errorf("error = %v, want index message included", err)
	}
}

func TestClientRecommend_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	const maxFailures = 2
	client := testClient(t, server.URL, maxFailures)

	query := RecommendQuery{Positive: []uint64{1}, Limit: 1}
	for i := 0; i < maxFailures; i++ {
		if _, err := client.Recommend(context.Background(), query); err == nil {
			t.Fatalf("call %d should fail", i)
		}
	}

	// Breaker is open now; further calls fail without reaching the server.
	if _, err := client.Recommend(context.Background(), query); err == nil {
		t.Fatal("call with open breaker should fail")
	}
	if calls != maxFailures {
		t.Errorf("server saw %d calls, want %d (breaker should short-circuit)", calls, maxFailures)
	}
}

func TestConditionHelpers(t *testing.T) {
	match := MatchValue("media_type", "movie")
	if match.Key != "media_type" || match.Match == nil || match.Match.Value != "movie" {
		t.Errorf("MatchValue = %+v", match)
	}

	rng := RangeGte("aggregated_votes", 300)
	if rng.Range == nil || rng.Range.Gte == nil || *rng.Range.Gte != 300 {
		t.Errorf("RangeGte = %+v", rng)
	}

	empty := FieldEmpty("poster_path")
	if empty.IsEmpty == nil || empty.IsEmpty.Key != "poster_path" {
		t.Errorf("FieldEmpty = %+v", empty)
	}

	exclude := ExcludeIDs([]uint64{1, 2})
	if len(exclude.HasID) != 2 {
		t.Errorf("ExcludeIDs = %+v", exclude)
	}
}

func TestFilterSerialization_OmitsEmptySections(t *testing.T) {
	raw, err := json.Marshal(RecommendQuery{Positive: []uint64{1}, Limit: 10})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "filter") {
		t.Errorf("empty filter should be omitted: %s", raw)
	}
	if strings.Contains(string(raw), "negative") {
		t.Errorf("empty negative list should be omitted: %s", raw)
	}
}
