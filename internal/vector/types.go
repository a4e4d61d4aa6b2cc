// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package vector

// Wire types for the vector index recommend contract. The index exposes a
// Qdrant-style REST API; only the subset the query engine needs is modeled.

// RecommendQuery is one recommend call: steer towards the positive points,
// away from the negative ones, restricted by an index-side pre-filter.
type RecommendQuery struct {
	// Positive are point IDs the results should be similar to. At least one
	// is required by the index.
	Positive []uint64 `json:"positive"`

	// Negative are point IDs to steer away from. May be empty.
	Negative []uint64 `json:"negative,omitempty"`

	// Filter is the index-side pre-filter. Only predicates that are
	// always-true-at-index-time may go here; anything depending on mutable
	// relational data is re-applied downstream.
	Filter *Filter `json:"filter,omitempty"`

	// Limit caps the number of returned candidates.
	Limit int `json:"limit"`

	// WithPayload requests the stored payload with each point.
	WithPayload bool `json:"with_payload"`

	// Params tunes the ANN search.
	Params *SearchParams `json:"params,omitempty"`
}

// SearchParams tunes the ANN search accuracy/speed tradeoff.
type SearchParams struct {
	// HnswEf is the size of the dynamic candidate list; higher is more
	// accurate and slower.
	HnswEf int `json:"hnsw_ef,omitempty"`

	// Exact forces exact (non-approximate) search.
	Exact bool `json:"exact,omitempty"`
}

// Filter combines must and must-not conditions.
type Filter struct {
	Must    []Condition `json:"must,omitempty"`
	MustNot []Condition `json:"must_not,omitempty"`
}

// Condition is one filter predicate. Exactly one of the option fields is set.
type Condition struct {
	// Key names the payload field the predicate applies to.
	Key string `json:"key,omitempty"`

	// Match tests payload equality.
	Match *Match `json:"match,omitempty"`

	// Range tests numeric bounds.
	Range *Range `json:"range,omitempty"`

	// IsEmpty matches points whose payload field is absent or empty.
	IsEmpty *IsEmpty `json:"is_empty,omitempty"`

	// HasID matches points by ID; used inside must_not as an exclude list.
	HasID []uint64 `json:"has_id,omitempty"`
}

// Match is an equality predicate.
type Match struct {
	Value interface{} `json:"value"`
}

// Range is a numeric bound predicate; nil bounds are open.
type Range struct {
	Gte *float64 `json:"gte,omitempty"`
	Lte *float64 `json:"lte,omitempty"`
}

// IsEmpty names a payload field that must be absent or empty.
type IsEmpty struct {
	Key string `json:"key"`
}

// Payload is the stored metadata returned with each point.
type Payload struct {
	MediaType string   `json:"media_type"`
	TmdbID    int64    `json:"tmdb_id"`
	Genres    []string `json:"genres,omitempty"`
}

// ScoredPoint is one recommend result.
type ScoredPoint struct {
	ID      uint64   `json:"id"`
	Score   float64  `json:"score"`
	Payload *Payload `json:"payload,omitempty"`
}

// recommendResponse is the REST envelope around recommend results.
type recommendResponse struct {
	Result []ScoredPoint `json:"result"`
	Status string        `json:"status"`
	Time   float64       `json:"time"`
}

// apiErrorResponse is the REST error envelope.
type apiErrorResponse struct {
	Status struct {
		Error string `json:"error"`
	} `json:"status"`
}

// helpers to build conditions without pointer noise at call sites

// MatchValue builds an equality condition.
func MatchValue(key string, value interface{}) Condition {
	return Condition{Key: key, Match: &Match{Value: value}}
}

// RangeGte builds a lower-bound condition.
func RangeGte(key string, gte float64) Condition {
	return Condition{Key: key, Range: &Range{Gte: &gte}}
}

// FieldEmpty builds an is-empty condition (combine with MustNot for
// "field present").
func FieldEmpty(key string) Condition {
	return Condition{IsEmpty: &IsEmpty{Key: key}}
}

// ExcludeIDs builds a has-id condition for must_not exclude lists.
func ExcludeIDs(ids []uint64) Condition {
	return Condition{HasID: ids}
}
