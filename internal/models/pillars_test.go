// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package models

import "testing"

func TestPillarTraits_CoverAllTraitKeys(t *testing.T) {
	seen := make(map[string]bool)
	for pillar, traits := range PillarTraits {
		if len(traits) != 4 {
			t.Errorf("pillar %q has %d traits, want 4", pillar, len(traits))
		}
		for _, trait := range traits {
			if seen[trait] {
				t.Errorf("trait %q appears in more than one pillar", trait)
			}
			seen[trait] = true
		}
	}

	if len(seen) != len(TraitKeys) {
		t.Errorf("pillars cover %d traits, want %d", len(seen), len(TraitKeys))
	}
	for _, key := range TraitKeys {
		if !seen[key] {
			t.Errorf("trait %q missing from pillar table", key)
		}
	}
}

func TestThresholdForTier(t *testing.T) {
	tests := []struct {
		tier int
		want float64
	}{
		{-1, 4},
		{0, 4},
		{1, 4},
		{2, 6},
		{3, 8},
		{4, 8},
		{99, 8},
	}

	for _, tt := range tests {
		if got := ThresholdForTier(tt.tier); got != tt.want {
			t.Errorf("ThresholdForTier(%d) = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestKnownPillar(t *testing.T) {
	for _, pillar := range []string{"energy", "heart", "mind", "craft"} {
		if !KnownPillar(pillar) {
			t.Errorf("KnownPillar(%q) = false, want true", pillar)
		}
	}
	if KnownPillar("vibes") {
		t.Error(`KnownPillar("vibes") = true, want false`)
	}
}

func TestMediaType(t *testing.T) {
	if !MediaTypeMovie.Valid() || !MediaTypeShow.Valid() {
		t.Error("movie and show must be valid media types")
	}
	if MediaType("documentary").Valid() {
		t.Error(`MediaType("documentary").Valid() = true, want false`)
	}
	if MediaTypeMovie.Table() != "movies" {
		t.Errorf("movie table = %q, want movies", MediaTypeMovie.Table())
	}
	if MediaTypeShow.Table() != "shows" {
		t.Errorf("show table = %q, want shows", MediaTypeShow.Table())
	}
}

func TestSortByColumn(t *testing.T) {
	tests := []struct {
		sortBy SortBy
		want   string
	}{
		{SortByPopularity, "popularity"},
		{SortByAggregatedScore, "aggregated_score_percent"},
		{SortByReleaseDate, "release_date"},
	}

	for _, tt := range tests {
		if got := tt.sortBy.Column(); got != tt.want {
			t.Errorf("Column(%q) = %q, want %q", tt.sortBy, got, tt.want)
		}
	}
}

func TestTraitColumn(t *testing.T) {
	if got := TraitColumn("adrenaline"); got != "trait_adrenaline" {
		t.Errorf("TraitColumn(adrenaline) = %q, want trait_adrenaline", got)
	}
}
