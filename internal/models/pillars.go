// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package models

// PillarTraits maps each user-facing fingerprint pillar to the trait keys
// that contribute to it. A title passes a pillar filter when at least
// PillarMinTraits of the group's traits clear the tier threshold.
//
// Kept as a plain declarative table so it can be reviewed and versioned
// alongside the trait schema.
var PillarTraits = map[string][]string{
	"energy": {"adrenaline", "tension", "suspense", "scare"},
	"heart":  {"humor", "romance", "warmth", "melancholy"},
	"mind":   {"intellect", "curiosity", "complexity", "realism"},
	"craft":  {"artistry", "spectacle", "performance", "atmosphere"},
}

// PillarMinTraits is how many traits of a pillar's group must clear the tier
// threshold for the pillar filter to pass.
const PillarMinTraits = 2

// TierThreshold maps a selectivity tier (1-3) to the minimum trait score on
// the 0-10 trait scale. Monotonic step function.
var TierThreshold = map[int]float64{
	1: 4,
	2: 6,
	3: 8,
}

// ThresholdForTier returns the trait-score threshold for a tier, clamping
// unknown tiers to the nearest defined one.
func ThresholdForTier(tier int) float64 {
	if tier < 1 {
		tier = 1
	}
	if tier > 3 {
		tier = 3
	}
	return TierThreshold[tier]
}

// KnownPillar reports whether name is a defined pillar.
func KnownPillar(name string) bool {
	_, ok := PillarTraits[name]
	return ok
}
