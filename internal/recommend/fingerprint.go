// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/cache"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/models"
)

// fingerprintTTL bounds how stale a cached fingerprint may get after new
// ratings arrive.
const fingerprintTTL = 5 * time.Minute

// Aggregator computes a user's taste fingerprint: each trait summed across
// every title they liked, normalized so the strongest trait reads 100.
// Results are cached per user; the aggregation scans both media tables.
type Aggregator struct {
	store  Store
	cfg    config.ScoringConfig
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewAggregator creates a fingerprint aggregator.
func NewAggregator(store Store, cfg config.ScoringConfig, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		cfg:    cfg,
		cache:  cache.New(fingerprintTTL),
		logger: logger.With().Str("component", "fingerprint").Logger(),
	}
}

// TraitAffinity is one trait with its normalized affinity.
type TraitAffinity struct {
	Trait    string `json:"trait"`
	Affinity int    `json:"affinity"`
}

// Fingerprint is a user's aggregated taste profile.
type Fingerprint struct {
	// Traits lists every trait, strongest first.
	Traits []TraitAffinity `json:"traits"`
	// TopTraits is the compact head of Traits for display surfaces.
	TopTraits []TraitAffinity `json:"top_traits"`
}

// Fingerprint aggregates trait sums across movies and shows the user scored
// at or above the like threshold. A user with nothing liked gets empty
// lists.
func (a *Aggregator) Fingerprint(ctx context.Context, userID int64) (*Fingerprint, error) {
	key := strconv.FormatInt(userID, 10)
	if cached, ok := a.cache.Get(key); ok {
		return cached.(*Fingerprint), nil
	}

	sums := make(map[string]float64, len(models.TraitKeys))

	for _, mediaType := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeShow} {
		typeSums, err := a.store.SumLikedTraits(ctx, userID, mediaType, a.cfg.LikeThreshold)
		if err != nil {
			return nil, fmt.Errorf("fingerprint: sum %s traits: %w", mediaType, err)
		}
		for trait, sum := range typeSums {
			sums[trait] += sum
		}
	}

	max := 0.0
	for _, sum := range sums {
		if sum > max {
			max = sum
		}
	}
	if max == 0 {
		empty := &Fingerprint{Traits: []TraitAffinity{}, TopTraits: []TraitAffinity{}}
		a.cache.Set(key, empty)
		return empty, nil
	}

	traits := make([]TraitAffinity, 0, len(models.TraitKeys))
	for _, trait := range models.TraitKeys {
		traits = append(traits, TraitAffinity{
			Trait:    trait,
			Affinity: int(math.Round(100 * sums[trait] / max)),
		})
	}

	sort.SliceStable(traits, func(i, j int) bool {
		if traits[i].Affinity != traits[j].Affinity {
			return traits[i].Affinity > traits[j].Affinity
		}
		return traits[i].Trait < traits[j].Trait
	})

	top := a.cfg.TopTraits
	if top > len(traits) {
		top = len(traits)
	}

	fp := &Fingerprint{
		Traits:    traits,
		TopTraits: traits[:top],
	}
	a.cache.Set(key, fp)
	return fp, nil
}
