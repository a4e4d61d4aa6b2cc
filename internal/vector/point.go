// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package vector

import "github.com/alp82/goodwatch-monorepo-sub000/internal/models"

// Point IDs encode (mediaType, tmdbID) into a single uint64 so both movies
// and shows fit one collection. The low bit is the type tag, the remaining
// bits carry the TMDB ID. The encoding must stay invertible: downstream
// stages decode candidate IDs back into per-type relational predicates.

// typeBitShow tags show points; movies use 0.
const typeBitShow = 1

// EncodePointID maps a (mediaType, tmdbID) pair to its vector point ID.
func EncodePointID(mediaType models.MediaType, tmdbID int64) uint64 {
	id := uint64(tmdbID) << 1
	if mediaType == models.MediaTypeShow {
		id |= typeBitShow
	}
	return id
}

// DecodePointID recovers the (mediaType, tmdbID) pair from a point ID.
func DecodePointID(pointID uint64) (models.MediaType, int64) {
	mediaType := models.MediaTypeMovie
	if pointID&typeBitShow != 0 {
		mediaType = models.MediaTypeShow
	}
	return mediaType, int64(pointID >> 1)
}

// EncodePointIDs encodes a batch of same-type TMDB IDs.
func EncodePointIDs(mediaType models.MediaType, tmdbIDs []int64) []uint64 {
	ids := make([]uint64, len(tmdbIDs))
	for i, tmdbID := range tmdbIDs {
		ids[i] = EncodePointID(mediaType, tmdbID)
	}
	return ids
}
