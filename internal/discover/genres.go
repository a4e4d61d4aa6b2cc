// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package discover

// StaticGenreResolver resolves TMDB genre IDs against the fixed TMDB genre
// table. The table changes rarely enough that a static map beats a lookup
// service round trip; the resolver interface still allows swapping in a live
// lookup.
type StaticGenreResolver struct{}

// tmdbGenres is the union of TMDB's movie and TV genre tables.
var tmdbGenres = map[int64]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
	10759: "Action & Adventure",
	10762: "Kids",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
}

// GenreName implements GenreResolver.
func (StaticGenreResolver) GenreName(id int64) (string, bool) {
	name, ok := tmdbGenres[id]
	return name, ok
}
