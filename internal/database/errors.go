// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import "errors"

// Sentinel errors distinguishing infrastructure faults from legitimately
// empty results. Query methods return nil slices (not errors) for empty
// result sets; these errors only surface for actual store faults.
var (
	// ErrNotFound indicates a single-row lookup matched nothing.
	ErrNotFound = errors.New("database: record not found")

	// ErrMissingParameter indicates a named placeholder in a query fragment
	// had no bound value at render time.
	ErrMissingParameter = errors.New("database: missing named parameter")

	// ErrEmptyList indicates a list parameter bound to an IN clause was
	// empty; IN () is invalid SQL and always a caller bug.
	ErrEmptyList = errors.New("database: empty list parameter")
)
