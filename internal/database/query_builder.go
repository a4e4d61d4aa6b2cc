// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import (
	"fmt"
	"strings"
)

// Builder accumulates SQL fragments containing named placeholders (":name")
// together with their bound values, and renders positional SQL ("?") exactly
// once at the boundary. Values never enter SQL text; construction order of
// predicates does not matter because arguments are collected in render order.
//
// List-valued parameters ([]int64, []string, ...) expand to one placeholder
// per element, so "tmdb_id IN (:ids)" renders as "tmdb_id IN (?,?,?)".
//
// Builder is not safe for concurrent use; build one per query.
type Builder struct {
	selectList string
	from       string
	joins      []string
	conds      []string
	orderBy    []string
	params     map[string]interface{}

	limit     int
	offset    int
	hasLimit  bool
	hasOffset bool
}

// NewBuilder creates a query builder for the given select list and FROM
// clause (table name plus optional alias).
func NewBuilder(selectList, from string) *Builder {
	return &Builder{
		selectList: selectList,
		from:       from,
		params:     make(map[string]interface{}),
	}
}

// Join appends a join fragment, e.g. "INNER JOIN user_watch_history wh ON ...".
// Join fragments may reference named placeholders.
func (b *Builder) Join(fragment string) *Builder {
	b.joins = append(b.joins, fragment)
	return b
}

// Where appends a predicate fragment. All predicates are ANDed.
func (b *Builder) Where(fragment string) *Builder {
	b.conds = append(b.conds, fragment)
	return b
}

// Bind associates a value with a named placeholder. Binding the same name
// twice overwrites the earlier value.
func (b *Builder) Bind(name string, value interface{}) *Builder {
	b.params[name] = value
	return b
}

// OrderBy appends an ordering expression, e.g. "popularity DESC".
func (b *Builder) OrderBy(expr string) *Builder {
	b.orderBy = append(b.orderBy, expr)
	return b
}

// Limit sets the LIMIT clause. The value is bound, not interpolated.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	b.hasLimit = true
	return b
}

// Offset sets the OFFSET clause. The value is bound, not interpolated.
func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	b.hasOffset = true
	return b
}

// Render assembles the final SQL statement and translates every named
// placeholder into a positional one, collecting arguments in encounter
// order. Callers must use the returned argument slice as-is and never
// re-derive argument order manually.
func (b *Builder) Render() (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(b.selectList)
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)

	for _, join := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}

	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	query, args, err := b.translate(sb.String())
	if err != nil {
		return "", nil, err
	}

	if b.hasLimit {
		query += " LIMIT ?"
		args = append(args, b.limit)
	}
	if b.hasOffset {
		query += " OFFSET ?"
		args = append(args, b.offset)
	}

	return query, args, nil
}

// translate rewrites named placeholders to positional ones in a single
// left-to-right pass. A placeholder is ':' followed by an identifier; "::"
// (SQL cast syntax) is left untouched.
func (b *Builder) translate(query string) (string, []interface{}, error) {
	var (
		out  strings.Builder
		args []interface{}
	)

	for i := 0; i < len(query); {
		c := query[i]

		if c != ':' {
			out.WriteByte(c)
			i++
			continue
		}

		// Skip casts and lone colons.
		if i+1 >= len(query) || !isIdentStart(query[i+1]) {
			out.WriteByte(c)
			i++
			continue
		}
		if i > 0 && query[i-1] == ':' {
			out.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		for j < len(query) && isIdentPart(query[j]) {
			j++
		}
		name := query[i+1 : j]

		value, ok := b.params[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrMissingParameter, name)
		}

		expanded, expandedArgs, err := expandValue(name, value)
		if err != nil {
			return "", nil, err
		}
		out.WriteString(expanded)
		args = append(args, expandedArgs...)

		i = j
	}

	return out.String(), args, nil
}

// expandValue returns the placeholder text and arguments for one bound value.
// Slices expand to one placeholder per element.
func expandValue(name string, value interface{}) (string, []interface{}, error) {
	switch v := value.(type) {
	case []int64:
		return expandSlice(name, len(v), func(i int) interface{} { return v[i] })
	case []int:
		return expandSlice(name, len(v), func(i int) interface{} { return v[i] })
	case []string:
		return expandSlice(name, len(v), func(i int) interface{} { return v[i] })
	case []float64:
		return expandSlice(name, len(v), func(i int) interface{} { return v[i] })
	case []interface{}:
		return expandSlice(name, len(v), func(i int) interface{} { return v[i] })
	default:
		return "?", []interface{}{value}, nil
	}
}

func expandSlice(name string, n int, at func(int) interface{}) (string, []interface{}, error) {
	if n == 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrEmptyList, name)
	}

	args := make([]interface{}, n)
	for i := 0; i < n; i++ {
		args[i] = at(i)
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ","), args, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
