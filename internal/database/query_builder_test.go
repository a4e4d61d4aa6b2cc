// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

package database

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuilderRender_Scalars(t *testing.T) {
	b := NewBuilder("m.tmdb_id", "movies m")
	b.Where("m.release_year >= :min_year").Bind("min_year", 1990)
	b.Where("m.release_year <= :max_year").Bind("max_year", 2000)
	b.OrderBy("m.popularity DESC")

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "SELECT m.tmdb_id FROM movies m WHERE m.release_year >= ? AND m.release_year <= ? ORDER BY m.popularity DESC"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{1990, 2000}) {
		t.Errorf("args = %v, want [1990 2000]", args)
	}
}

func TestBuilderRender_ArgsFollowEncounterOrder(t *testing.T) {
	// Bind order is deliberately reversed relative to predicate order; the
	// argument slice must follow the placeholders as they appear in SQL.
	b := NewBuilder("1", "movies m")
	b.Where("m.a = :second").Where("m.b = :first")
	b.Bind("first", "f").Bind("second", "s")

	_, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !reflect.DeepEqual(args, []interface{}{"s", "f"}) {
		t.Errorf("args = %v, want [s f]", args)
	}
}

func TestBuilderRender_SliceExpansion(t *testing.T) {
	b := NewBuilder("m.tmdb_id", "movies m")
	b.Where("m.tmdb_id IN (:ids)").Bind("ids", []int64{603, 604, 605})

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "SELECT m.tmdb_id FROM movies m WHERE m.tmdb_id IN (?,?,?)"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(603), int64(604), int64(605)}) {
		t.Errorf("args = %v, want [603 604 605]", args)
	}
}

func TestBuilderRender_ReusedPlaceholder(t *testing.T) {
	b := NewBuilder("1", "movies m")
	b.Where("m.a >= :floor").Where("m.b >= :floor").Bind("floor", 50)

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "SELECT 1 FROM movies m WHERE m.a >= ? AND m.b >= ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{50, 50}) {
		t.Errorf("args = %v, want [50 50]", args)
	}
}

func TestBuilderRender_MissingParameter(t *testing.T) {
	b := NewBuilder("1", "movies m")
	b.Where("m.a = :missing")

	_, _, err := b.Render()
	if !errors.Is(err, ErrMissingParameter) {
		t.Errorf("Render() error = %v, want ErrMissingParameter", err)
	}
}

func TestBuilderRender_EmptyList(t *testing.T) {
	b := NewBuilder("1", "movies m")
	b.Where("m.tmdb_id IN (:ids)").Bind("ids", []int64{})

	_, _, err := b.Render()
	if !errors.Is(err, ErrEmptyList) {
		t.Errorf("Render() error = %v, want ErrEmptyList", err)
	}
}

func TestBuilderRender_CastSyntaxUntouched(t *testing.T) {
	b := NewBuilder("m.release_date::VARCHAR", "movies m")
	b.Where("m.release_year = :year").Bind("year", 1999)

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "SELECT m.release_date::VARCHAR FROM movies m WHERE m.release_year = ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 1 {
		t.Errorf("args = %v, want one element", args)
	}
}

func TestBuilderRender_LimitOffsetBound(t *testing.T) {
	b := NewBuilder("1", "movies m")
	b.Where("m.a = :a").Bind("a", 1)
	b.Limit(20).Offset(40)

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "SELECT 1 FROM movies m WHERE m.a = ? LIMIT ? OFFSET ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{1, 20, 40}) {
		t.Errorf("args = %v, want [1 20 40]", args)
	}
}

func TestBuilderRender_JoinFragments(t *testing.T) {
	b := NewBuilder("m.tmdb_id", "movies m")
	b.Join("INNER JOIN user_watch_history wh ON wh.tmdb_id = m.tmdb_id AND wh.user_id = :user_id")
	b.Bind("user_id", int64(7))

	query, args, err := b.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "SELECT m.tmdb_id FROM movies m INNER JOIN user_watch_history wh ON wh.tmdb_id = m.tmdb_id AND wh.user_id = ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(7)}) {
		t.Errorf("args = %v, want [7]", args)
	}
}

func TestExpandValue_StringSlice(t *testing.T) {
	placeholders, args, err := expandValue("tags", []string{"US_8", "US_9"})
	if err != nil {
		t.Fatalf("expandValue() error = %v", err)
	}
	if placeholders != "?,?" {
		t.Errorf("placeholders = %q, want \"?,?\"", placeholders)
	}
	if !reflect.DeepEqual(args, []interface{}{"US_8", "US_9"}) {
		t.Errorf("args = %v, want [US_8 US_9]", args)
	}
}
