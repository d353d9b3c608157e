package repository

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rpattn/dataview/internal/predicate"
)

func TestBuildFilteredQueryAppendsPredicate(t *testing.T) {
	p := EntityParameter()
	expr := predicate.Comparison{Op: predicate.OpEqual, Left: p.Property("LastName"), Right: "Smith"}

	q := buildFilteredQuery(predicate.NewSQLEncoder(nil), "Person", expr, 10, 20)

	wantFrom := `FROM entities e WHERE lower(e.entity_type) = lower($1) AND (lower(COALESCE("e"."properties" ->> $2::text, '')) = $3)`
	if want := "SELECT " + entityColumns + " " + wantFrom + " ORDER BY e.created_at, e.id LIMIT $4 OFFSET $5"; q.sql != want {
		t.Fatalf("unexpected query\n got: %s\nwant: %s", q.sql, want)
	}
	if diff := cmp.Diff([]any{"Person", "LastName", "smith", 10, 20}, q.args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
	if want := "SELECT COUNT(*) " + wantFrom; q.countSQL != want {
		t.Fatalf("unexpected count query\n got: %s\nwant: %s", q.countSQL, want)
	}
	if diff := cmp.Diff([]any{"Person", "LastName", "smith"}, q.countArgs); diff != "" {
		t.Fatalf("unexpected count args (-want +got):\n%s", diff)
	}
}

func TestBuildFilteredQueryWithoutPredicate(t *testing.T) {
	for _, expr := range []predicate.Expression{nil, predicate.True()} {
		q := buildFilteredQuery(predicate.NewSQLEncoder(nil), "Group", expr, 0, -5)

		want := "SELECT " + entityColumns + " FROM entities e WHERE lower(e.entity_type) = lower($1) ORDER BY e.created_at, e.id LIMIT $2 OFFSET $3"
		if q.sql != want {
			t.Fatalf("unexpected query\n got: %s\nwant: %s", q.sql, want)
		}
		if diff := cmp.Diff([]any{"Group", DefaultPageSize, 0}, q.args); diff != "" {
			t.Fatalf("unexpected args (-want +got):\n%s", diff)
		}
	}
}

func TestBuildFilteredQueryKeepsFalse(t *testing.T) {
	q := buildFilteredQuery(predicate.NewSQLEncoder(nil), "Group", predicate.False(), 5, 0)
	want := "SELECT COUNT(*) FROM entities e WHERE lower(e.entity_type) = lower($1) AND (FALSE)"
	if q.countSQL != want {
		t.Fatalf("unexpected count query\n got: %s\nwant: %s", q.countSQL, want)
	}
}
