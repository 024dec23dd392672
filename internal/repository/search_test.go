package repository

import (
	"strings"
	"testing"
)

// TestSearchSourcesOrder проверяет порядок и состав источников поиска.
func TestSearchSourcesOrder(t *testing.T) {
	want := []string{"bills", "documents", "vehicles", "pets", "insurance", "medical", "contacts", "appointments"}
	if len(searchSources) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(searchSources))
	}

	for i, source := range searchSources {
		if source.kind != want[i] {
			t.Fatalf("source %d: expected %s, got %s", i, want[i], source.kind)
		}
		if len(source.columns) == 0 {
			t.Fatalf("source %s has no searchable columns", source.kind)
		}
	}
}

// TestSearchCountQuery проверяет построение запроса подсчета.
func TestSearchCountQuery(t *testing.T) {
	source := searchSource{table: "pets", columns: []string{"name", "breed"}}

	got := source.countQuery()
	want := "SELECT count(*) FROM pets WHERE user_id = $1 AND (COALESCE(name, '') ILIKE ANY($2) OR COALESCE(breed, '') ILIKE ANY($2))"
	if got != want {
		t.Fatalf("unexpected query:\n%s", got)
	}
	if strings.Contains(got, "$3") {
		t.Fatalf("query must use exactly two parameters")
	}
}

// TestLikePatternsEscape проверяет экранирование спецсимволов LIKE.
func TestLikePatternsEscape(t *testing.T) {
	got := likePatterns([]string{"vet", "50%", "a_b"})
	want := []string{"%vet%", `%50\%%`, `%a\_b%`}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pattern %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
