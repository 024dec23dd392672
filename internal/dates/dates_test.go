package dates

import (
	"testing"
	"time"
)

// TestDayDropsClock проверяет отбрасывание времени и зоны.
func TestDayDropsClock(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	value := time.Date(2026, 3, 14, 23, 30, 0, 0, loc)

	got := Day(value)
	if got.Format(Layout) != "2026-03-14" || got.Location() != time.UTC {
		t.Fatalf("unexpected day: %v", got)
	}
}

// TestTodayUsesLocation проверяет, что "сегодня" считается в зоне приложения.
func TestTodayUsesLocation(t *testing.T) {
	now := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC-7", -7*3600)

	if got := Format(Today(now, loc)); got != "2026-03-14" {
		t.Fatalf("expected 2026-03-14, got %s", got)
	}
	if got := Format(Today(now, nil)); got != "2026-03-15" {
		t.Fatalf("expected 2026-03-15, got %s", got)
	}
}

// TestBetweenInclusive проверяет включительные границы отрезка.
func TestBetweenInclusive(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := AddDays(from, 7)

	if !Between(from, from, to) || !Between(to, from, to) {
		t.Fatal("expected bounds to be included")
	}
	if Between(AddDays(from, 8), from, to) || Between(AddDays(from, -1), from, to) {
		t.Fatal("expected days outside the range to be excluded")
	}
}
