package ledger

import (
	"errors"
	"reflect"
	"testing"

	"tracker/internal/core"
)

func seeded() *Store {
	s := New()
	s.Append(rec("2023-12-03", core.Entertainment, "Movie ticket", 1500))
	s.Append(rec("2024-12-12", core.Food, "Lunch at restaurant", 2050))
	s.Append(rec("2024-12-11", core.Transport, "Bus ticket", 3000))
	s.Append(rec("2024-01-01", core.Housing, "Rent", 90000))
	s.Append(rec("2025-01-01", core.Food, "Brunch", 1200))
	return s
}

func TestFilterByRangeInclusive(t *testing.T) {
	s := seeded()
	v, err := s.FilterByRange(core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var descs []string
	for _, r := range v {
		descs = append(descs, r.Description)
	}
	want := []string{"Bus ticket", "Rent"}
	if !reflect.DeepEqual(descs, want) {
		t.Fatalf("got %v, want %v", descs, want)
	}

	single, err := s.FilterByRange(core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 1))
	if err != nil || len(single) != 1 {
		t.Fatalf("expected single-day range to match 1 record, got %d (err=%v)", len(single), err)
	}
}

func TestFilterByRangeInvalid(t *testing.T) {
	s := seeded()
	before := s.Len()
	_, err := s.FilterByRange(core.NewDate(2024, 2, 1), core.NewDate(2024, 1, 1))
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	if s.Len() != before {
		t.Fatalf("query must not mutate the ledger")
	}
}

func TestFilterByYear(t *testing.T) {
	s := seeded()
	cases := map[int]int{2023: 1, 2024: 3, 2025: 1, 1999: 0}
	for year, want := range cases {
		if got := s.FilterByYear(year).Len(); got != want {
			t.Errorf("year %d: got %d records, want %d", year, got, want)
		}
	}
}

func TestViewSortBy(t *testing.T) {
	v := seeded().All()

	byDate := v.SortBy(SortByDate, false)
	if byDate[0].Description != "Movie ticket" || byDate[len(byDate)-1].Description != "Brunch" {
		t.Fatalf("unexpected date order: %+v", byDate)
	}
	byAmount := v.SortBy(SortByAmount, true)
	if byAmount[0].Description != "Rent" || byAmount[len(byAmount)-1].Description != "Brunch" {
		t.Fatalf("unexpected amount order: %+v", byAmount)
	}
	if v[0].Description != "Movie ticket" || v[1].Description != "Lunch at restaurant" {
		t.Fatalf("SortBy must not reorder the receiver")
	}
}

func TestParseSortField(t *testing.T) {
	if f, err := ParseSortField(""); err != nil || f != SortByDate {
		t.Fatalf("empty field should default to date, got %q err=%v", f, err)
	}
	if f, err := ParseSortField("Amount"); err != nil || f != SortByAmount {
		t.Fatalf("expected amount, got %q err=%v", f, err)
	}
	_, err := ParseSortField("price")
	if !errors.Is(err, core.ErrInvalidSortField) || core.KindOf(err) != core.KindInvalidSortField {
		t.Fatalf("expected invalid sort field, got %v", err)
	}
}

func TestViewYears(t *testing.T) {
	got := seeded().All().Years()
	want := []int{2023, 2024, 2025}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
