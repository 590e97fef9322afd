package ledger

import (
	"sort"
	"strings"

	"tracker/internal/core"
)

// View is a read-only window over the ledger. Every query allocates a new
// one, so holding a View never observes later mutations.
type View []core.Record

// SortField names a column a view can be ordered by.
type SortField string

const (
	SortByDate        SortField = "date"
	SortByCategory    SortField = "category"
	SortByDescription SortField = "description"
	SortByAmount      SortField = "amount"
)

// ParseSortField accepts a column name as used in the tabular format.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByDate, SortByCategory, SortByDescription, SortByAmount:
		return f, nil
	case "":
		return SortByDate, nil
	default:
		return "", core.Errorf(core.KindInvalidSortField,
			"unknown sort field %q, use date, category, description or amount", s)
	}
}

// FilterByRange returns records dated within [start, end], both inclusive.
func (s *Store) FilterByRange(start, end core.Date) (View, error) {
	start, end = core.DateOf(start.Time), core.DateOf(end.Time)
	if start.After(end.Time) {
		return nil, core.Errorf(core.KindInvalidRange, "start %s is after end %s", start, end)
	}
	return s.filter(func(rec core.Record) bool {
		return !rec.Date.Before(start.Time) && !rec.Date.After(end.Time)
	}), nil
}

// FilterByYear returns records dated between Jan 1 and Dec 31 of year.
func (s *Store) FilterByYear(year int) View {
	return s.filter(func(rec core.Record) bool {
		return rec.Date.Year() == year
	})
}

// Len returns the number of records in the view.
func (v View) Len() int {
	return len(v)
}

// SortBy returns a copy of v stably ordered by field.
func (v View) SortBy(field SortField, descending bool) View {
	out := append(View(nil), v...)
	less := func(a, b core.Record) bool {
		switch field {
		case SortByCategory:
			return a.Category < b.Category
		case SortByDescription:
			return strings.ToLower(a.Description) < strings.ToLower(b.Description)
		case SortByAmount:
			return a.Amount.Cents < b.Amount.Cents
		default:
			return a.Date.Before(b.Date.Time)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Years returns the distinct years present in v, ascending.
func (v View) Years() []int {
	seen := map[int]struct{}{}
	var years []int
	for _, rec := range v {
		y := rec.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
