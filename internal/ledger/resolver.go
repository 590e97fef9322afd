package ledger

import (
	"strconv"
	"strings"

	"tracker/internal/core"
)

// Resolver turns a user-typed calendar date into exactly one deletion.
//
// The flow is: Resolve the date, then either Confirm a single match or
// Select one of several candidates by its 1-based position. Nothing is
// mutated until Confirm or Select succeeds; dropping a Resolution is a
// decline.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver deleting from store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolution is the outcome of matching a date against the ledger.
type Resolution struct {
	store      *Store
	date       core.Date
	candidates []core.Record
}

// Resolve finds every live record on the given date, in ledger order.
func (r *Resolver) Resolve(input string) (*Resolution, error) {
	date, err := core.ParseDate(input)
	if err != nil {
		return nil, &core.Error{
			Kind: core.KindInvalidDateFormat,
			Msg:  "invalid date format, use YYYY-MM-DD",
			Err:  err,
		}
	}
	matches := r.store.filter(func(rec core.Record) bool {
		return rec.Date.SameDay(date)
	})
	if len(matches) == 0 {
		return nil, core.Errorf(core.KindNoMatch, "no entries found on %s", date)
	}
	return &Resolution{store: r.store, date: date, candidates: matches}, nil
}

// Date is the resolved calendar date.
func (res *Resolution) Date() core.Date {
	return res.date
}

// Candidates lists the matches; position i is selection number i+1.
func (res *Resolution) Candidates() []core.Record {
	return append([]core.Record(nil), res.candidates...)
}

// NeedsSelection reports whether the caller must pick among several matches.
func (res *Resolution) NeedsSelection() bool {
	return len(res.candidates) > 1
}

// Confirm deletes the single match.
func (res *Resolution) Confirm() (core.Record, error) {
	if res.NeedsSelection() {
		return core.Record{}, core.Errorf(core.KindInvalidSelection,
			"%d entries found on %s, select one of 1 to %d", len(res.candidates), res.date, len(res.candidates))
	}
	return res.store.DeleteByID(res.candidates[0].ID)
}

// Select deletes the n-th candidate (1-based) and leaves the others alone.
func (res *Resolution) Select(n int) (core.Record, error) {
	if !res.NeedsSelection() {
		return core.Record{}, core.Errorf(core.KindInvalidSelection, "single entry on %s, confirm it instead", res.date)
	}
	if n < 1 || n > len(res.candidates) {
		return core.Record{}, core.Errorf(core.KindInvalidSelection,
			"please enter a number between 1 and %d", len(res.candidates))
	}
	return res.store.DeleteByID(res.candidates[n-1].ID)
}

// SelectInput parses a typed selection and deletes that candidate.
func (res *Resolution) SelectInput(input string) (core.Record, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return core.Record{}, &core.Error{
			Kind: core.KindInvalidSelection,
			Msg:  "please enter a valid number, got " + strconv.Quote(input),
			Err:  err,
		}
	}
	return res.Select(n)
}
