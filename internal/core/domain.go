package core

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for input and files.
const DateLayout = "2006-01-02"

type (
	// ID identifies a record inside a single ledger instance.
	ID int64

	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is a single expense transaction.
	Record struct {
		ID          ID
		Date        Date
		Category    Category
		Description string
		Amount      Money
	}

	// RawFields holds unvalidated user or file input for one record.
	RawFields struct {
		Date        string
		Category    string
		Description string
		Amount      string
	}
)

const (
	Transport     Category = "Transport"
	Housing       Category = "Housing"
	Health        Category = "Health"
	Food          Category = "Food"
	Entertainment Category = "Entertainment"
	Miscellaneous Category = "Miscellaneous"
	Education     Category = "Education"
	Utilities     Category = "Utilities"
	Shopping      Category = "Shopping"
)

// Categories is the closed category set in declared order. The order is
// significant: aggregation breaks ties by it.
var Categories = []Category{
	Transport,
	Housing,
	Health,
	Food,
	Entertainment,
	Miscellaneous,
	Education,
	Utilities,
	Shopping,
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return -1
}

func (c Category) Valid() bool {
	return c.Index() >= 0
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s against the closed set. Matching is exact after
// trimming surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Errorf(KindInvalidCategory, "category is required")
	}
	c := Category(s)
	if !c.Valid() {
		return "", Errorf(KindInvalidCategory, "unknown category %q", s)
	}
	return c, nil
}

// CategoryNames returns the closed set as plain strings, e.g. for help text.
func CategoryNames() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &Error{Kind: KindInvalidDate, Msg: "date must be YYYY-MM-DD, got " + quote(s), Err: err}
	}
	return DateOf(t), nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Validate checks the fields a stored record must always satisfy.
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return Errorf(KindInvalidDate, "date cannot be zero")
	}
	if !r.Category.Valid() {
		return Errorf(KindInvalidCategory, "unknown category %q", string(r.Category))
	}
	return nil
}

// Raw renders the record back into its file representation.
func (r Record) Raw() RawFields {
	return RawFields{
		Date:        r.Date.String(),
		Category:    string(r.Category),
		Description: r.Description,
		Amount:      r.Amount.String(),
	}
}

// Coerce validates raw input and builds a Record without an ID. Any field
// failure rejects the whole record.
func Coerce(raw RawFields) (Record, error) {
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Record{}, err
	}
	cat, err := ParseCategory(raw.Category)
	if err != nil {
		return Record{}, err
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Date:        date,
		Category:    cat,
		Description: strings.TrimSpace(raw.Description),
		Amount:      amount,
	}, nil
}
