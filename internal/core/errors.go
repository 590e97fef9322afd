package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies engine failures so callers can react without string matching.
type Kind string

const (
	KindInvalidDate        Kind = "invalid_date"
	KindInvalidCategory    Kind = "invalid_category"
	KindInvalidAmount      Kind = "invalid_amount"
	KindInvalidDateFormat  Kind = "invalid_date_format"
	KindNoMatch            Kind = "no_match"
	KindInvalidSelection   Kind = "invalid_selection"
	KindInvalidRange       Kind = "invalid_range"
	KindEmptyView          Kind = "empty_view"
	KindNotFound           Kind = "not_found"
	KindImportParseFailure Kind = "import_parse_failure"
	KindInvalidSortField   Kind = "invalid_sort_field"
)

// Error is the structured error returned by every engine operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidDate        = &Error{Kind: KindInvalidDate}
	ErrInvalidCategory    = &Error{Kind: KindInvalidCategory}
	ErrInvalidAmount      = &Error{Kind: KindInvalidAmount}
	ErrInvalidDateFormat  = &Error{Kind: KindInvalidDateFormat}
	ErrNoMatch            = &Error{Kind: KindNoMatch}
	ErrInvalidSelection   = &Error{Kind: KindInvalidSelection}
	ErrInvalidRange       = &Error{Kind: KindInvalidRange}
	ErrEmptyView          = &Error{Kind: KindEmptyView}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrImportParseFailure = &Error{Kind: KindImportParseFailure}
	ErrInvalidSortField   = &Error{Kind: KindInvalidSortField}
)

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	label := strings.ReplaceAll(string(e.Kind), "_", " ")
	switch {
	case e.Msg == "" && e.Err == nil:
		return label
	case e.Msg == "":
		return label + ": " + e.Err.Error()
	default:
		return label + ": " + e.Msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func quote(s string) string {
	return strconv.Quote(s)
}
