package backend

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the storage family a target string resolves to.
type Kind string

const (
	CSV    Kind = "csv"
	SQLite Kind = "sqlite"
	Sheets Kind = "sheets"
)

func (k Kind) String() string {
	return string(k)
}

// ErrUnsupportedTarget is returned for targets no codec can handle.
var ErrUnsupportedTarget = errors.New("unsupported target")

// Target is a parsed import/export destination.
type Target struct {
	Kind Kind
	// Path is set for file targets.
	Path string
	// Sheet is set for "sheets:<name>"; empty means the configured default.
	Sheet string
}

func (t Target) String() string {
	switch t.Kind {
	case Sheets:
		if t.Sheet == "" {
			return "sheets"
		}
		return "sheets:" + t.Sheet
	default:
		return t.Path
	}
}

// IsCancel reports whether s is the empty target a user gives when
// dismissing a file prompt.
func IsCancel(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseTarget maps a target string to its codec family:
// *.csv, *.db / *.sqlite / *.sqlite3, or sheets[:SheetName].
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("%w: empty target", ErrUnsupportedTarget)
	}

	if s == "sheets" {
		return Target{Kind: Sheets}, nil
	}
	if name, ok := strings.CutPrefix(s, "sheets:"); ok {
		return Target{Kind: Sheets, Sheet: strings.TrimSpace(name)}, nil
	}

	switch strings.ToLower(filepath.Ext(s)) {
	case ".csv":
		return Target{Kind: CSV, Path: s}, nil
	case ".db", ".sqlite", ".sqlite3":
		return Target{Kind: SQLite, Path: s}, nil
	}
	return Target{}, fmt.Errorf("%w %q: use *.csv, *.db, *.sqlite, *.sqlite3 or sheets[:SheetName]", ErrUnsupportedTarget, s)
}
