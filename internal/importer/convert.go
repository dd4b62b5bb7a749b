package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Date layouts accepted by the feeds. The Orange Book extracts publish
// dates as "Aug 24, 2026"; ISO is tolerated for hand-built files.
var feedDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
}

// ToPgDate parses a feed date into a calendar date with no time component.
// Blank or unparsable input yields an invalid (NULL) date; callers decide
// whether that is an error for the field in question.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range feedDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// ToPgText trims the input and stores NULL for blank values. A whitespace-only
// cell never persists as an empty string.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseYFlag reports whether a feed flag cell is set. The feeds mark flags
// with a single "Y"; every other value, including "Yes", "N", and blank,
// means unset. No partial matching.
func ParseYFlag(s string) bool {
	s = strings.TrimSpace(s)
	return s == "Y" || s == "y"
}

// requireText trims a key field and rejects blank values.
func requireText(name, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty required field %q", name)
	}
	return s, nil
}

// requireDate parses a mandatory date field.
func requireDate(name, s string) (pgtype.Date, error) {
	d := ToPgDate(s)
	if !d.Valid {
		return pgtype.Date{}, fmt.Errorf("invalid date for %q: %q", name, strings.TrimSpace(s))
	}
	return d, nil
}
