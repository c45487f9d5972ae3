// Package format turns raw field input into the strings shown on the
// certificate preview. Every function is pure; unparsable input falls back
// to a placeholder instead of returning an error.
package format

import (
	"strings"
	"time"

	"github.com/goliatone/go-certgen/pkg/schema"
)

const (
	// TextPlaceholder marks an unfilled text slot.
	TextPlaceholder = "_________________"
	// ShortPlaceholder marks an unknown date or time.
	ShortPlaceholder = "_________"
)

const (
	dateDisplayLayout = "January 2, 2006"
	timeDisplayLayout = "3:04 PM"
)

var timeInputLayouts = []string{"15:04", "15:04:05"}

// Format renders raw according to kind.
func Format(kind schema.FieldKind, raw string) string {
	switch kind {
	case schema.KindDate:
		return Date(raw)
	case schema.KindTime:
		return Time(raw)
	default:
		return Text(raw)
	}
}

// Text returns the trimmed value or the text placeholder when blank.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TextPlaceholder
	}
	return trimmed
}

// Date renders a YYYY-MM-DD value as "January 5, 2024".
func Date(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ShortPlaceholder
	}
	return t.Format(dateDisplayLayout)
}

// Time renders a 24-hour HH:MM value as "2:30 PM".
func Time(raw string) string {
	t, ok := ParseTime(raw)
	if !ok {
		return ShortPlaceholder
	}
	return t.Format(timeDisplayLayout)
}

// ParseTime parses a 24-hour time with optional seconds.
func ParseTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range timeInputLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a calendar date in schema.DateLayout. The result carries
// no zone shift: components are taken exactly as written.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(schema.DateLayout, trimmed)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Today renders the calendar date of now in the display layout.
func Today(now time.Time) string {
	return now.Format(dateDisplayLayout)
}

// InputDate renders now in the raw input layout (YYYY-MM-DD).
func InputDate(now time.Time) string {
	return now.Format(schema.DateLayout)
}
