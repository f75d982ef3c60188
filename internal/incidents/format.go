package incidents

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// AbsoluteLayout is the display layout for absolute timestamps.
// Timestamps are always rendered in UTC.
const AbsoluteLayout = "Jan 2, 2006, 15:04"

// DefaultExcerptLength is the body length shown on incident cards.
const DefaultExcerptLength = 120

const ellipsis = "..."

// FormatAbsolute renders t as e.g. "Jan 15, 2026, 00:00" in UTC.
func FormatAbsolute(t time.Time) string {
	return t.UTC().Format(AbsoluteLayout)
}

// FormatRelative describes how long before now the timestamp t is.
// Timestamps after now are reported as "Today".
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return "Today"
	}

	days := int(diff / (24 * time.Hour))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d months ago", days/30)
	}
}

// Truncate shortens text to maxLength characters (runes), trims trailing
// whitespace and appends an ellipsis. Text that already fits is returned as is.
func Truncate(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}

	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	return strings.TrimRightFunc(string(runes[:maxLength]), unicode.IsSpace) + ellipsis
}

// DisplayID formats an incident id as "INC-0042".
func DisplayID(id int) string {
	return fmt.Sprintf("INC-%04d", id)
}

// AuthorLabel formats the reporting user.
func AuthorLabel(authorID int) string {
	return fmt.Sprintf("User %d", authorID)
}
