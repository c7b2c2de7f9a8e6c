// Package lumagram formats timestamps and counters for display.
package lumagram

import (
	"fmt"
	"strings"
	"time"
)

// backend timestamp layouts, most specific first
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseBackendTime parses a backend-supplied timestamp string. Returns the
// zero time when the string is empty or matches no known layout.
func ParseBackendTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatTimeAgo renders a coarse relative label for feed timestamps:
// JUST NOW, N MINUTE(S) AGO, N HOUR(S) AGO, N DAY(S) AGO, and an absolute
// date beyond seven days.
func FormatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 1:
		return "JUST NOW"
	case mins < 60:
		return fmt.Sprintf("%d %s AGO", mins, plural(mins, "MINUTE"))
	case hours < 24:
		return fmt.Sprintf("%d %s AGO", hours, plural(hours, "HOUR"))
	case days < 7:
		return fmt.Sprintf("%d %s AGO", days, plural(days, "DAY"))
	}
	return t.Format("1/2/2006")
}

// FormatTimeAgoShort renders the compact label used in conversation rows:
// just now, Nm, Nh, Nd, absolute date beyond seven days.
func FormatTimeAgoShort(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm", mins)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 7:
		return fmt.Sprintf("%dd", days)
	}
	return t.Format("1/2/2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "S"
}

// FormatCount renders a counter with thousands separators: 1234567 ->
// "1,234,567".
func FormatCount(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// Truncate shortens text to at most max runes, replacing the tail with an
// ellipsis. Used for last-message previews.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
