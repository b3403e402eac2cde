// Package textutil holds the small, pure text helpers shared across
// clients and the orchestrator: response clamping, control-character
// sanitization, and human-readable relative time/count formatting.
package textutil

import (
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
)

// TruncationSuffix is appended whenever Clamp cuts a body short.
const TruncationSuffix = "\n\n…[truncated]"

// Clamp truncates s to at most max characters, appending TruncationSuffix
// when truncation occurs. Clamp is idempotent: Clamp(Clamp(s,n),n) == Clamp(s,n).
func Clamp(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if strings.HasSuffix(s, TruncationSuffix) {
		return s
	}
	suffixLen := len([]rune(TruncationSuffix))
	cut := max - suffixLen
	if cut < 0 {
		cut = 0
	}
	if cut > len(runes) {
		cut = len(runes)
	}
	return string(runes[:cut]) + TruncationSuffix
}

// Sanitize strips C0 control characters and DEL, preserving TAB/LF/CR, and
// collapses runs of spaces (U+0020) to a single space. Sanitize is
// idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if r <= 0x1F || r == 0x7F {
			continue
		}
		if r == ' ' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
			b.WriteRune(r)
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// HumanCount formats n using SI-like suffixes (e.g. "50.3M", "1.2K"),
// matching the registry clients' downloads-count convention.
func HumanCount(n int64) string {
	s := humanize.SIWithDigits(float64(n), 1, "")
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// RelativeTime renders t relative to now as "just now" under a minute,
// then "Nm ago" / "Nh ago" / "Nd ago"; spans of a year or more use
// humanize's longer phrasing.
func RelativeTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d / time.Minute)
		return plural(mins, "m")
	case d < 24*time.Hour:
		hours := int(d / time.Hour)
		return plural(hours, "h")
	case d < 365*24*time.Hour:
		days := int(d / (24 * time.Hour))
		return plural(days, "d")
	default:
		return humanize.Time(t)
	}
}

func plural(n int, unit string) string {
	return itoa(n) + unit + " ago"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits [20]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}

// IsASCIISpace reports whether r is an ASCII whitespace character.
func IsASCIISpace(r rune) bool {
	return unicode.IsSpace(r) && r < 0x80
}
