package holiday

import (
	"slices"
	"strings"
	"time"
)

// Date layouts
const (
	ISOLayout     = "2006-01-02"
	CompactLayout = "20060102"
)

// isoLayouts are tried in order; the slash form is the zh-TW locale default
var isoLayouts = []string{ISOLayout, "2006-1-2", "2006/1/2"}

// ParseDate converts a raw date field. It never fails: null sentinels,
// unparsable input and malformed compact strings all yield the zero time.
func ParseDate(raw string, shape DateShape, nulls []string) time.Time {
	if slices.Contains(nulls, raw) {
		return time.Time{}
	}

	raw = strings.TrimSpace(raw)
	if shape == DateCompact {
		if !isCompactDate(raw) {
			return time.Time{}
		}
		raw = raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// isCompactDate reports whether s is exactly eight ASCII digits
func isCompactDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseFlag is true only for the exact affirmative token
func ParseFlag(raw string, nulls []string) bool {
	if slices.Contains(nulls, raw) {
		return false
	}
	return raw == AffirmativeToken
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(ISOLayout)
}

// Day truncates t to its calendar date in UTC, keeping the wall-clock date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates only
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
