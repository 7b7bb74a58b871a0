package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatDate writes t in the D:YYYYMMDDHHmmSS form with its UTC offset.
func formatDate(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02dZ",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%c%02d'%02d'",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), sign, offset/3600, (offset%3600)/60)
}

// parseDate reads a date string. Only the year is required; missing
// fields take their lowest value and a missing offset means UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(s, "D:")
	fields := []struct{ width, def, lo, hi int }{
		{4, 0, 0, 9999}, {2, 1, 1, 12}, {2, 1, 1, 31}, {2, 0, 0, 23}, {2, 0, 0, 59}, {2, 0, 0, 59},
	}
	vals := make([]int, len(fields))
	for i, f := range fields {
		vals[i] = f.def
		if len(s) < f.width || !isDigits(s[:f.width]) {
			if i == 0 {
				return time.Time{}, false
			}
			continue
		}
		v, _ := strconv.Atoi(s[:f.width])
		if v < f.lo || v > f.hi {
			return time.Time{}, false
		}
		vals[i] = v
		s = s[f.width:]
	}
	loc := time.UTC
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		rest := strings.ReplaceAll(s[1:], "'", "")
		if len(rest) < 2 || !isDigits(rest[:2]) {
			return time.Time{}, false
		}
		h, _ := strconv.Atoi(rest[:2])
		m := 0
		if len(rest) >= 4 && isDigits(rest[2:4]) {
			m, _ = strconv.Atoi(rest[2:4])
		}
		offset := h*3600 + m*60
		if s[0] == '-' {
			offset = -offset
		}
		loc = time.FixedZone("", offset)
	}
	return time.Date(vals[0], time.Month(vals[1]), vals[2], vals[3], vals[4], vals[5], 0, loc), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
