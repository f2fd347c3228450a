package repository

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// NormalizeDate converts a date read from either backend into YYYY-MM-DD.
// PostgreSQL returns DATE columns as time.Time; SQLite returns the stored
// text, which older rows may carry with a time suffix.
func NormalizeDate(v any) (string, error) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(dateLayout), nil
	case *time.Time:
		if d == nil {
			return "", fmt.Errorf("nil date")
		}
		return d.Format(dateLayout), nil
	case []byte:
		return normalizeDateString(string(d))
	case string:
		return normalizeDateString(d)
	default:
		return "", fmt.Errorf("unsupported date type %T", v)
	}
}

func normalizeDateString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return "", fmt.Errorf("invalid date %q", s)
	}
	if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
		return t.Format(dateLayout), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}
