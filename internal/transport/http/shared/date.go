package shared

import "time"

const DateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns the time in UTC.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Parse(DateLayout, value)
}
