package storage

import "time"

// TimeLayout is the text encoding used for every timestamp column. The
// fraction is fixed width and values are stored in UTC, so ORDER BY on the
// text column is chronological.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime encodes t for a timestamp column.
// POST: len(result) is constant and result ends in "Z"
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a timestamp column. Rows written with a trimmed fraction
// still parse.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
