package sqlite

import (
	"database/sql"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// nullableString converts a *string to a value suitable for SQLite storage.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullableInt64 converts a *int64-like value to a value suitable for SQLite storage.
func nullableInt64[T ~int64](v *T) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}
