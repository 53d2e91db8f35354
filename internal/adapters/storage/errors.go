package storage

import (
	"errors"
	"strings"

	sqlite3 "modernc.org/sqlite/lib"
)

// UniqueViolation reports whether err is a UNIQUE constraint failure and,
// when SQLite names it, the offending "table.column".
func UniqueViolation(err error) (string, bool) {
	var coded interface{ Code() int }
	if err == nil || !errors.As(err, &coded) {
		return "", false
	}
	_, rest, found := strings.Cut(err.Error(), "UNIQUE constraint failed: ")
	switch {
	case coded.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE && !found:
		return "", true
	case coded.Code()&0xff != sqlite3.SQLITE_CONSTRAINT || !found:
		return "", false
	}
	column, _, _ := strings.Cut(rest, " ")
	return column, true
}

// NullIfEmpty maps an empty string to SQL NULL for nullable text columns.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
