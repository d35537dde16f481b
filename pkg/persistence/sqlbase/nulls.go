package sqlbase

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// utcOrNil normalizes an optional timestamp for binding.
func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC()
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	utc := t.Time.UTC()

	return &utc
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	return &s.String
}

// placeholders renders n bind parameters starting at $start, comma separated.
func placeholders(start, n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", start+i)
	}

	return strings.Join(params, ", ")
}
