package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Message timestamps are stored and returned in UTC so that ordering and
// since-filters behave the same across the postgres, sqlite and memory stores.

func createdAtFromPg(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time.UTC()
}

func createdAtToPg(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

// sinceToPg maps an absent lower bound to SQL NULL.
func sinceToPg(since *time.Time) pgtype.Timestamptz {
	if since == nil {
		return pgtype.Timestamptz{}
	}
	return createdAtToPg(*since)
}
