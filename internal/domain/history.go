package domain

import (
	"context"
	"slices"
	"time"
)

const DefaultFindLimit = 1000

// FindQuery selects messages from a user's history. Zero values mean
// "use the default": the last DefaultFindLimit user and ai messages.
type FindQuery struct {
	Limit int
	Roles []Role
	Since *time.Time
}

// Normalize fills in defaults and returns a copy safe to hand to a store.
func (q FindQuery) Normalize() FindQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultFindLimit
	}
	if len(q.Roles) == 0 {
		q.Roles = []Role{RoleUser, RoleAI}
	} else {
		q.Roles = slices.Clone(q.Roles)
	}
	return q
}

// Matches reports whether m passes the role and time filters. The limit is
// applied by the store.
func (q FindQuery) Matches(m ChatMessage) bool {
	if !slices.Contains(q.Roles, m.Role) {
		return false
	}
	if q.Since != nil && m.Time.Before(*q.Since) {
		return false
	}
	return true
}

// ChatHistoryStore is the durable history of a single user.
type ChatHistoryStore interface {
	// Append records both messages of the dialog, after every dialog
	// appended before it.
	Append(ctx context.Context, dialog Dialog) error

	// Find returns the most recent q.Limit matching messages ordered
	// oldest first. No matches yields an empty slice and a nil error.
	Find(ctx context.Context, q FindQuery) ([]ChatMessage, error)
}

// Histories resolves the history store scoped to a user name.
type Histories interface {
	History(userName string) ChatHistoryStore
}
