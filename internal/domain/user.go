package domain

import (
	"context"
	"fmt"
	"time"
)

// Limits is the per-user throttling policy checked before a dialog is stored.
type Limits struct {
	BurstWindow time.Duration
	BurstMax    int
	DailyMax    int
}

// DefaultLimits rejects a dialog once 3 user messages are stored within the
// last 30 seconds or 30 since local midnight.
var DefaultLimits = Limits{
	BurstWindow: 30 * time.Second,
	BurstMax:    3,
	DailyMax:    30,
}

// User is built per request from a store lookup. It holds no state of its own
// beyond the name; the history store is the source of truth.
type User struct {
	Name    string
	History ChatHistoryStore

	limits Limits
	now    func() time.Time
	loc    *time.Location
}

type UserOption func(*User)

func WithLimits(l Limits) UserOption {
	return func(u *User) { u.limits = l }
}

// WithClock sets the wall clock used by the rate-limit windows.
func WithClock(now func() time.Time) UserOption {
	return func(u *User) { u.now = now }
}

// WithLocation sets the zone whose midnight starts the daily window.
func WithLocation(loc *time.Location) UserOption {
	return func(u *User) { u.loc = loc }
}

func NewUser(name string, history ChatHistoryStore, opts ...UserOption) *User {
	u := &User{
		Name:    name,
		History: history,
		limits:  DefaultLimits,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AddDialog runs the burst check, then the daily check, then appends. The
// first failing check wins and nothing is written.
func (u *User) AddDialog(ctx context.Context, dialog Dialog) error {
	if err := u.checkBurst(ctx); err != nil {
		return err
	}
	if err := u.checkDaily(ctx); err != nil {
		return err
	}
	if err := u.History.Append(ctx, dialog); err != nil {
		return fmt.Errorf("append dialog: %w", err)
	}
	return nil
}

// StartOfDay returns local midnight of the current day.
func (u *User) StartOfDay() time.Time {
	now := u.now().In(u.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc)
}

func (u *User) checkBurst(ctx context.Context) error {
	since := u.now().Add(-u.limits.BurstWindow)
	n, err := u.countUserMessages(ctx, since)
	if err != nil {
		return fmt.Errorf("burst check: %w", err)
	}
	if n >= u.limits.BurstMax {
		return &TooManyRequestsError{Reason: LimitBurst, Window: u.limits.BurstWindow}
	}
	return nil
}

func (u *User) checkDaily(ctx context.Context) error {
	n, err := u.countUserMessages(ctx, u.StartOfDay())
	if err != nil {
		return fmt.Errorf("daily check: %w", err)
	}
	if n >= u.limits.DailyMax {
		return &TooManyRequestsError{Reason: LimitDaily}
	}
	return nil
}

// The query limit never drops below a configured maximum, so every count a
// decision depends on is exact.
func (u *User) countUserMessages(ctx context.Context, since time.Time) (int, error) {
	msgs, err := u.History.Find(ctx, FindQuery{
		Limit: max(u.limits.BurstMax, u.limits.DailyMax, DefaultFindLimit),
		Roles: []Role{RoleUser},
		Since: &since,
	})
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}
