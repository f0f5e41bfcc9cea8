package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeHistory struct {
	msgs      []ChatMessage
	appended  int
	findCalls int
	findErr   error
}

func (f *fakeHistory) Append(_ context.Context, d Dialog) error {
	f.appended++
	f.msgs = append(f.msgs, d.Messages()...)
	return nil
}

func (f *fakeHistory) Find(_ context.Context, q FindQuery) ([]ChatMessage, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	q = q.Normalize()
	out := []ChatMessage{}
	for _, m := range f.msgs {
		if q.Matches(m) {
			out = append(out, m)
		}
	}
	if len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestUser(h *fakeHistory) *User {
	return NewUser("alice", h,
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
	)
}

func testDialog() Dialog {
	d, _ := NewDialog(NewUserMessage("hi", testNow), NewAIReply("hello", testNow))
	return d
}

func userMessagesAt(times ...time.Time) []ChatMessage {
	var out []ChatMessage
	for _, t := range times {
		out = append(out, NewUserMessage("m", t), NewAIReply("r", t))
	}
	return out
}

func TestAddDialog_BurstLimit(t *testing.T) {
	tests := []struct {
		name    string
		ago     []time.Duration
		wantErr bool
	}{
		{"empty history", nil, false},
		{"two recent", []time.Duration{10 * time.Second, 5 * time.Second}, false},
		{"three recent", []time.Duration{20 * time.Second, 10 * time.Second, time.Second}, true},
		{"three but one outside window", []time.Duration{31 * time.Second, 10 * time.Second, time.Second}, false},
		{"exactly on window edge counts", []time.Duration{30 * time.Second, 10 * time.Second, time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var times []time.Time
			for _, a := range tt.ago {
				times = append(times, testNow.Add(-a))
			}
			h := &fakeHistory{msgs: userMessagesAt(times...)}
			before := len(h.msgs)

			err := newTestUser(h).AddDialog(context.Background(), testDialog())

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if h.appended != 1 {
					t.Fatalf("expected 1 append, got %d", h.appended)
				}
				return
			}

			var tmr *TooManyRequestsError
			if !errors.As(err, &tmr) {
				t.Fatalf("expected TooManyRequestsError, got %v", err)
			}
			if tmr.Reason != LimitBurst {
				t.Errorf("expected burst reason, got %q", tmr.Reason)
			}
			if h.appended != 0 || len(h.msgs) != before {
				t.Errorf("history modified on rejection")
			}
		})
	}
}

func TestAddDialog_DailyLimit(t *testing.T) {
	var times []time.Time
	for i := 0; i < 30; i++ {
		times = append(times, testNow.Add(-time.Duration(i+1)*time.Minute))
	}
	h := &fakeHistory{msgs: userMessagesAt(times...)}

	err := newTestUser(h).AddDialog(context.Background(), testDialog())

	var tmr *TooManyRequestsError
	if !errors.As(err, &tmr) {
		t.Fatalf("expected TooManyRequestsError, got %v", err)
	}
	if tmr.Reason != LimitDaily {
		t.Errorf("expected daily reason, got %q", tmr.Reason)
	}
	if h.appended != 0 {
		t.Errorf("expected no append, got %d", h.appended)
	}
}

func TestAddDialog_DailyWindowStartsAtLocalMidnight(t *testing.T) {
	var times []time.Time
	// 29 today, plenty yesterday.
	for i := 0; i < 29; i++ {
		times = append(times, testNow.Add(-time.Duration(i+1)*time.Minute))
	}
	for i := 0; i < 20; i++ {
		times = append([]time.Time{testNow.Add(-13*time.Hour - time.Duration(i)*time.Minute)}, times...)
	}
	h := &fakeHistory{msgs: userMessagesAt(times...)}

	if err := newTestUser(h).AddDialog(context.Background(), testDialog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddDialog_BurstShortCircuitsDaily(t *testing.T) {
	var times []time.Time
	for i := 0; i < 30; i++ {
		times = append(times, testNow.Add(-time.Duration(i)*time.Second/2))
	}
	h := &fakeHistory{msgs: userMessagesAt(times...)}

	err := newTestUser(h).AddDialog(context.Background(), testDialog())

	var tmr *TooManyRequestsError
	if !errors.As(err, &tmr) || tmr.Reason != LimitBurst {
		t.Fatalf("expected burst rejection, got %v", err)
	}
	if h.findCalls != 1 {
		t.Errorf("expected only the burst query, got %d find calls", h.findCalls)
	}
}

func TestAddDialog_AIMessagesDoNotCount(t *testing.T) {
	h := &fakeHistory{}
	for i := 0; i < 10; i++ {
		h.msgs = append(h.msgs, NewAIReply("r", testNow.Add(-time.Second)))
	}

	if err := newTestUser(h).AddDialog(context.Background(), testDialog()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddDialog_FindErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	h := &fakeHistory{findErr: boom}

	err := newTestUser(h).AddDialog(context.Background(), testDialog())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if IsTooManyRequests(err) {
		t.Errorf("store failure must not look like a rate limit")
	}
	if h.appended != 0 {
		t.Errorf("expected no append")
	}
}

func TestStartOfDay_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 12:00 UTC is 21:00 in UTC+9, so midnight there is 15:00 UTC the day before.
	u := NewUser("bob", &fakeHistory{},
		WithClock(func() time.Time { return testNow }),
		WithLocation(loc),
	)

	want := time.Date(2026, 10, 18, 0, 0, 0, 0, loc)
	if got := u.StartOfDay(); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNewDialog_RejectsWrongRoles(t *testing.T) {
	if _, err := NewDialog(NewAIReply("x", testNow), NewAIReply("y", testNow)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := NewDialog(NewUserMessage("x", testNow), NewSystemMessage("y", testNow)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFindQuery_Normalize(t *testing.T) {
	q := FindQuery{}.Normalize()
	if q.Limit != DefaultFindLimit {
		t.Errorf("expected default limit, got %d", q.Limit)
	}
	if len(q.Roles) != 2 || q.Roles[0] != RoleUser || q.Roles[1] != RoleAI {
		t.Errorf("expected user+ai roles, got %v", q.Roles)
	}
	if q.Matches(NewSystemMessage("s", testNow)) {
		t.Errorf("system messages must not match the default roles")
	}
}

func TestPersona(t *testing.T) {
	if p, err := Persona(" CBT "); err != nil || p != PersonaCBT {
		t.Errorf("expected CBT persona, got %q, %v", p, err)
	}
	if _, err := Persona("freud"); !errors.Is(err, ErrUnknownPersona) {
		t.Errorf("expected ErrUnknownPersona, got %v", err)
	}
}
