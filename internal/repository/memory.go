package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/set-night/mindcoach/internal/domain"
)

type memoryRecord struct {
	id  uuid.UUID
	seq int64
	msg domain.ChatMessage
}

// MemoryStore keeps every user's history in process memory. It is meant for
// development and tests; nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	seq     int64
	records map[string][]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]memoryRecord)}
}

func (s *MemoryStore) History(userName string) domain.ChatHistoryStore {
	return &memoryHistory{store: s, userName: userName}
}

type memoryHistory struct {
	store    *MemoryStore
	userName string
}

func (h *memoryHistory) Append(_ context.Context, dialog domain.Dialog) error {
	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range dialog.Messages() {
		s.seq++
		s.records[h.userName] = append(s.records[h.userName], memoryRecord{
			id:  uuid.New(),
			seq: s.seq,
			msg: m,
		})
	}
	return nil
}

func (h *memoryHistory) Find(_ context.Context, q domain.FindQuery) ([]domain.ChatMessage, error) {
	q = q.Normalize()

	s := h.store
	s.mu.RLock()
	matched := make([]memoryRecord, 0)
	for _, r := range s.records[h.userName] {
		if q.Matches(r.msg) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].msg.Time.Equal(matched[j].msg.Time) {
			return matched[i].msg.Time.Before(matched[j].msg.Time)
		}
		return matched[i].seq < matched[j].seq
	})
	if len(matched) > q.Limit {
		matched = matched[len(matched)-q.Limit:]
	}

	out := make([]domain.ChatMessage, len(matched))
	for i, r := range matched {
		out[i] = r.msg
	}
	return out, nil
}
