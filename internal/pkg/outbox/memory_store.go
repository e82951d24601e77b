package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrEntryNotFound 表示 outbox 中没有该记录。
var ErrEntryNotFound = errors.New("outbox entry not found")

// MemoryStore 是进程内的 outbox，供 memory 存储驱动和测试使用。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uuid.UUID]*Entry)}
}

// Append 写入一条记录。与业务数据的原子性由调用方持有的锁保证。
func (s *MemoryStore) Append(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries[e.ID] = &cp
}

func (s *MemoryStore) Pending(_ context.Context, olderThan time.Time, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Entry
	for _, e := range s.entries {
		if e.Status == StatusPending && !e.CreatedAt.After(olderThan) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	at = at.UTC()
	e.Status = StatusPublished
	e.PublishedAt = &at
	return nil
}

func (s *MemoryStore) MarkAttempt(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Attempts++
	return nil
}

// Get 返回记录副本。
func (s *MemoryStore) Get(id uuid.UUID) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}
