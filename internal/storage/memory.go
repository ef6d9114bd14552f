package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a process-local Store. Values are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	audit  []AuditRecord
	closed bool
	now    func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
		now:    time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

func (m *Memory) AppendAudit(ctx context.Context, rec AuditRecord) (AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return AuditRecord{}, ErrClosed
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now().UTC()
	}
	m.audit = append(m.audit, rec)
	return rec, nil
}

func (m *Memory) ListAudit(ctx context.Context, filter AuditFilter) ([]AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	var out []AuditRecord
	for _, rec := range m.audit {
		if filter.FormKey == "" || rec.FormKey == filter.FormKey {
			out = append(out, rec)
		}
	}
	// Newest first, later inserts first on equal timestamps.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if limit := filter.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) PurgeAudit(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	kept := m.audit[:0]
	var purged int64
	for _, rec := range m.audit {
		if rec.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, rec)
	}
	m.audit = kept
	return purged, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
