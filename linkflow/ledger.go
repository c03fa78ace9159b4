package linkflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultWidgetSessionTTL = 15 * time.Minute

// WidgetSessionRecord tracks one in-flight widget linking session. A record
// is consumed exactly once when the terminal outcome arrives.
type WidgetSessionRecord struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type WidgetSessionLedger interface {
	Save(ctx context.Context, record WidgetSessionRecord) error
	Consume(ctx context.Context, sessionID string) (WidgetSessionRecord, error)
}

// MemoryWidgetSessionLedger is the in-process ledger. Consume removes the
// record under the same lock that finds it, so a session resolves at most
// once even under concurrent callbacks.
type MemoryWidgetSessionLedger struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]WidgetSessionRecord
}

func NewMemoryWidgetSessionLedger(ttl time.Duration) *MemoryWidgetSessionLedger {
	if ttl <= 0 {
		ttl = defaultWidgetSessionTTL
	}
	return &MemoryWidgetSessionLedger{
		ttl:     ttl,
		entries: map[string]WidgetSessionRecord{},
	}
}

func (l *MemoryWidgetSessionLedger) Save(_ context.Context, record WidgetSessionRecord) error {
	if l == nil {
		return fmt.Errorf("linkflow: widget session ledger is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("linkflow: widget session id is required")
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.ExpiresAt.IsZero() {
		record.ExpiresAt = record.CreatedAt.Add(l.ttl)
	}

	l.mu.Lock()
	l.entries[id] = record
	l.mu.Unlock()

	return nil
}

func (l *MemoryWidgetSessionLedger) Consume(_ context.Context, sessionID string) (WidgetSessionRecord, error) {
	if l == nil {
		return WidgetSessionRecord{}, fmt.Errorf("linkflow: widget session ledger is not configured")
	}
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return WidgetSessionRecord{}, fmt.Errorf("linkflow: widget session id is required")
	}

	l.mu.Lock()
	record, ok := l.entries[id]
	if ok {
		delete(l.entries, id)
	}
	l.mu.Unlock()

	if !ok {
		return WidgetSessionRecord{}, fmt.Errorf("linkflow: widget session not found")
	}
	if !record.ExpiresAt.IsZero() && time.Now().UTC().After(record.ExpiresAt) {
		return WidgetSessionRecord{}, fmt.Errorf("linkflow: widget session expired")
	}

	return record, nil
}

var _ WidgetSessionLedger = (*MemoryWidgetSessionLedger)(nil)
