package syncwatch

import (
	"context"
	"errors"
	"testing"

	"github.com/finsnap/finsnap-go/core"
)

type recordingEnqueuer struct {
	messages []*core.JobExecutionMessage
	err      error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, msg *core.JobExecutionMessage) error {
	if e.err != nil {
		return e.err
	}
	e.messages = append(e.messages, msg)
	return nil
}

type staticGetter struct {
	conn core.Connection
	err  error
	ids  []string
}

func (g *staticGetter) Get(_ context.Context, connectionID string) (core.Connection, error) {
	g.ids = append(g.ids, connectionID)
	return g.conn, g.err
}

func TestScheduleRefreshEnqueuesJobMessage(t *testing.T) {
	ctx := context.Background()
	enqueuer := &recordingEnqueuer{}
	watcher, err := NewWatcher(enqueuer)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	if err := watcher.ScheduleRefresh(ctx, "conn_1"); err != nil {
		t.Fatalf("schedule refresh: %v", err)
	}
	if len(enqueuer.messages) != 1 {
		t.Fatalf("expected one enqueued message, got %d", len(enqueuer.messages))
	}
	msg := enqueuer.messages[0]
	if msg.JobID != RefreshJobID {
		t.Fatalf("expected job id %q, got %q", RefreshJobID, msg.JobID)
	}
	if msg.Parameters["connection_id"] != "conn_1" {
		t.Fatalf("expected connection id parameter, got %+v", msg.Parameters)
	}
	if msg.IdempotencyKey == "" {
		t.Fatalf("expected an idempotency key")
	}
}

func TestScheduleRefreshKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	enqueuer := &recordingEnqueuer{}
	watcher, err := NewWatcher(enqueuer)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := watcher.ScheduleRefresh(ctx, "conn_1"); err != nil {
			t.Fatalf("schedule refresh %d: %v", i, err)
		}
	}
	seen := map[string]bool{}
	for _, msg := range enqueuer.messages {
		if seen[msg.IdempotencyKey] {
			t.Fatalf("duplicate idempotency key %q", msg.IdempotencyKey)
		}
		seen[msg.IdempotencyKey] = true
	}
}

func TestScheduleRefreshValidatesConnectionID(t *testing.T) {
	ctx := context.Background()
	enqueuer := &recordingEnqueuer{}
	watcher, err := NewWatcher(enqueuer)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	if err := watcher.ScheduleRefresh(ctx, "  "); err == nil {
		t.Fatalf("expected blank connection id to be rejected")
	}
	if len(enqueuer.messages) != 0 {
		t.Fatalf("expected no enqueued messages, got %d", len(enqueuer.messages))
	}
}

func TestHandleRefreshReadsConnection(t *testing.T) {
	ctx := context.Background()
	getter := &staticGetter{conn: core.Connection{ID: "conn_1", Status: core.ConnectionStatusActive}}
	handler, err := NewRefreshHandler(getter)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	msg := &core.JobExecutionMessage{
		JobID:      RefreshJobID,
		Parameters: map[string]any{"connection_id": "conn_1"},
	}
	if err := handler.HandleRefresh(ctx, msg); err != nil {
		t.Fatalf("handle refresh: %v", err)
	}
	if len(getter.ids) != 1 || getter.ids[0] != "conn_1" {
		t.Fatalf("expected one read for conn_1, got %v", getter.ids)
	}
}

func TestHandleRefreshRejectsMalformedMessages(t *testing.T) {
	ctx := context.Background()
	handler, err := NewRefreshHandler(&staticGetter{})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	if err := handler.HandleRefresh(ctx, nil); err == nil {
		t.Fatalf("expected nil message to be rejected")
	}
	if err := handler.HandleRefresh(ctx, &core.JobExecutionMessage{JobID: RefreshJobID}); err == nil {
		t.Fatalf("expected missing connection_id to be rejected")
	}
}

func TestHandleRefreshPropagatesReadErrors(t *testing.T) {
	ctx := context.Background()
	handler, err := NewRefreshHandler(&staticGetter{err: errors.New("upstream unavailable")})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	msg := &core.JobExecutionMessage{
		JobID:      RefreshJobID,
		Parameters: map[string]any{"connection_id": "conn_1"},
	}
	if err := handler.HandleRefresh(ctx, msg); err == nil {
		t.Fatalf("expected read error to propagate")
	}
}
