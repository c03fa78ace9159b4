package devkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsnap/finsnap-go/core"
)

// FakeWidget records every handoff it receives and optionally fails the
// open call.
type FakeWidget struct {
	mu       sync.Mutex
	handoffs []core.WidgetHandoff
	openErr  error
}

func NewFakeWidget() *FakeWidget {
	return &FakeWidget{}
}

// FailOpenWith makes subsequent Open calls return err.
func (w *FakeWidget) FailOpenWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.openErr = err
}

func (w *FakeWidget) Open(_ context.Context, handoff core.WidgetHandoff) error {
	if w == nil {
		return fmt.Errorf("devkit: fake widget is nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.openErr != nil {
		return w.openErr
	}
	w.handoffs = append(w.handoffs, handoff)
	return nil
}

// Handoffs returns a copy of every recorded handoff, in order.
func (w *FakeWidget) Handoffs() []core.WidgetHandoff {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.WidgetHandoff(nil), w.handoffs...)
}

var _ core.Widget = (*FakeWidget)(nil)

// RecordingNotifier captures success and error notifications for
// assertions.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Success(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, message)
}

func (n *RecordingNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, message)
}

// SuccessCount returns how many success notifications were delivered.
func (n *RecordingNotifier) SuccessCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Successes)
}

// ErrorCount returns how many error notifications were delivered.
func (n *RecordingNotifier) ErrorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Errors)
}

var _ core.Notifier = (*RecordingNotifier)(nil)
