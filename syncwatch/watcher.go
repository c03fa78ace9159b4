package syncwatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/finsnap/finsnap-go/core"
)

// RefreshJobID is the queue job that re-reads a connection after a sync was
// triggered or a link resolved.
const RefreshJobID = "finsnap.sync.refresh"

const paramConnectionID = "connection_id"

// ConnectionGetter is the read surface a refresh execution needs.
type ConnectionGetter interface {
	Get(ctx context.Context, connectionID string) (core.Connection, error)
}

// Watcher schedules background refresh jobs for connections whose server
// state is expected to move.
type Watcher struct {
	enqueuer core.JobEnqueuer
	jobID    string
	logger   core.Logger
	metrics  core.MetricsRecorder
}

type Option func(*Watcher)

func WithLogger(logger core.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(w *Watcher) {
		if metrics != nil {
			w.metrics = metrics
		}
	}
}

// WithJobID overrides the queue job id the watcher schedules.
func WithJobID(jobID string) Option {
	return func(w *Watcher) {
		if strings.TrimSpace(jobID) != "" {
			w.jobID = strings.TrimSpace(jobID)
		}
	}
}

func NewWatcher(enqueuer core.JobEnqueuer, options ...Option) (*Watcher, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("syncwatch: job enqueuer is required")
	}
	_, logger := glog.Resolve("finsnap.syncwatch", nil, nil)
	w := &Watcher{
		enqueuer: enqueuer,
		jobID:    RefreshJobID,
		logger:   logger,
		metrics:  core.NopMetricsRecorder{},
	}
	for _, option := range options {
		option(w)
	}
	return w, nil
}

// ScheduleRefresh enqueues one refresh job for the connection. Every call
// gets a fresh idempotency key; deduplication is the queue's concern.
func (w *Watcher) ScheduleRefresh(ctx context.Context, connectionID string) error {
	startedAt := time.Now().UTC()
	err := w.schedule(ctx, connectionID)
	core.ObserveOperation(ctx, w.logger, w.metrics, startedAt, "syncwatch.schedule_refresh", err, map[string]any{
		"connection_id": connectionID,
		"job_id":        w.jobID,
	})
	return err
}

func (w *Watcher) schedule(ctx context.Context, connectionID string) error {
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return core.NewClientError(
			"syncwatch: connection id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	msg := &core.JobExecutionMessage{
		JobID:          w.jobID,
		Parameters:     map[string]any{paramConnectionID: id},
		IdempotencyKey: uuid.NewString(),
		DedupPolicy:    "drop",
	}
	if err := w.enqueuer.Enqueue(ctx, msg); err != nil {
		return core.ClientErrorMapper(err)
	}
	return nil
}

// RefreshHandler executes a scheduled refresh: it re-reads the connection
// (a fresh read, since the trigger invalidated the cache) and logs the
// status the server reports.
type RefreshHandler struct {
	connections ConnectionGetter
	logger      core.Logger
	metrics     core.MetricsRecorder
}

func NewRefreshHandler(connections ConnectionGetter, options ...HandlerOption) (*RefreshHandler, error) {
	if connections == nil {
		return nil, fmt.Errorf("syncwatch: connection getter is required")
	}
	_, logger := glog.Resolve("finsnap.syncwatch", nil, nil)
	h := &RefreshHandler{
		connections: connections,
		logger:      logger,
		metrics:     core.NopMetricsRecorder{},
	}
	for _, option := range options {
		option(h)
	}
	return h, nil
}

type HandlerOption func(*RefreshHandler)

func WithHandlerLogger(logger core.Logger) HandlerOption {
	return func(h *RefreshHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithHandlerMetrics(metrics core.MetricsRecorder) HandlerOption {
	return func(h *RefreshHandler) {
		if metrics != nil {
			h.metrics = metrics
		}
	}
}

// HandleRefresh processes one refresh job message.
func (h *RefreshHandler) HandleRefresh(ctx context.Context, msg *core.JobExecutionMessage) error {
	startedAt := time.Now().UTC()
	conn, err := h.handle(ctx, msg)
	core.ObserveOperation(ctx, h.logger, h.metrics, startedAt, "syncwatch.refresh", err, map[string]any{
		"connection_id": conn.ID,
		"status":        string(conn.Status),
	})
	return err
}

func (h *RefreshHandler) handle(ctx context.Context, msg *core.JobExecutionMessage) (core.Connection, error) {
	if msg == nil {
		return core.Connection{}, core.NewClientError(
			"syncwatch: execution message is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	id, _ := msg.Parameters[paramConnectionID].(string)
	if strings.TrimSpace(id) == "" {
		return core.Connection{}, core.NewClientError(
			"syncwatch: refresh message is missing connection_id",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	conn, err := h.connections.Get(ctx, id)
	if err != nil {
		return core.Connection{}, err
	}
	return conn, nil
}
