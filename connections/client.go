package connections

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/transport"
)

const pathConnections = "/connections"

// RefreshScheduler hands a connection to the background sync queue after a
// manual sync is accepted.
type RefreshScheduler interface {
	ScheduleRefresh(ctx context.Context, connectionID string) error
}

// Client manages provider connections: cached reads, lifecycle mutations,
// and the client-side guard against double sync triggers.
type Client struct {
	rest      core.Transport
	cache     *cache.ResourceCache
	logger    core.Logger
	metrics   core.MetricsRecorder
	scheduler RefreshScheduler

	mu         sync.Mutex
	lastStatus map[string]core.ConnectionStatus
}

type Option func(*Client)

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithRefreshScheduler enqueues a background refresh after every accepted
// manual sync trigger.
func WithRefreshScheduler(scheduler RefreshScheduler) Option {
	return func(c *Client) {
		c.scheduler = scheduler
	}
}

func NewClient(rest core.Transport, resourceCache *cache.ResourceCache, options ...Option) (*Client, error) {
	if rest == nil {
		return nil, fmt.Errorf("connections: transport is required")
	}
	if resourceCache == nil {
		return nil, fmt.Errorf("connections: resource cache is required")
	}
	_, logger := glog.Resolve("finsnap.connections", nil, nil)
	c := &Client{
		rest:       rest,
		cache:      resourceCache,
		logger:     logger,
		metrics:    core.NopMetricsRecorder{},
		lastStatus: map[string]core.ConnectionStatus{},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// List returns every connection, served from the cache until the
// connections resource is invalidated.
func (c *Client) List(ctx context.Context) (core.ConnectionList, error) {
	startedAt := time.Now().UTC()
	list, err := cache.GetOrFetch(ctx, c.cache, core.ResourceConnections, c.fetchList, "list")
	if err == nil {
		c.observeStatuses(list.Connections)
	}
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.list", err, map[string]any{
		"total": list.Total,
	})
	return list, err
}

// Get returns one connection by id, served from the cache.
func (c *Client) Get(ctx context.Context, connectionID string) (core.Connection, error) {
	startedAt := time.Now().UTC()
	conn, err := c.get(ctx, connectionID)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.get", err, map[string]any{
		"connection_id": connectionID,
	})
	return conn, err
}

func (c *Client) get(ctx context.Context, connectionID string) (core.Connection, error) {
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return core.Connection{}, core.NewClientError(
			"connections: connection id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	conn, err := cache.GetOrFetch(ctx, c.cache, core.ResourceConnections, func(ctx context.Context) (core.Connection, error) {
		var fetched core.Connection
		if err := c.roundTrip(ctx, http.MethodGet, pathConnections+"/"+id, nil, &fetched); err != nil {
			return core.Connection{}, err
		}
		return fetched, nil
	}, "id", id)
	if err != nil {
		return core.Connection{}, err
	}
	c.observeStatuses([]core.Connection{conn})
	return conn, nil
}

// Create registers a new connection and invalidates the cached connection
// reads so the next list reflects it.
func (c *Client) Create(ctx context.Context, req core.ConnectionCreateRequest) (core.Connection, error) {
	startedAt := time.Now().UTC()
	conn, err := c.create(ctx, req)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.create", err, map[string]any{
		"connection_type": string(req.ConnectionType),
	})
	return conn, err
}

func (c *Client) create(ctx context.Context, req core.ConnectionCreateRequest) (core.Connection, error) {
	if err := req.Validate(); err != nil {
		return core.Connection{}, core.ClientErrorMapper(err)
	}
	var created core.Connection
	if err := c.roundTrip(ctx, http.MethodPost, pathConnections, req, &created); err != nil {
		return core.Connection{}, err
	}
	c.cache.Invalidate(core.ResourceConnections)
	c.observeStatuses([]core.Connection{created})
	return created, nil
}

// Update patches mutable connection fields and invalidates cached reads.
func (c *Client) Update(ctx context.Context, connectionID string, req core.ConnectionUpdateRequest) (core.Connection, error) {
	startedAt := time.Now().UTC()
	conn, err := c.update(ctx, connectionID, req)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.update", err, map[string]any{
		"connection_id": connectionID,
	})
	return conn, err
}

func (c *Client) update(ctx context.Context, connectionID string, req core.ConnectionUpdateRequest) (core.Connection, error) {
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return core.Connection{}, core.NewClientError(
			"connections: connection id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	var updated core.Connection
	if err := c.roundTrip(ctx, http.MethodPut, pathConnections+"/"+id, req, &updated); err != nil {
		return core.Connection{}, err
	}
	c.cache.Invalidate(core.ResourceConnections)
	c.observeStatuses([]core.Connection{updated})
	return updated, nil
}

// Delete removes a connection. The confirm flag is a hard precondition:
// without it no request is issued.
func (c *Client) Delete(ctx context.Context, connectionID string, confirm bool) error {
	startedAt := time.Now().UTC()
	err := c.delete(ctx, connectionID, confirm)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.delete", err, map[string]any{
		"connection_id": connectionID,
	})
	return err
}

func (c *Client) delete(ctx context.Context, connectionID string, confirm bool) error {
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return core.NewClientError(
			"connections: connection id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	if !confirm {
		return core.NewClientError(
			"connections: delete requires explicit confirmation",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	if err := c.roundTrip(ctx, http.MethodDelete, pathConnections+"/"+id, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(core.ResourceConnections)
	c.mu.Lock()
	delete(c.lastStatus, id)
	c.mu.Unlock()
	return nil
}

// TriggerSync requests a manual sync. When the last observed status for the
// connection is already syncing the call fails locally with a conflict and
// no request is issued.
func (c *Client) TriggerSync(ctx context.Context, connectionID string) (core.MessageResponse, error) {
	startedAt := time.Now().UTC()
	msg, err := c.triggerSync(ctx, connectionID)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "connections.trigger_sync", err, map[string]any{
		"connection_id": connectionID,
	})
	return msg, err
}

func (c *Client) triggerSync(ctx context.Context, connectionID string) (core.MessageResponse, error) {
	id := strings.TrimSpace(connectionID)
	if id == "" {
		return core.MessageResponse{}, core.NewClientError(
			"connections: connection id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}

	c.mu.Lock()
	if c.lastStatus[id] == core.ConnectionStatusSyncing {
		c.mu.Unlock()
		return core.MessageResponse{}, core.NewClientError(
			fmt.Sprintf("connections: sync already in progress for %s", id),
			goerrors.CategoryConflict,
			core.ClientErrorSyncInProgress,
		)
	}
	c.mu.Unlock()

	var msg core.MessageResponse
	if err := c.roundTrip(ctx, http.MethodPost, pathConnections+"/"+id+"/sync", nil, &msg); err != nil {
		return core.MessageResponse{}, err
	}

	c.recordStatus(id, core.ConnectionStatusSyncing)
	c.cache.Invalidate(core.ResourceConnections)

	if c.scheduler != nil {
		if err := c.scheduler.ScheduleRefresh(ctx, id); err != nil {
			c.logger.Error("connections: schedule refresh after sync trigger",
				"connection_id", id,
				"error", err.Error(),
			)
		}
	}
	return msg, nil
}

func (c *Client) fetchList(ctx context.Context) (core.ConnectionList, error) {
	var list core.ConnectionList
	if err := c.roundTrip(ctx, http.MethodGet, pathConnections, nil, &list); err != nil {
		return core.ConnectionList{}, err
	}
	return list, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, path string, payload any, out any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return core.ClientErrorMapper(err)
		}
		body = encoded
	}
	res, err := c.rest.Do(ctx, core.TransportRequest{
		Method: method,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return core.ClientErrorMapper(err)
	}
	if err := transport.DecodeResponse(res, out); err != nil {
		return core.ClientErrorMapper(err)
	}
	return nil
}

// observeStatuses tracks per-connection status for the sync guard and logs
// transitions the lifecycle table does not allow.
func (c *Client) observeStatuses(conns []core.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, conn := range conns {
		previous, seen := c.lastStatus[conn.ID]
		if seen && previous != conn.Status && !core.ConnectionTransitionAllowed(previous, conn.Status) {
			c.logger.Info("connections: unexpected status transition observed",
				"connection_id", conn.ID,
				"from", string(previous),
				"to", string(conn.Status),
			)
		}
		c.lastStatus[conn.ID] = conn.Status
	}
}

func (c *Client) recordStatus(connectionID string, status core.ConnectionStatus) {
	c.mu.Lock()
	c.lastStatus[connectionID] = status
	c.mu.Unlock()
}
