package apikeys

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/transport"
)

const pathAPIKeys = "/api-keys"

// Client manages API keys. List reads go through the cache; the raw key
// returned by Create exists only in that create result and is never cached
// or re-readable.
type Client struct {
	rest    core.Transport
	cache   *cache.ResourceCache
	logger  core.Logger
	metrics core.MetricsRecorder
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

func NewClient(rest core.Transport, resourceCache *cache.ResourceCache, options ...Option) (*Client, error) {
	if rest == nil {
		return nil, fmt.Errorf("apikeys: transport is required")
	}
	if resourceCache == nil {
		return nil, fmt.Errorf("apikeys: resource cache is required")
	}
	_, logger := glog.Resolve("finsnap.apikeys", nil, nil)
	c := &Client{
		rest:    rest,
		cache:   resourceCache,
		logger:  logger,
		metrics: core.NopMetricsRecorder{},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// List returns the key metadata the server exposes: prefixes, never raw
// keys.
func (c *Client) List(ctx context.Context) (core.APIKeyList, error) {
	startedAt := time.Now().UTC()
	list, err := cache.GetOrFetch(ctx, c.cache, core.ResourceAPIKeys, c.fetchList, "list")
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "apikeys.list", err, map[string]any{
		"total": list.Total,
	})
	return list, err
}

// Create mints a new key. The result carries the raw key exactly once and
// bypasses the cache entirely.
func (c *Client) Create(ctx context.Context, req core.APIKeyCreateRequest) (core.APIKeyCreateResult, error) {
	startedAt := time.Now().UTC()
	result, err := c.create(ctx, req)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "apikeys.create", err, map[string]any{
		"name": req.Name,
	})
	return result, err
}

func (c *Client) create(ctx context.Context, req core.APIKeyCreateRequest) (core.APIKeyCreateResult, error) {
	if err := req.Validate(); err != nil {
		return core.APIKeyCreateResult{}, core.ClientErrorMapper(err)
	}
	var result core.APIKeyCreateResult
	if err := c.roundTrip(ctx, http.MethodPost, pathAPIKeys, req, &result); err != nil {
		return core.APIKeyCreateResult{}, err
	}
	c.cache.Invalidate(core.ResourceAPIKeys)
	return result, nil
}

// Delete revokes a key permanently.
func (c *Client) Delete(ctx context.Context, keyID string) error {
	return c.mutate(ctx, "apikeys.delete", keyID, http.MethodDelete, "")
}

// Activate re-enables a deactivated key.
func (c *Client) Activate(ctx context.Context, keyID string) error {
	return c.mutate(ctx, "apikeys.activate", keyID, http.MethodPost, "/activate")
}

// Deactivate suspends a key without revoking it.
func (c *Client) Deactivate(ctx context.Context, keyID string) error {
	return c.mutate(ctx, "apikeys.deactivate", keyID, http.MethodPost, "/deactivate")
}

func (c *Client) mutate(ctx context.Context, operation string, keyID string, method string, suffix string) error {
	startedAt := time.Now().UTC()
	err := c.mutateKey(ctx, keyID, method, suffix)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, operation, err, map[string]any{
		"api_key_id": keyID,
	})
	return err
}

func (c *Client) mutateKey(ctx context.Context, keyID string, method string, suffix string) error {
	id := strings.TrimSpace(keyID)
	if id == "" {
		return core.NewClientError(
			"apikeys: api key id is required",
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
	if err := c.roundTrip(ctx, method, pathAPIKeys+"/"+id+suffix, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(core.ResourceAPIKeys)
	return nil
}

func (c *Client) fetchList(ctx context.Context) (core.APIKeyList, error) {
	var list core.APIKeyList
	if err := c.roundTrip(ctx, http.MethodGet, pathAPIKeys, nil, &list); err != nil {
		return core.APIKeyList{}, err
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
