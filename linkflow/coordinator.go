package linkflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/transport"
)

const pathLinkTokenCreate = "/link/token/create"

// SuccessHook receives the linked connection id after a successful resolve.
type SuccessHook func(ctx context.Context, connectionID string)

// Coordinator drives the external-widget linking flow: it mints the link
// token, hands the session to the widget, and resolves the single terminal
// outcome the widget reports.
type Coordinator struct {
	rest      core.Transport
	cache     *cache.ResourceCache
	widget    core.Widget
	notifier  core.Notifier
	ledger    WidgetSessionLedger
	logger    core.Logger
	metrics   core.MetricsRecorder
	embedURL  string
	onSuccess SuccessHook
}

type Option func(*Coordinator)

func WithLogger(logger core.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(c *Coordinator) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

func WithNotifier(notifier core.Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = notifier
	}
}

func WithLedger(ledger WidgetSessionLedger) Option {
	return func(c *Coordinator) {
		if ledger != nil {
			c.ledger = ledger
		}
	}
}

// WithSuccessHook registers the caller hook invoked with the connection id
// after a successful link resolves.
func WithSuccessHook(hook SuccessHook) Option {
	return func(c *Coordinator) {
		c.onSuccess = hook
	}
}

func NewCoordinator(
	rest core.Transport,
	resourceCache *cache.ResourceCache,
	widget core.Widget,
	embedURL string,
	options ...Option,
) (*Coordinator, error) {
	if rest == nil {
		return nil, fmt.Errorf("linkflow: transport is required")
	}
	if resourceCache == nil {
		return nil, fmt.Errorf("linkflow: resource cache is required")
	}
	if widget == nil {
		return nil, fmt.Errorf("linkflow: widget is required")
	}
	_, logger := glog.Resolve("finsnap.linkflow", nil, nil)
	c := &Coordinator{
		rest:     rest,
		cache:    resourceCache,
		widget:   widget,
		ledger:   NewMemoryWidgetSessionLedger(0),
		logger:   logger,
		metrics:  core.NopMetricsRecorder{},
		embedURL: strings.TrimSpace(embedURL),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// Begin mints a link token for the requested connection and hands a new
// widget session to the widget. The widget is never opened when the token
// mint is rejected. It returns the session id the terminal outcome must
// reference.
func (c *Coordinator) Begin(ctx context.Context, req core.LinkTokenCreateRequest) (string, error) {
	startedAt := time.Now().UTC()
	sessionID, err := c.begin(ctx, req)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "linkflow.begin", err, map[string]any{
		"connection_type": string(req.ConnectionType),
		"session_id":      sessionID,
	})
	return sessionID, err
}

func (c *Coordinator) begin(ctx context.Context, req core.LinkTokenCreateRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", core.ClientErrorMapper(err)
	}

	token, err := c.mintToken(ctx, req)
	if err != nil {
		return "", err
	}
	if token.Expired(time.Now().UTC()) {
		return "", core.NewClientError(
			"linkflow: server issued an already expired link token",
			goerrors.CategoryOperation,
			core.ClientErrorLinkToken,
		)
	}

	sessionID := uuid.NewString()
	record := WidgetSessionRecord{
		ID:        sessionID,
		Token:     token.Token,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: token.Expiration,
	}
	if err := c.ledger.Save(ctx, record); err != nil {
		return "", core.ClientErrorMapper(err)
	}

	if err := c.widget.Open(ctx, core.WidgetHandoff{
		SessionID: sessionID,
		Token:     token.Token,
		EmbedURL:  c.embedURL,
	}); err != nil {
		// The session stays in the ledger; a late Resolve for it still
		// consumes exactly once.
		return "", core.NewClientError(
			fmt.Sprintf("linkflow: widget open failed: %v", err),
			goerrors.CategoryOperation,
			core.ClientErrorWidget,
		)
	}
	return sessionID, nil
}

// Resolve consumes the widget session and applies its terminal outcome. A
// second resolve for the same session is rejected without side effects.
func (c *Coordinator) Resolve(ctx context.Context, sessionID string, outcome core.LinkOutcome) error {
	startedAt := time.Now().UTC()
	err := c.resolve(ctx, sessionID, outcome)
	core.ObserveOperation(ctx, c.logger, c.metrics, startedAt, "linkflow.resolve", err, map[string]any{
		"session_id": sessionID,
		"kind":       string(outcome.Kind),
	})
	return err
}

func (c *Coordinator) resolve(ctx context.Context, sessionID string, outcome core.LinkOutcome) error {
	if _, err := c.ledger.Consume(ctx, sessionID); err != nil {
		return core.NewClientError(
			fmt.Sprintf("linkflow: %v", err),
			goerrors.CategoryConflict,
			core.ClientErrorWidget,
		)
	}

	switch outcome.Kind {
	case core.LinkOutcomeSuccess:
		c.cache.Invalidate(core.ResourceConnections)
		c.notifySuccess(ctx, "Connection linked successfully")
		if c.onSuccess != nil {
			c.onSuccess(ctx, outcome.ConnectionID)
		}
		return nil
	case core.LinkOutcomeExit:
		if outcome.Err == nil {
			// User cancelled. No notification, no invalidation.
			return nil
		}
		c.notifyError(ctx, fmt.Sprintf("Connection linking failed: %s", outcome.Err.ErrorMessage))
		return nil
	default:
		return core.NewClientError(
			fmt.Sprintf("linkflow: unknown outcome kind %q", outcome.Kind),
			goerrors.CategoryBadInput,
			core.ClientErrorBadInput,
		)
	}
}

func (c *Coordinator) mintToken(ctx context.Context, req core.LinkTokenCreateRequest) (core.LinkToken, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return core.LinkToken{}, core.ClientErrorMapper(err)
	}
	res, err := c.rest.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		Path:   pathLinkTokenCreate,
		Body:   body,
	})
	if err != nil {
		return core.LinkToken{}, linkTokenError(err)
	}
	var payload core.LinkTokenResponse
	if err := transport.DecodeResponse(res, &payload); err != nil {
		return core.LinkToken{}, linkTokenError(err)
	}
	token := core.LinkToken{
		Token:      strings.TrimSpace(payload.LinkToken),
		Expiration: payload.Expiration,
	}
	if token.Token == "" {
		return core.LinkToken{}, core.NewClientError(
			"linkflow: server returned an empty link token",
			goerrors.CategoryOperation,
			core.ClientErrorLinkToken,
		)
	}
	return token, nil
}

func linkTokenError(err error) error {
	return core.NewClientError(
		fmt.Sprintf("linkflow: link token mint failed: %v", err),
		goerrors.CategoryOperation,
		core.ClientErrorLinkToken,
	)
}

func (c *Coordinator) notifySuccess(ctx context.Context, message string) {
	if c.notifier != nil {
		c.notifier.Success(ctx, message)
	}
}

func (c *Coordinator) notifyError(ctx context.Context, message string) {
	if c.notifier != nil {
		c.notifier.Error(ctx, message)
	}
}
