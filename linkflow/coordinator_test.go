package linkflow

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	finsnapcache "github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/devkit"
)

func tokenScript() devkit.TransportScript {
	return devkit.JSONScript(http.StatusOK, core.LinkTokenResponse{
		LinkToken:  "lt_abc123",
		Expiration: time.Now().UTC().Add(10 * time.Minute),
	})
}

type harness struct {
	coordinator *Coordinator
	transport   *devkit.FakeTransport
	widget      *devkit.FakeWidget
	notifier    *devkit.RecordingNotifier
	cache       *finsnapcache.ResourceCache
	linked      []string
}

func newHarness(t *testing.T, scripts ...devkit.TransportScript) *harness {
	t.Helper()
	resourceCache, err := finsnapcache.NewDefault()
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	h := &harness{
		transport: devkit.NewFakeTransport(scripts...),
		widget:    devkit.NewFakeWidget(),
		notifier:  devkit.NewRecordingNotifier(),
		cache:     resourceCache,
	}
	h.coordinator, err = NewCoordinator(
		h.transport,
		resourceCache,
		h.widget,
		"https://connect.finsnap.cl/embed",
		WithNotifier(h.notifier),
		WithSuccessHook(func(_ context.Context, connectionID string) {
			h.linked = append(h.linked, connectionID)
		}),
	)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return h
}

func TestBeginMintsTokenAndOpensWidget(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tokenScript())

	sessionID, err := h.coordinator.Begin(ctx, core.LinkTokenCreateRequest{
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if strings.TrimSpace(sessionID) == "" {
		t.Fatalf("expected a session id")
	}

	handoffs := h.widget.Handoffs()
	if len(handoffs) != 1 {
		t.Fatalf("expected one widget handoff, got %d", len(handoffs))
	}
	if handoffs[0].Token != "lt_abc123" || handoffs[0].SessionID != sessionID {
		t.Fatalf("unexpected handoff %+v", handoffs[0])
	}
	if handoffs[0].EmbedURL != "https://connect.finsnap.cl/embed" {
		t.Fatalf("unexpected embed url %q", handoffs[0].EmbedURL)
	}
}

func TestBeginTokenRejectionNeverOpensWidget(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, devkit.JSONScript(http.StatusBadRequest, core.APIErrorResponse{Detail: "unsupported type"}))

	_, err := h.coordinator.Begin(ctx, core.LinkTokenCreateRequest{
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
	})
	if err == nil {
		t.Fatalf("expected token mint rejection")
	}
	if !core.HasTextCode(err, core.ClientErrorLinkToken) {
		t.Fatalf("expected %s, got %v", core.ClientErrorLinkToken, err)
	}
	if got := len(h.widget.Handoffs()); got != 0 {
		t.Fatalf("widget must not open after a rejected mint, got %d handoffs", got)
	}
}

func TestResolveSuccessInvalidatesConnectionsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tokenScript())

	sessionID, err := h.coordinator.Begin(ctx, core.LinkTokenCreateRequest{
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	before := h.cache.Generation(core.ResourceConnections)
	outcome := core.LinkOutcome{Kind: core.LinkOutcomeSuccess, ConnectionID: "conn_9"}
	if err := h.coordinator.Resolve(ctx, sessionID, outcome); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := h.cache.Generation(core.ResourceConnections); got != before+1 {
		t.Fatalf("expected exactly one invalidation, generation went %d -> %d", before, got)
	}
	if h.notifier.SuccessCount() != 1 {
		t.Fatalf("expected one success notification, got %d", h.notifier.SuccessCount())
	}
	if len(h.linked) != 1 || h.linked[0] != "conn_9" {
		t.Fatalf("expected success hook with connection id, got %v", h.linked)
	}

	// A second resolve for the same session must change nothing.
	if err := h.coordinator.Resolve(ctx, sessionID, outcome); err == nil {
		t.Fatalf("expected second resolve to be rejected")
	}
	if got := h.cache.Generation(core.ResourceConnections); got != before+1 {
		t.Fatalf("second resolve must not invalidate again, generation %d", got)
	}
	if h.notifier.SuccessCount() != 1 {
		t.Fatalf("second resolve must not notify again, got %d", h.notifier.SuccessCount())
	}
}

func TestResolveExitWithErrorNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tokenScript())

	sessionID, err := h.coordinator.Begin(ctx, core.LinkTokenCreateRequest{
		ConnectionType: core.ConnectionTypeBankItau,
		Name:           "Itau Empresa",
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	outcome := core.LinkOutcome{
		Kind: core.LinkOutcomeExit,
		Err:  &core.WidgetError{ErrorCode: "token_expired", ErrorMessage: "link token expired"},
	}
	if err := h.coordinator.Resolve(ctx, sessionID, outcome); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if h.notifier.ErrorCount() != 1 {
		t.Fatalf("expected exactly one error notification, got %d", h.notifier.ErrorCount())
	}
	if !strings.Contains(h.notifier.Errors[0], "link token expired") {
		t.Fatalf("expected notification to carry the widget message, got %q", h.notifier.Errors[0])
	}
	if h.cache.Generation(core.ResourceConnections) != 0 {
		t.Fatalf("exit outcome must not invalidate connections")
	}
}

func TestResolveNilExitIsSilentCancellation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tokenScript())

	sessionID, err := h.coordinator.Begin(ctx, core.LinkTokenCreateRequest{
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := h.coordinator.Resolve(ctx, sessionID, core.LinkOutcome{Kind: core.LinkOutcomeExit}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if h.notifier.SuccessCount() != 0 || h.notifier.ErrorCount() != 0 {
		t.Fatalf("cancellation must be silent, got %d successes %d errors",
			h.notifier.SuccessCount(), h.notifier.ErrorCount())
	}
}

func TestResolveUnknownSessionRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	err := h.coordinator.Resolve(ctx, "sess_unknown", core.LinkOutcome{Kind: core.LinkOutcomeSuccess})
	if err == nil {
		t.Fatalf("expected unknown session to be rejected")
	}
	if !core.HasTextCode(err, core.ClientErrorWidget) {
		t.Fatalf("expected %s, got %v", core.ClientErrorWidget, err)
	}
}

func TestLedgerSingleUse(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryWidgetSessionLedger(time.Minute)

	record := WidgetSessionRecord{ID: "sess_1", Token: "lt_1"}
	if err := ledger.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := ledger.Consume(ctx, "sess_1"); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := ledger.Consume(ctx, "sess_1"); err == nil {
		t.Fatalf("expected second consume to fail")
	}
}

func TestLedgerExpiredSessionRejected(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryWidgetSessionLedger(time.Minute)

	record := WidgetSessionRecord{
		ID:        "sess_1",
		Token:     "lt_1",
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := ledger.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := ledger.Consume(ctx, "sess_1"); err == nil {
		t.Fatalf("expected expired session to be rejected")
	}
}
