package connections

import (
	"context"
	"net/http"
	"testing"
	"time"

	finsnapcache "github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/devkit"
)

func testConnection(id string, status core.ConnectionStatus) core.Connection {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return core.Connection{
		ID:             id,
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
		Status:         status,
		IsBillable:     true,
		SyncEnabled:    true,
		SyncInterval:   24,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func newTestClient(t *testing.T, fake *devkit.FakeTransport, options ...Option) *Client {
	t.Helper()
	resourceCache, err := finsnapcache.NewDefault()
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	client, err := NewClient(fake, resourceCache, options...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestListServesFromCache(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, core.ConnectionList{
			Connections: []core.Connection{testConnection("conn_1", core.ConnectionStatusActive)},
			Total:       1,
		}),
	)
	client := newTestClient(t, fake)

	for i := 0; i < 3; i++ {
		list, err := client.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if list.Total != 1 || len(list.Connections) != 1 {
			t.Fatalf("unexpected list %+v", list)
		}
	}
	if got := fake.RequestCount("/connections"); got != 1 {
		t.Fatalf("expected one upstream list request, got %d", got)
	}
}

func TestCreateInvalidatesCachedList(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, core.ConnectionList{
			Connections: []core.Connection{testConnection("conn_1", core.ConnectionStatusActive)},
			Total:       1,
		}),
		devkit.JSONScript(http.StatusCreated, testConnection("conn_2", core.ConnectionStatusPending)),
		devkit.JSONScript(http.StatusOK, core.ConnectionList{
			Connections: []core.Connection{
				testConnection("conn_1", core.ConnectionStatusActive),
				testConnection("conn_2", core.ConnectionStatusPending),
			},
			Total: 2,
		}),
	)
	client := newTestClient(t, fake)

	if _, err := client.List(ctx); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	created, err := client.Create(ctx, core.ConnectionCreateRequest{
		ConnectionType: core.ConnectionTypeSII,
		Name:           "SII Empresa",
		SIICredentials: &core.SIICredentials{RUT: "76.543.210-K", Password: "clave"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "conn_2" {
		t.Fatalf("unexpected created connection %+v", created)
	}

	list, err := client.List(ctx)
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected fresh list after creation, got %+v", list)
	}
	if got := fake.RequestCount(""); got != 3 {
		t.Fatalf("expected exactly three round trips, got %d", got)
	}
}

func TestCreateRejectsInvalidRequestWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport()
	client := newTestClient(t, fake)

	_, err := client.Create(ctx, core.ConnectionCreateRequest{ConnectionType: "bank_hsbc", Name: "x"})
	if err == nil {
		t.Fatalf("expected invalid connection type to be rejected")
	}
	if got := fake.RequestCount(""); got != 0 {
		t.Fatalf("expected no network traffic for invalid input, got %d", got)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport()
	client := newTestClient(t, fake)

	err := client.Delete(ctx, "conn_1", false)
	if err == nil {
		t.Fatalf("expected unconfirmed delete to fail")
	}
	if !core.HasTextCode(err, core.ClientErrorBadInput) {
		t.Fatalf("expected %s, got %v", core.ClientErrorBadInput, err)
	}
	if got := fake.RequestCount(""); got != 0 {
		t.Fatalf("unconfirmed delete must not touch the network, got %d requests", got)
	}
}

func TestTriggerSyncGuardAgainstDoubleTrigger(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, core.ConnectionList{
			Connections: []core.Connection{testConnection("conn_1", core.ConnectionStatusActive)},
			Total:       1,
		}),
		devkit.JSONScript(http.StatusOK, core.MessageResponse{Message: "sync started"}),
	)
	client := newTestClient(t, fake)

	if _, err := client.List(ctx); err != nil {
		t.Fatalf("seed list: %v", err)
	}
	if _, err := client.TriggerSync(ctx, "conn_1"); err != nil {
		t.Fatalf("first trigger: %v", err)
	}

	before := fake.RequestCount("")
	_, err := client.TriggerSync(ctx, "conn_1")
	if err == nil {
		t.Fatalf("expected second trigger to be rejected")
	}
	if !core.HasTextCode(err, core.ClientErrorSyncInProgress) {
		t.Fatalf("expected %s, got %v", core.ClientErrorSyncInProgress, err)
	}
	if after := fake.RequestCount(""); after != before {
		t.Fatalf("guard must reject without network traffic, requests went %d -> %d", before, after)
	}
}

func TestTriggerSyncGuardResetsWhenServerReportsTerminalStatus(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, core.MessageResponse{Message: "sync started"}),
		devkit.JSONScript(http.StatusOK, core.ConnectionList{
			Connections: []core.Connection{testConnection("conn_1", core.ConnectionStatusActive)},
			Total:       1,
		}),
		devkit.JSONScript(http.StatusOK, core.MessageResponse{Message: "sync started"}),
	)
	client := newTestClient(t, fake)

	if _, err := client.TriggerSync(ctx, "conn_1"); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	// Server finished the sync; the next list observes the terminal status.
	if _, err := client.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := client.TriggerSync(ctx, "conn_1"); err != nil {
		t.Fatalf("expected trigger after completed sync to pass, got %v", err)
	}
}

type recordingScheduler struct {
	ids []string
}

func (s *recordingScheduler) ScheduleRefresh(_ context.Context, connectionID string) error {
	s.ids = append(s.ids, connectionID)
	return nil
}

func TestTriggerSyncHandsOffToScheduler(t *testing.T) {
	ctx := context.Background()
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, core.MessageResponse{Message: "sync started"}),
	)
	scheduler := &recordingScheduler{}
	client := newTestClient(t, fake, WithRefreshScheduler(scheduler))

	if _, err := client.TriggerSync(ctx, "conn_1"); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if len(scheduler.ids) != 1 || scheduler.ids[0] != "conn_1" {
		t.Fatalf("expected scheduler handoff for conn_1, got %v", scheduler.ids)
	}
}

func TestUpdateSendsPatchedFieldsOnly(t *testing.T) {
	ctx := context.Background()
	updated := testConnection("conn_1", core.ConnectionStatusActive)
	updated.Name = "SII Holding"
	fake := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, updated),
	)
	client := newTestClient(t, fake)

	name := "SII Holding"
	got, err := client.Update(ctx, "conn_1", core.ConnectionUpdateRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "SII Holding" {
		t.Fatalf("unexpected update result %+v", got)
	}

	requests := fake.Requests()
	if len(requests) != 1 || requests[0].Method != http.MethodPut {
		t.Fatalf("expected one PUT request, got %+v", requests)
	}
	if string(requests[0].Body) != `{"name":"SII Holding"}` {
		t.Fatalf("expected only the patched field on the wire, got %s", requests[0].Body)
	}
}
