package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/finsnap/finsnap-go/core"
)

type staticLister struct {
	list core.ConnectionList
	err  error
}

func (s staticLister) List(context.Context) (core.ConnectionList, error) {
	return s.list, s.err
}

func TestSummaryCountsBillableConnectionsByType(t *testing.T) {
	lister := staticLister{list: core.ConnectionList{
		Connections: []core.Connection{
			{ID: "c1", ConnectionType: core.ConnectionTypeSII, Status: core.ConnectionStatusActive, IsBillable: true},
			{ID: "c2", ConnectionType: core.ConnectionTypeSII, Status: core.ConnectionStatusSyncing, IsBillable: true},
			{ID: "c3", ConnectionType: core.ConnectionTypeBankItau, Status: core.ConnectionStatusActive, IsBillable: true},
			{ID: "c4", ConnectionType: core.ConnectionTypeBankChile, Status: core.ConnectionStatusError, IsBillable: false},
			{ID: "c5", ConnectionType: core.ConnectionTypeSII, Status: core.ConnectionStatusDisconnected, IsBillable: true},
		},
		Total: 5,
	}}
	service, err := NewService(lister)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := service.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalConnections != 5 {
		t.Fatalf("expected 5 total connections, got %d", summary.TotalConnections)
	}
	if summary.BillableConnections != 3 {
		t.Fatalf("expected 3 billable connections, got %d", summary.BillableConnections)
	}
	if summary.ByType[core.ConnectionTypeSII] != 2 {
		t.Fatalf("expected 2 billable sii connections, got %d", summary.ByType[core.ConnectionTypeSII])
	}
	if summary.ByType[core.ConnectionTypeBankItau] != 1 {
		t.Fatalf("expected 1 billable itau connection, got %d", summary.ByType[core.ConnectionTypeBankItau])
	}
}

func TestSummaryPropagatesListErrors(t *testing.T) {
	service, err := NewService(staticLister{err: errors.New("upstream unavailable")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := service.Summary(context.Background()); err == nil {
		t.Fatalf("expected list error to propagate")
	}
}
