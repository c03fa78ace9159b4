package billing

import (
	"context"
	"fmt"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/core"
)

// ConnectionLister is the read surface the billing derivation needs.
type ConnectionLister interface {
	List(ctx context.Context) (core.ConnectionList, error)
}

// Service derives billing figures from the connection registry. Billable
// connections count toward recurring usage-based charges; the derivation is
// purely client-side.
type Service struct {
	connections ConnectionLister
	logger      core.Logger
	metrics     core.MetricsRecorder
}

type Option func(*Service)

func WithLogger(logger core.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

func NewService(connections ConnectionLister, options ...Option) (*Service, error) {
	if connections == nil {
		return nil, fmt.Errorf("billing: connection lister is required")
	}
	_, logger := glog.Resolve("finsnap.billing", nil, nil)
	s := &Service{
		connections: connections,
		logger:      logger,
		metrics:     core.NopMetricsRecorder{},
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// Summary folds the connection list into per-type billable counts. Reads go
// through the same cached path as the registry, so a summary issued after a
// mutation reflects it.
func (s *Service) Summary(ctx context.Context) (core.BillingSummary, error) {
	startedAt := time.Now().UTC()
	summary, err := s.summary(ctx)
	core.ObserveOperation(ctx, s.logger, s.metrics, startedAt, "billing.summary", err, map[string]any{
		"billable": summary.BillableConnections,
		"total":    summary.TotalConnections,
	})
	return summary, err
}

func (s *Service) summary(ctx context.Context) (core.BillingSummary, error) {
	list, err := s.connections.List(ctx)
	if err != nil {
		return core.BillingSummary{}, err
	}

	summary := core.BillingSummary{
		TotalConnections: len(list.Connections),
		ByType:           map[core.ConnectionType]int{},
	}
	for _, conn := range list.Connections {
		if conn.Status == core.ConnectionStatusDisconnected {
			continue
		}
		if conn.IsBillable {
			summary.BillableConnections++
			summary.ByType[conn.ConnectionType]++
		}
	}
	return summary, nil
}
