package adapters_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/adapters/gocommand"
	"github.com/finsnap/finsnap-go/adapters/gojob"
	"github.com/finsnap/finsnap-go/adapters/gologger"
	finsnapcommand "github.com/finsnap/finsnap-go/command"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/syncwatch"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	ctx := context.Background()

	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("finsnap", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	enqueueProbe := &compatEnqueuer{}
	enqueueAdapter := gojob.NewEnqueuerAdapter(enqueueProbe)
	if err := enqueueAdapter.Enqueue(ctx, &core.JobExecutionMessage{
		JobID:          syncwatch.RefreshJobID,
		Parameters:     map[string]any{"connection_id": "conn_1"},
		IdempotencyKey: "idem_1",
		DedupPolicy:    "drop",
	}); err != nil {
		t.Fatalf("enqueue via gojob adapter: %v", err)
	}
	if enqueueProbe.last == nil || enqueueProbe.last.JobID != syncwatch.RefreshJobID {
		t.Fatalf("expected go-job message mapping through enqueuer adapter")
	}
}

func TestRuntimeCompatibility_CommandDispatchThroughWrappers(t *testing.T) {
	svc := &compatMutatingService{}
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())

	deleteSub, err := gocommand.RegisterAndSubscribe(adapter, finsnapcommand.NewDeleteConnectionCommand(svc))
	if err != nil {
		t.Fatalf("register delete wrapper: %v", err)
	}
	defer deleteSub.Unsubscribe()

	syncSub, err := gocommand.RegisterAndSubscribe(adapter, finsnapcommand.NewTriggerSyncCommand(svc))
	if err != nil {
		t.Fatalf("register sync wrapper: %v", err)
	}
	defer syncSub.Unsubscribe()

	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize adapter: %v", err)
	}

	if err := gocommand.Dispatch(context.Background(), finsnapcommand.DeleteConnectionMessage{
		ConnectionID: "conn_1",
		Confirm:      true,
	}); err != nil {
		t.Fatalf("dispatch delete connection: %v", err)
	}
	if svc.deletedConnectionID != "conn_1" {
		t.Fatalf("expected delete dispatch to reach service, got %q", svc.deletedConnectionID)
	}

	if err := gocommand.Dispatch(context.Background(), finsnapcommand.TriggerSyncMessage{
		ConnectionID: "conn_2",
	}); err != nil {
		t.Fatalf("dispatch trigger sync: %v", err)
	}
	if svc.syncedConnectionID != "conn_2" {
		t.Fatalf("expected sync dispatch to reach service, got %q", svc.syncedConnectionID)
	}
}

type compatEnqueuer struct {
	last *job.ExecutionMessage
}

func (e *compatEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	e.last = msg
	return nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }

type compatMutatingService struct {
	deletedConnectionID string
	syncedConnectionID  string
}

func (s *compatMutatingService) Login(context.Context, core.LoginRequest) (core.Session, error) {
	return core.Session{}, nil
}

func (s *compatMutatingService) Register(context.Context, core.RegisterRequest) (core.Session, error) {
	return core.Session{}, nil
}

func (s *compatMutatingService) Refresh(context.Context) (core.TokenPair, error) {
	return core.TokenPair{}, nil
}

func (s *compatMutatingService) Logout(context.Context) error { return nil }

func (s *compatMutatingService) CreateConnection(context.Context, core.ConnectionCreateRequest) (core.Connection, error) {
	return core.Connection{}, nil
}

func (s *compatMutatingService) UpdateConnection(_ context.Context, connectionID string, _ core.ConnectionUpdateRequest) (core.Connection, error) {
	return core.Connection{ID: connectionID}, nil
}

func (s *compatMutatingService) DeleteConnection(_ context.Context, connectionID string, _ bool) error {
	s.deletedConnectionID = connectionID
	return nil
}

func (s *compatMutatingService) TriggerSync(_ context.Context, connectionID string) (core.MessageResponse, error) {
	s.syncedConnectionID = connectionID
	return core.MessageResponse{Message: "sync started"}, nil
}

func (s *compatMutatingService) BeginLink(context.Context, core.LinkTokenCreateRequest) (string, error) {
	return "", nil
}

func (s *compatMutatingService) ResolveLink(context.Context, string, core.LinkOutcome) error {
	return nil
}

func (s *compatMutatingService) CreateAPIKey(context.Context, core.APIKeyCreateRequest) (core.APIKeyCreateResult, error) {
	return core.APIKeyCreateResult{}, nil
}

func (s *compatMutatingService) DeleteAPIKey(context.Context, string) error     { return nil }
func (s *compatMutatingService) ActivateAPIKey(context.Context, string) error   { return nil }
func (s *compatMutatingService) DeactivateAPIKey(context.Context, string) error { return nil }
