package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TokenVault is the durable custody contract for the access/refresh pair.
// Put stores both tokens atomically; a partial pair must never be observable.
type TokenVault interface {
	Get(ctx context.Context) (TokenPair, error)
	Put(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}

// TokenSource exposes the bearer credential for outbound requests. An empty
// token with a nil error means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Notifier delivers user-visible outcome notifications. Implementations must
// not block; delivery is fire and forget.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Resource identifies an independently cached server resource type.
type Resource string

const (
	ResourceConnections Resource = "connections"
	ResourceAPIKeys     Resource = "api_keys"
)

type TransportRequest struct {
	Method    string
	Path      string
	Query     map[string]string
	Headers   map[string]string
	Body      []byte
	Timeout   time.Duration
	Anonymous bool
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Transport executes one request against the FinSnap API.
type Transport interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// WidgetHandoff is the single outbound message to the external linking
// widget: one token, one embed URL, one session identity.
type WidgetHandoff struct {
	SessionID string
	Token     string
	EmbedURL  string
}

// Widget is the host-provided linking widget boundary. Open must return
// promptly; the terminal outcome arrives later through the coordinator.
type Widget interface {
	Open(ctx context.Context, handoff WidgetHandoff) error
}

type LinkOutcomeKind string

const (
	LinkOutcomeSuccess LinkOutcomeKind = "success"
	LinkOutcomeExit    LinkOutcomeKind = "exit"
)

type WidgetError struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// LinkOutcome is the single terminal inbound message from one widget
// session: either a success carrying the linked connection id, or an exit
// whose nil Err means the user cancelled.
type LinkOutcome struct {
	Kind         LinkOutcomeKind
	ConnectionID string
	Err          *WidgetError
	Metadata     map[string]any
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

// JobEnqueuer hands refresh work to a background queue.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

// JobDelivery is one dequeued refresh job awaiting settlement.
type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

// StoreProvider exposes the durable stores built by a repository factory.
type StoreProvider interface {
	TokenVault() TokenVault
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}
