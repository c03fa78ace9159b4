package finsnap

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/apikeys"
	"github.com/finsnap/finsnap-go/billing"
	"github.com/finsnap/finsnap-go/cache"
	"github.com/finsnap/finsnap-go/connections"
	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/linkflow"
	"github.com/finsnap/finsnap-go/session"
	sqlstore "github.com/finsnap/finsnap-go/store/sql"
	"github.com/finsnap/finsnap-go/syncwatch"
	"github.com/finsnap/finsnap-go/transport"
)

// Client is the composed FinSnap surface: session lifecycle, connection
// management, linking, api keys, and billing behind one constructor.
type Client struct {
	config          core.Config
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metricsRecorder core.MetricsRecorder
	errorMapper     core.ErrorMapper

	transport core.Transport
	vault     core.TokenVault
	cache     *cache.ResourceCache
	notifier  core.Notifier

	session     *session.Manager
	connections *connections.Client
	apiKeys     *apikeys.Client
	link        *linkflow.Coordinator
	billing     *billing.Service
	watcher     *syncwatch.Watcher

	persistenceClient any
	repositoryFactory any
}

type clientBuilder struct {
	logger            core.Logger
	loggerProvider    core.LoggerProvider
	metricsRecorder   core.MetricsRecorder
	errorMapper       core.ErrorMapper
	configProvider    core.ConfigProvider
	optionsResolver   core.OptionsResolver
	transport         core.Transport
	httpClient        transport.HTTPDoer
	vault             core.TokenVault
	widget            core.Widget
	notifier          core.Notifier
	ledger            linkflow.WidgetSessionLedger
	jobEnqueuer       core.JobEnqueuer
	persistenceClient any
	repositoryFactory any
	runtimeConfig     core.Config
}

type Option func(*clientBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *clientBuilder) { b.logger = logger }
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *clientBuilder) { b.loggerProvider = provider }
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *clientBuilder) { b.metricsRecorder = recorder }
}

func WithErrorMapper(mapper core.ErrorMapper) Option {
	return func(b *clientBuilder) { b.errorMapper = mapper }
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *clientBuilder) { b.configProvider = provider }
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *clientBuilder) { b.optionsResolver = resolver }
}

// WithTransport replaces the default REST adapter. Custom transports own
// credential injection.
func WithTransport(t core.Transport) Option {
	return func(b *clientBuilder) { b.transport = t }
}

func WithHTTPClient(client transport.HTTPDoer) Option {
	return func(b *clientBuilder) { b.httpClient = client }
}

func WithTokenVault(vault core.TokenVault) Option {
	return func(b *clientBuilder) { b.vault = vault }
}

func WithWidget(widget core.Widget) Option {
	return func(b *clientBuilder) { b.widget = widget }
}

func WithNotifier(notifier core.Notifier) Option {
	return func(b *clientBuilder) { b.notifier = notifier }
}

func WithWidgetSessionLedger(ledger linkflow.WidgetSessionLedger) Option {
	return func(b *clientBuilder) { b.ledger = ledger }
}

func WithJobEnqueuer(enqueuer core.JobEnqueuer) Option {
	return func(b *clientBuilder) { b.jobEnqueuer = enqueuer }
}

func WithPersistenceClient(client any) Option {
	return func(b *clientBuilder) { b.persistenceClient = client }
}

func WithRepositoryFactory(factory any) Option {
	return func(b *clientBuilder) { b.repositoryFactory = factory }
}

// New builds the client. The passed config is the runtime layer; it is
// merged over the config provider's output and the package defaults.
func New(cfg core.Config, opts ...Option) (*Client, error) {
	builder := clientBuilder{runtimeConfig: cfg}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("finsnap", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("finsnap"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = core.NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = core.ClientErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = core.GoOptionsResolver{}
	}

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	vault, err := resolveTokenVault(builder, finalConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	var restAdapter *transport.RESTAdapter
	wire := builder.transport
	if wire == nil {
		httpClient := builder.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: finalConfig.HTTPTimeout}
		}
		restAdapter = transport.NewRESTAdapter(finalConfig.BaseURL, nil, httpClient)
		wire = restAdapter
	}

	sessionManager, err := session.NewManager(vault, wire,
		session.WithLogger(logger),
		session.WithMetrics(builder.metricsRecorder),
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if restAdapter != nil {
		restAdapter.TokenSource = sessionManager
	}

	resourceCache, err := cache.NewDefault()
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	var watcher *syncwatch.Watcher
	if builder.jobEnqueuer != nil {
		watcher, err = syncwatch.NewWatcher(builder.jobEnqueuer,
			syncwatch.WithLogger(logger),
			syncwatch.WithMetrics(builder.metricsRecorder),
			syncwatch.WithJobID(finalConfig.Sync.RefreshJobID),
		)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	connectionOpts := []connections.Option{
		connections.WithLogger(logger),
		connections.WithMetrics(builder.metricsRecorder),
	}
	if watcher != nil {
		connectionOpts = append(connectionOpts, connections.WithRefreshScheduler(watcher))
	}
	connectionClient, err := connections.NewClient(wire, resourceCache, connectionOpts...)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	apiKeyClient, err := apikeys.NewClient(wire, resourceCache,
		apikeys.WithLogger(logger),
		apikeys.WithMetrics(builder.metricsRecorder),
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	billingService, err := billing.NewService(connectionClient,
		billing.WithLogger(logger),
		billing.WithMetrics(builder.metricsRecorder),
	)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	var coordinator *linkflow.Coordinator
	if builder.widget != nil {
		linkOpts := []linkflow.Option{
			linkflow.WithLogger(logger),
			linkflow.WithMetrics(builder.metricsRecorder),
		}
		if builder.notifier != nil {
			linkOpts = append(linkOpts, linkflow.WithNotifier(builder.notifier))
		}
		if builder.ledger != nil {
			linkOpts = append(linkOpts, linkflow.WithLedger(builder.ledger))
		}
		if watcher != nil {
			refresh := watcher
			linkOpts = append(linkOpts, linkflow.WithSuccessHook(func(ctx context.Context, connectionID string) {
				if scheduleErr := refresh.ScheduleRefresh(ctx, connectionID); scheduleErr != nil {
					logger.Warn("linked connection refresh scheduling failed",
						"connection_id", connectionID, "error", scheduleErr)
				}
			}))
		}
		coordinator, err = linkflow.NewCoordinator(wire, resourceCache, builder.widget, finalConfig.ConnectEmbedURL, linkOpts...)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}

	return &Client{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorMapper:       builder.errorMapper,
		transport:         wire,
		vault:             vault,
		cache:             resourceCache,
		notifier:          builder.notifier,
		session:           sessionManager,
		connections:       connectionClient,
		apiKeys:           apiKeyClient,
		link:              coordinator,
		billing:           billingService,
		watcher:           watcher,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
	}, nil
}

// Setup is an alias for New kept for hosts that wire clients in a
// provider-style bootstrap.
func Setup(cfg core.Config, opts ...Option) (*Client, error) {
	return New(cfg, opts...)
}

func resolveTokenVault(builder clientBuilder, cfg core.Config) (core.TokenVault, error) {
	if builder.vault != nil {
		return builder.vault, nil
	}

	if builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(core.RepositoryStoreFactory); ok {
			provider, err := storeFactory.BuildStores(builder.persistenceClient)
			if err != nil {
				return nil, err
			}
			if provider != nil && provider.TokenVault() != nil {
				return provider.TokenVault(), nil
			}
		} else if provider, ok := builder.repositoryFactory.(core.StoreProvider); ok {
			if vault := provider.TokenVault(); vault != nil {
				return vault, nil
			}
		}
	}

	if strings.TrimSpace(cfg.Vault.DSN) != "" {
		driver := cfg.Vault.Driver
		if strings.TrimSpace(driver) == "" {
			driver = sqlstore.DriverSQLite
		}
		db, err := sqlstore.OpenDB(driver, cfg.Vault.DSN)
		if err != nil {
			return nil, err
		}
		factory, err := sqlstore.NewRepositoryFactoryFromDB(db)
		if err != nil {
			return nil, err
		}
		return factory.TokenVault(), nil
	}

	return core.NewMemoryTokenVault(), nil
}

func mapBuildError(mapper core.ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (c *Client) Config() core.Config {
	if c == nil {
		return core.Config{}
	}
	return c.config
}

func (c *Client) SessionManager() *session.Manager {
	if c == nil {
		return nil
	}
	return c.session
}

func (c *Client) Connections() *connections.Client {
	if c == nil {
		return nil
	}
	return c.connections
}

func (c *Client) APIKeys() *apikeys.Client {
	if c == nil {
		return nil
	}
	return c.apiKeys
}

func (c *Client) Link() *linkflow.Coordinator {
	if c == nil {
		return nil
	}
	return c.link
}

func (c *Client) Billing() *billing.Service {
	if c == nil {
		return nil
	}
	return c.billing
}

func (c *Client) Cache() *cache.ResourceCache {
	if c == nil {
		return nil
	}
	return c.cache
}

func (c *Client) Transport() core.Transport {
	if c == nil {
		return nil
	}
	return c.transport
}

func (c *Client) Vault() core.TokenVault {
	if c == nil {
		return nil
	}
	return c.vault
}

func linkflowUnavailableError() error {
	return core.NewClientError(
		"finsnap: linking widget is not configured",
		goerrors.CategoryInternal,
		core.ClientErrorInternal,
	)
}

// Login authenticates and adopts the issued token pair.
func (c *Client) Login(ctx context.Context, req core.LoginRequest) (core.Session, error) {
	return c.session.Login(ctx, req)
}

func (c *Client) Register(ctx context.Context, req core.RegisterRequest) (core.Session, error) {
	return c.session.Register(ctx, req)
}

func (c *Client) Refresh(ctx context.Context) (core.TokenPair, error) {
	return c.session.Refresh(ctx)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// Validate restores the session from the vault, coalescing concurrent calls.
func (c *Client) Validate(ctx context.Context) (core.Session, error) {
	return c.session.Validate(ctx)
}

func (c *Client) Session(ctx context.Context) (core.Session, error) {
	return c.session.Validate(ctx)
}

func (c *Client) CreateConnection(ctx context.Context, req core.ConnectionCreateRequest) (core.Connection, error) {
	return c.connections.Create(ctx, req)
}

func (c *Client) UpdateConnection(ctx context.Context, connectionID string, req core.ConnectionUpdateRequest) (core.Connection, error) {
	return c.connections.Update(ctx, connectionID, req)
}

func (c *Client) DeleteConnection(ctx context.Context, connectionID string, confirm bool) error {
	return c.connections.Delete(ctx, connectionID, confirm)
}

func (c *Client) TriggerSync(ctx context.Context, connectionID string) (core.MessageResponse, error) {
	return c.connections.TriggerSync(ctx, connectionID)
}

func (c *Client) ListConnections(ctx context.Context) (core.ConnectionList, error) {
	return c.connections.List(ctx)
}

func (c *Client) GetConnection(ctx context.Context, connectionID string) (core.Connection, error) {
	return c.connections.Get(ctx, connectionID)
}

func (c *Client) BeginLink(ctx context.Context, req core.LinkTokenCreateRequest) (string, error) {
	if c.link == nil {
		return "", linkflowUnavailableError()
	}
	return c.link.Begin(ctx, req)
}

func (c *Client) ResolveLink(ctx context.Context, sessionID string, outcome core.LinkOutcome) error {
	if c.link == nil {
		return linkflowUnavailableError()
	}
	return c.link.Resolve(ctx, sessionID, outcome)
}

func (c *Client) CreateAPIKey(ctx context.Context, req core.APIKeyCreateRequest) (core.APIKeyCreateResult, error) {
	return c.apiKeys.Create(ctx, req)
}

func (c *Client) DeleteAPIKey(ctx context.Context, keyID string) error {
	return c.apiKeys.Delete(ctx, keyID)
}

func (c *Client) ActivateAPIKey(ctx context.Context, keyID string) error {
	return c.apiKeys.Activate(ctx, keyID)
}

func (c *Client) DeactivateAPIKey(ctx context.Context, keyID string) error {
	return c.apiKeys.Deactivate(ctx, keyID)
}

func (c *Client) ListAPIKeys(ctx context.Context) (core.APIKeyList, error) {
	return c.apiKeys.List(ctx)
}

func (c *Client) BillingSummary(ctx context.Context) (core.BillingSummary, error) {
	return c.billing.Summary(ctx)
}
