package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/finsnap/finsnap-go/core"
	"github.com/finsnap/finsnap-go/transport"
)

const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathRefresh  = "/auth/refresh"
	pathMe       = "/auth/me"
)

// Manager owns the authentication lifecycle: credential custody through the
// token vault, the boot/validating/authenticated/anonymous state machine,
// and the access token used by the rest of the client.
type Manager struct {
	vault   core.TokenVault
	rest    core.Transport
	logger  core.Logger
	metrics core.MetricsRecorder

	state *stateBox
}

type Option func(*Manager)

func WithLogger(logger core.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(metrics core.MetricsRecorder) Option {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

func NewManager(vault core.TokenVault, rest core.Transport, options ...Option) (*Manager, error) {
	if vault == nil {
		return nil, fmt.Errorf("session: token vault is required")
	}
	if rest == nil {
		return nil, fmt.Errorf("session: transport is required")
	}
	_, logger := glog.Resolve("finsnap.session", nil, nil)
	m := &Manager{
		vault:   vault,
		rest:    rest,
		logger:  logger,
		metrics: core.NopMetricsRecorder{},
		state:   newStateBox(),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// Login authenticates with email and password, stores the issued token pair
// atomically, then confirms it against the identity endpoint.
func (m *Manager) Login(ctx context.Context, req core.LoginRequest) (core.Session, error) {
	startedAt := time.Now().UTC()
	session, err := m.login(ctx, req)
	core.ObserveOperation(ctx, m.logger, m.metrics, startedAt, "session.login", err, map[string]any{
		"email": req.Email,
	})
	return session, err
}

func (m *Manager) login(ctx context.Context, req core.LoginRequest) (core.Session, error) {
	if err := req.Validate(); err != nil {
		return m.Snapshot(ctx), core.ClientErrorMapper(err)
	}
	pair, err := m.exchangeTokens(ctx, pathLogin, req)
	if err != nil {
		return m.Snapshot(ctx), err
	}
	return m.adopt(ctx, pair)
}

// Register creates an account and signs it in. Confirmation equality and
// the minimum password length are enforced before any request goes out.
func (m *Manager) Register(ctx context.Context, req core.RegisterRequest) (core.Session, error) {
	startedAt := time.Now().UTC()
	session, err := m.register(ctx, req)
	core.ObserveOperation(ctx, m.logger, m.metrics, startedAt, "session.register", err, map[string]any{
		"email": req.Email,
	})
	return session, err
}

func (m *Manager) register(ctx context.Context, req core.RegisterRequest) (core.Session, error) {
	if err := req.Validate(); err != nil {
		return m.Snapshot(ctx), core.ClientErrorMapper(err)
	}
	pair, err := m.exchangeTokens(ctx, pathRegister, req)
	if err != nil {
		return m.Snapshot(ctx), err
	}
	return m.adopt(ctx, pair)
}

// Validate resolves the current session. Without a stored token it settles
// to anonymous locally; with one it confirms the token against the identity
// endpoint and clears the vault when the server rejects it. Concurrent
// callers share a single in-flight round trip.
func (m *Manager) Validate(ctx context.Context) (core.Session, error) {
	startedAt := time.Now().UTC()
	session, shared, err := m.state.validate(ctx, m.validateOnce)
	core.ObserveOperation(ctx, m.logger, m.metrics, startedAt, "session.validate", err, map[string]any{
		"auth_state": string(session.State),
		"coalesced":  shared,
	})
	return session, err
}

func (m *Manager) validateOnce(ctx context.Context) (core.Session, error) {
	pair, err := m.vault.Get(ctx)
	if err != nil {
		return m.state.settle(core.AuthStateAnonymous, nil, pair), core.ClientErrorMapper(err)
	}
	if pair.Empty() || strings.TrimSpace(pair.AccessToken) == "" {
		return m.state.settle(core.AuthStateAnonymous, nil, core.TokenPair{}), nil
	}

	user, err := m.fetchIdentity(ctx)
	if err != nil {
		if isAuthRejection(err) {
			if clearErr := m.vault.Clear(ctx); clearErr != nil {
				return m.state.settle(core.AuthStateAnonymous, nil, core.TokenPair{}), core.ClientErrorMapper(clearErr)
			}
			return m.state.settle(core.AuthStateAnonymous, nil, core.TokenPair{}), nil
		}
		// Transient failure: validating is never a resting state, so settle
		// anonymous while keeping the stored pair for a later retry.
		return m.state.settle(core.AuthStateAnonymous, nil, pair), err
	}
	return m.state.settle(core.AuthStateAuthenticated, user, pair), nil
}

// Refresh exchanges the stored refresh token for a new pair and swaps the
// vault contents in one step.
func (m *Manager) Refresh(ctx context.Context) (core.TokenPair, error) {
	startedAt := time.Now().UTC()
	pair, err := m.refresh(ctx)
	core.ObserveOperation(ctx, m.logger, m.metrics, startedAt, "session.refresh", err, nil)
	return pair, err
}

func (m *Manager) refresh(ctx context.Context) (core.TokenPair, error) {
	current, err := m.vault.Get(ctx)
	if err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	if strings.TrimSpace(current.RefreshToken) == "" {
		return core.TokenPair{}, core.NewClientError(
			"session: no refresh token available",
			goerrors.CategoryAuth,
			core.ClientErrorAuth,
		)
	}
	pair, err := m.exchangeTokens(ctx, pathRefresh, core.RefreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		return core.TokenPair{}, err
	}
	return pair, nil
}

// Logout drops the stored credentials and settles to anonymous. It is a
// purely local operation.
func (m *Manager) Logout(ctx context.Context) error {
	startedAt := time.Now().UTC()
	err := m.vault.Clear(ctx)
	if err == nil {
		m.state.settle(core.AuthStateAnonymous, nil, core.TokenPair{})
	}
	core.ObserveOperation(ctx, m.logger, m.metrics, startedAt, "session.logout", err, nil)
	if err != nil {
		return core.ClientErrorMapper(err)
	}
	return nil
}

// Snapshot returns a point-in-time copy of the session state.
func (m *Manager) Snapshot(ctx context.Context) core.Session {
	pair, _ := m.vault.Get(ctx)
	return m.state.snapshot(pair)
}

// AccessToken exposes the stored bearer token for outbound requests.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	pair, err := m.vault.Get(ctx)
	if err != nil {
		return "", core.ClientErrorMapper(err)
	}
	return pair.AccessToken, nil
}

// exchangeTokens posts an anonymous auth payload, validates the returned
// pair, and stores it atomically.
func (m *Manager) exchangeTokens(ctx context.Context, path string, payload any) (core.TokenPair, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	res, err := m.rest.Do(ctx, core.TransportRequest{
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Anonymous: true,
	})
	if err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	var tokens core.TokenResponse
	if err := transport.DecodeResponse(res, &tokens); err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	pair := tokens.Pair()
	if err := pair.Validate(); err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	if err := m.vault.Put(ctx, pair); err != nil {
		return core.TokenPair{}, core.ClientErrorMapper(err)
	}
	return pair, nil
}

// adopt confirms a freshly stored pair against the identity endpoint and
// settles the state machine on the outcome.
func (m *Manager) adopt(ctx context.Context, pair core.TokenPair) (core.Session, error) {
	user, err := m.fetchIdentity(ctx)
	if err != nil {
		if isAuthRejection(err) {
			if clearErr := m.vault.Clear(ctx); clearErr != nil {
				err = clearErr
			}
			return m.state.settle(core.AuthStateAnonymous, nil, core.TokenPair{}), core.ClientErrorMapper(err)
		}
		return m.state.settle(core.AuthStateAnonymous, nil, pair), err
	}
	return m.state.settle(core.AuthStateAuthenticated, user, pair), nil
}

func (m *Manager) fetchIdentity(ctx context.Context) (*core.User, error) {
	res, err := m.rest.Do(ctx, core.TransportRequest{
		Method: http.MethodGet,
		Path:   pathMe,
	})
	if err != nil {
		return nil, core.ClientErrorMapper(err)
	}
	var user core.User
	if err := transport.DecodeResponse(res, &user); err != nil {
		return nil, core.ClientErrorMapper(err)
	}
	return &user, nil
}

func isAuthRejection(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryAuth || richErr.Category == goerrors.CategoryAuthz
}

var _ core.TokenSource = (*Manager)(nil)
