package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidConnectionType             = errors.New("core: invalid connection type")
	ErrInvalidConnectionStatus           = errors.New("core: invalid connection status")
	ErrInvalidConnectionStatusTransition = errors.New("core: invalid connection status transition")
	ErrIncompleteTokenPair               = errors.New("core: token pair requires both access and refresh tokens")
)

type ConnectionType string

const (
	ConnectionTypeSII           ConnectionType = "sii"
	ConnectionTypeBankItau      ConnectionType = "bank_itau"
	ConnectionTypeBankChile     ConnectionType = "bank_chile"
	ConnectionTypeBankSantander ConnectionType = "bank_santander"
)

func (t ConnectionType) Validate() error {
	switch t {
	case ConnectionTypeSII, ConnectionTypeBankItau, ConnectionTypeBankChile, ConnectionTypeBankSantander:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidConnectionType, string(t))
}

type ConnectionStatus string

const (
	ConnectionStatusPending      ConnectionStatus = "pending"
	ConnectionStatusActive       ConnectionStatus = "active"
	ConnectionStatusSyncing      ConnectionStatus = "syncing"
	ConnectionStatusError        ConnectionStatus = "error"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

func (s ConnectionStatus) Validate() error {
	switch s {
	case ConnectionStatusPending, ConnectionStatusActive, ConnectionStatusSyncing,
		ConnectionStatusError, ConnectionStatusDisconnected:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidConnectionStatus, string(s))
}

// ConnectionTransitionAllowed reports whether the server-observed move from
// current to next matches the documented sync lifecycle. The client never
// drives transitions itself; this is an observability check applied to reads.
func ConnectionTransitionAllowed(current, next ConnectionStatus) bool {
	if current == next {
		return true
	}
	// Disconnection is an explicit disable and is reachable from any state.
	if next == ConnectionStatusDisconnected {
		return true
	}
	allowed := map[ConnectionStatus]map[ConnectionStatus]struct{}{
		ConnectionStatusPending: {
			ConnectionStatusActive:  {},
			ConnectionStatusSyncing: {},
			ConnectionStatusError:   {},
		},
		ConnectionStatusActive: {
			ConnectionStatusSyncing: {},
			ConnectionStatusError:   {},
		},
		ConnectionStatusSyncing: {
			ConnectionStatusActive: {},
			ConnectionStatusError:  {},
		},
		ConnectionStatusError: {
			ConnectionStatusSyncing: {},
		},
		ConnectionStatusDisconnected: {
			ConnectionStatusActive:  {},
			ConnectionStatusPending: {},
		},
	}
	_, ok := allowed[current][next]
	return ok
}

// Connection is a configured integration with an external financial data
// source. Every field is authoritative from the server on each read.
type Connection struct {
	ID             string           `json:"id"`
	ConnectionType ConnectionType   `json:"connection_type"`
	Name           string           `json:"name"`
	Status         ConnectionStatus `json:"status"`
	WebhookURL     *string          `json:"webhook_url"`
	WebhookSecret  *string          `json:"webhook_secret"`
	LastSyncAt     *time.Time       `json:"last_sync_at"`
	LastError      *string          `json:"last_error"`
	IsBillable     bool             `json:"is_billable"`
	SyncEnabled    bool             `json:"sync_enabled"`
	SyncInterval   int              `json:"sync_interval_hours"`
	NextSyncAt     *time.Time       `json:"next_sync_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// User is the server-issued profile, replaced wholesale on each validation.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName *string   `json:"company_name"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TokenPair is the access/refresh credential pair. A pair is written to the
// vault atomically; a record holding only one token is not a producible state.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func (p TokenPair) Empty() bool {
	return strings.TrimSpace(p.AccessToken) == "" && strings.TrimSpace(p.RefreshToken) == ""
}

func (p TokenPair) Validate() error {
	if strings.TrimSpace(p.AccessToken) == "" || strings.TrimSpace(p.RefreshToken) == "" {
		return ErrIncompleteTokenPair
	}
	return nil
}

type AuthState string

const (
	AuthStateBoot          AuthState = "boot"
	AuthStateValidating    AuthState = "validating"
	AuthStateAuthenticated AuthState = "authenticated"
	AuthStateAnonymous     AuthState = "anonymous"
)

func AuthTransitionAllowed(current, next AuthState) bool {
	if current == next {
		return true
	}
	allowed := map[AuthState]map[AuthState]struct{}{
		AuthStateBoot: {
			AuthStateValidating: {},
		},
		AuthStateValidating: {
			AuthStateAuthenticated: {},
			AuthStateAnonymous:     {},
		},
		AuthStateAuthenticated: {
			AuthStateAnonymous:  {},
			AuthStateValidating: {},
		},
		AuthStateAnonymous: {
			AuthStateAuthenticated: {},
			AuthStateValidating:    {},
		},
	}
	_, ok := allowed[current][next]
	return ok
}

// Session is a point-in-time snapshot of the authentication state. The
// session manager owns the live state; snapshots are value copies.
type Session struct {
	AccessToken     string
	RefreshToken    string
	User            *User
	State           AuthState
	IsAuthenticated bool
	IsLoading       bool
}

// LinkToken authorizes exactly one external-widget linking session. It is
// never persisted beyond the in-flight link flow.
type LinkToken struct {
	Token      string
	Expiration time.Time
}

func (t LinkToken) Expired(now time.Time) bool {
	return !t.Expiration.IsZero() && now.After(t.Expiration)
}

// APIKey is the listable key record. Only the prefix is ever readable; the
// raw secret surfaces once, at creation, in APIKeyCreateResult.
type APIKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// APIKeyCreateResult carries the one-shot raw key. It has no server-side
// re-read path and must never enter the cache.
type APIKeyCreateResult struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	KeyPrefix string     `json:"key_prefix"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type ConnectionList struct {
	Connections []Connection `json:"connections"`
	Total       int          `json:"total"`
}

type APIKeyList struct {
	APIKeys []APIKey `json:"api_keys"`
	Total   int      `json:"total"`
}

// BillingSummary is derived client-side from the connection list; billable
// connections count toward recurring usage-based charges.
type BillingSummary struct {
	BillableConnections int
	TotalConnections    int
	ByType              map[ConnectionType]int
}
