package finsnap

import "github.com/finsnap/finsnap-go/core"

type Config = core.Config

type VaultConfig = core.VaultConfig
type SyncConfig = core.SyncConfig

type Session = core.Session
type TokenPair = core.TokenPair
type User = core.User
type Connection = core.Connection
type ConnectionType = core.ConnectionType
type ConnectionStatus = core.ConnectionStatus
type APIKey = core.APIKey
type APIKeyCreateResult = core.APIKeyCreateResult
type BillingSummary = core.BillingSummary
type LinkOutcome = core.LinkOutcome
type LinkOutcomeKind = core.LinkOutcomeKind
type WidgetHandoff = core.WidgetHandoff
type WidgetError = core.WidgetError

type LoginRequest = core.LoginRequest
type RegisterRequest = core.RegisterRequest
type ConnectionCreateRequest = core.ConnectionCreateRequest
type ConnectionUpdateRequest = core.ConnectionUpdateRequest
type LinkTokenCreateRequest = core.LinkTokenCreateRequest
type APIKeyCreateRequest = core.APIKeyCreateRequest

type TokenVault = core.TokenVault
type Transport = core.Transport
type Widget = core.Widget
type Notifier = core.Notifier
type JobEnqueuer = core.JobEnqueuer
type MetricsRecorder = core.MetricsRecorder
type Logger = core.Logger
type LoggerProvider = core.LoggerProvider

func DefaultConfig() Config {
	return core.DefaultConfig()
}
