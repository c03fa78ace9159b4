package command

import (
	"strings"

	"github.com/finsnap/finsnap-go/core"
)

const (
	TypeLogin            = "finsnap.command.auth.login"
	TypeRegister         = "finsnap.command.auth.register"
	TypeRefresh          = "finsnap.command.auth.refresh"
	TypeLogout           = "finsnap.command.auth.logout"
	TypeCreateConnection = "finsnap.command.connection.create"
	TypeUpdateConnection = "finsnap.command.connection.update"
	TypeDeleteConnection = "finsnap.command.connection.delete"
	TypeTriggerSync      = "finsnap.command.connection.sync"
	TypeBeginLink        = "finsnap.command.link.begin"
	TypeResolveLink      = "finsnap.command.link.resolve"
	TypeCreateAPIKey     = "finsnap.command.api_key.create"
	TypeDeleteAPIKey     = "finsnap.command.api_key.delete"
	TypeActivateAPIKey   = "finsnap.command.api_key.activate"
	TypeDeactivateAPIKey = "finsnap.command.api_key.deactivate"
)

type LoginMessage struct {
	Request core.LoginRequest
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	return commandWrapValidation(m.Request.Validate(), "command: login payload invalid")
}

type RegisterMessage struct {
	Request core.RegisterRequest
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	return commandWrapValidation(m.Request.Validate(), "command: register payload invalid")
}

type RefreshMessage struct{}

func (RefreshMessage) Type() string { return TypeRefresh }

func (RefreshMessage) Validate() error { return nil }

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type CreateConnectionMessage struct {
	Request core.ConnectionCreateRequest
}

func (CreateConnectionMessage) Type() string { return TypeCreateConnection }

func (m CreateConnectionMessage) Validate() error {
	return commandWrapValidation(m.Request.Validate(), "command: connection payload invalid")
}

type UpdateConnectionMessage struct {
	ConnectionID string
	Request      core.ConnectionUpdateRequest
}

func (UpdateConnectionMessage) Type() string { return TypeUpdateConnection }

func (m UpdateConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return nil
}

type DeleteConnectionMessage struct {
	ConnectionID string
	Confirm      bool
}

func (DeleteConnectionMessage) Type() string { return TypeDeleteConnection }

func (m DeleteConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return nil
}

type TriggerSyncMessage struct {
	ConnectionID string
}

func (TriggerSyncMessage) Type() string { return TypeTriggerSync }

func (m TriggerSyncMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return nil
}

type BeginLinkMessage struct {
	Request core.LinkTokenCreateRequest
}

func (BeginLinkMessage) Type() string { return TypeBeginLink }

func (m BeginLinkMessage) Validate() error {
	return commandWrapValidation(m.Request.Validate(), "command: link payload invalid")
}

type ResolveLinkMessage struct {
	SessionID string
	Outcome   core.LinkOutcome
}

func (ResolveLinkMessage) Type() string { return TypeResolveLink }

func (m ResolveLinkMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return commandValidationError("session_id", "widget session id is required")
	}
	return nil
}

type CreateAPIKeyMessage struct {
	Request core.APIKeyCreateRequest
}

func (CreateAPIKeyMessage) Type() string { return TypeCreateAPIKey }

func (m CreateAPIKeyMessage) Validate() error {
	return commandWrapValidation(m.Request.Validate(), "command: api key payload invalid")
}

type DeleteAPIKeyMessage struct {
	KeyID string
}

func (DeleteAPIKeyMessage) Type() string { return TypeDeleteAPIKey }

func (m DeleteAPIKeyMessage) Validate() error {
	if strings.TrimSpace(m.KeyID) == "" {
		return commandValidationError("key_id", "api key id is required")
	}
	return nil
}

type ActivateAPIKeyMessage struct {
	KeyID string
}

func (ActivateAPIKeyMessage) Type() string { return TypeActivateAPIKey }

func (m ActivateAPIKeyMessage) Validate() error {
	if strings.TrimSpace(m.KeyID) == "" {
		return commandValidationError("key_id", "api key id is required")
	}
	return nil
}

type DeactivateAPIKeyMessage struct {
	KeyID string
}

func (DeactivateAPIKeyMessage) Type() string { return TypeDeactivateAPIKey }

func (m DeactivateAPIKeyMessage) Validate() error {
	if strings.TrimSpace(m.KeyID) == "" {
		return commandValidationError("key_id", "api key id is required")
	}
	return nil
}
