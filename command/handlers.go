package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/finsnap/finsnap-go/core"
)

// MutatingService is the write surface of the FinSnap client. The root
// client satisfies it; commands stay thin delegates so hosts can route
// them through a go-command dispatcher.
type MutatingService interface {
	Login(ctx context.Context, req core.LoginRequest) (core.Session, error)
	Register(ctx context.Context, req core.RegisterRequest) (core.Session, error)
	Refresh(ctx context.Context) (core.TokenPair, error)
	Logout(ctx context.Context) error
	CreateConnection(ctx context.Context, req core.ConnectionCreateRequest) (core.Connection, error)
	UpdateConnection(ctx context.Context, connectionID string, req core.ConnectionUpdateRequest) (core.Connection, error)
	DeleteConnection(ctx context.Context, connectionID string, confirm bool) error
	TriggerSync(ctx context.Context, connectionID string) (core.MessageResponse, error)
	BeginLink(ctx context.Context, req core.LinkTokenCreateRequest) (string, error)
	ResolveLink(ctx context.Context, sessionID string, outcome core.LinkOutcome) error
	CreateAPIKey(ctx context.Context, req core.APIKeyCreateRequest) (core.APIKeyCreateResult, error)
	DeleteAPIKey(ctx context.Context, keyID string) error
	ActivateAPIKey(ctx context.Context, keyID string) error
	DeactivateAPIKey(ctx context.Context, keyID string) error
}

type LoginCommand struct {
	service MutatingService
}

func NewLoginCommand(service MutatingService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: login service is required")
	}
	out, err := c.service.Login(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterCommand struct {
	service MutatingService
}

func NewRegisterCommand(service MutatingService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register service is required")
	}
	out, err := c.service.Register(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RefreshCommand struct {
	service MutatingService
}

func NewRefreshCommand(service MutatingService) *RefreshCommand {
	return &RefreshCommand{service: service}
}

func (c *RefreshCommand) Execute(ctx context.Context, _ RefreshMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refresh service is required")
	}
	out, err := c.service.Refresh(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type LogoutCommand struct {
	service MutatingService
}

func NewLogoutCommand(service MutatingService) *LogoutCommand {
	return &LogoutCommand{service: service}
}

func (c *LogoutCommand) Execute(ctx context.Context, _ LogoutMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: logout service is required")
	}
	return c.service.Logout(ctx)
}

type CreateConnectionCommand struct {
	service MutatingService
}

func NewCreateConnectionCommand(service MutatingService) *CreateConnectionCommand {
	return &CreateConnectionCommand{service: service}
}

func (c *CreateConnectionCommand) Execute(ctx context.Context, msg CreateConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	out, err := c.service.CreateConnection(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateConnectionCommand struct {
	service MutatingService
}

func NewUpdateConnectionCommand(service MutatingService) *UpdateConnectionCommand {
	return &UpdateConnectionCommand{service: service}
}

func (c *UpdateConnectionCommand) Execute(ctx context.Context, msg UpdateConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	out, err := c.service.UpdateConnection(ctx, msg.ConnectionID, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteConnectionCommand struct {
	service MutatingService
}

func NewDeleteConnectionCommand(service MutatingService) *DeleteConnectionCommand {
	return &DeleteConnectionCommand{service: service}
}

func (c *DeleteConnectionCommand) Execute(ctx context.Context, msg DeleteConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	return c.service.DeleteConnection(ctx, msg.ConnectionID, msg.Confirm)
}

type TriggerSyncCommand struct {
	service MutatingService
}

func NewTriggerSyncCommand(service MutatingService) *TriggerSyncCommand {
	return &TriggerSyncCommand{service: service}
}

func (c *TriggerSyncCommand) Execute(ctx context.Context, msg TriggerSyncMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sync service is required")
	}
	out, err := c.service.TriggerSync(ctx, msg.ConnectionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type BeginLinkCommand struct {
	service MutatingService
}

func NewBeginLinkCommand(service MutatingService) *BeginLinkCommand {
	return &BeginLinkCommand{service: service}
}

func (c *BeginLinkCommand) Execute(ctx context.Context, msg BeginLinkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	sessionID, err := c.service.BeginLink(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, sessionID)
	return nil
}

type ResolveLinkCommand struct {
	service MutatingService
}

func NewResolveLinkCommand(service MutatingService) *ResolveLinkCommand {
	return &ResolveLinkCommand{service: service}
}

func (c *ResolveLinkCommand) Execute(ctx context.Context, msg ResolveLinkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	return c.service.ResolveLink(ctx, msg.SessionID, msg.Outcome)
}

type CreateAPIKeyCommand struct {
	service MutatingService
}

func NewCreateAPIKeyCommand(service MutatingService) *CreateAPIKeyCommand {
	return &CreateAPIKeyCommand{service: service}
}

func (c *CreateAPIKeyCommand) Execute(ctx context.Context, msg CreateAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: api key service is required")
	}
	out, err := c.service.CreateAPIKey(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteAPIKeyCommand struct {
	service MutatingService
}

func NewDeleteAPIKeyCommand(service MutatingService) *DeleteAPIKeyCommand {
	return &DeleteAPIKeyCommand{service: service}
}

func (c *DeleteAPIKeyCommand) Execute(ctx context.Context, msg DeleteAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: api key service is required")
	}
	return c.service.DeleteAPIKey(ctx, msg.KeyID)
}

type ActivateAPIKeyCommand struct {
	service MutatingService
}

func NewActivateAPIKeyCommand(service MutatingService) *ActivateAPIKeyCommand {
	return &ActivateAPIKeyCommand{service: service}
}

func (c *ActivateAPIKeyCommand) Execute(ctx context.Context, msg ActivateAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: api key service is required")
	}
	return c.service.ActivateAPIKey(ctx, msg.KeyID)
}

type DeactivateAPIKeyCommand struct {
	service MutatingService
}

func NewDeactivateAPIKeyCommand(service MutatingService) *DeactivateAPIKeyCommand {
	return &DeactivateAPIKeyCommand{service: service}
}

func (c *DeactivateAPIKeyCommand) Execute(ctx context.Context, msg DeactivateAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: api key service is required")
	}
	return c.service.DeactivateAPIKey(ctx, msg.KeyID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
