package finsnap

import (
	"fmt"

	finsnapcommand "github.com/finsnap/finsnap-go/command"
	finsnapquery "github.com/finsnap/finsnap-go/query"
)

// CommandQueryService is the full read/write surface the facade wraps.
// *Client satisfies it.
type CommandQueryService interface {
	finsnapcommand.MutatingService
	finsnapquery.SessionReader
	finsnapquery.ConnectionReader
	finsnapquery.APIKeyReader
	finsnapquery.BillingReader
}

type Commands struct {
	Login            *finsnapcommand.LoginCommand
	Register         *finsnapcommand.RegisterCommand
	Refresh          *finsnapcommand.RefreshCommand
	Logout           *finsnapcommand.LogoutCommand
	CreateConnection *finsnapcommand.CreateConnectionCommand
	UpdateConnection *finsnapcommand.UpdateConnectionCommand
	DeleteConnection *finsnapcommand.DeleteConnectionCommand
	TriggerSync      *finsnapcommand.TriggerSyncCommand
	BeginLink        *finsnapcommand.BeginLinkCommand
	ResolveLink      *finsnapcommand.ResolveLinkCommand
	CreateAPIKey     *finsnapcommand.CreateAPIKeyCommand
	DeleteAPIKey     *finsnapcommand.DeleteAPIKeyCommand
	ActivateAPIKey   *finsnapcommand.ActivateAPIKeyCommand
	DeactivateAPIKey *finsnapcommand.DeactivateAPIKeyCommand
}

type Queries struct {
	GetSession      *finsnapquery.GetSessionQuery
	ListConnections *finsnapquery.ListConnectionsQuery
	GetConnection   *finsnapquery.GetConnectionQuery
	ListAPIKeys     *finsnapquery.ListAPIKeysQuery
	BillingSummary  *finsnapquery.BillingSummaryQuery
}

// Facade exposes the client as go-command commands and queries so hosts can
// route FinSnap operations through their dispatcher.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("finsnap: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Login:            finsnapcommand.NewLoginCommand(service),
		Register:         finsnapcommand.NewRegisterCommand(service),
		Refresh:          finsnapcommand.NewRefreshCommand(service),
		Logout:           finsnapcommand.NewLogoutCommand(service),
		CreateConnection: finsnapcommand.NewCreateConnectionCommand(service),
		UpdateConnection: finsnapcommand.NewUpdateConnectionCommand(service),
		DeleteConnection: finsnapcommand.NewDeleteConnectionCommand(service),
		TriggerSync:      finsnapcommand.NewTriggerSyncCommand(service),
		BeginLink:        finsnapcommand.NewBeginLinkCommand(service),
		ResolveLink:      finsnapcommand.NewResolveLinkCommand(service),
		CreateAPIKey:     finsnapcommand.NewCreateAPIKeyCommand(service),
		DeleteAPIKey:     finsnapcommand.NewDeleteAPIKeyCommand(service),
		ActivateAPIKey:   finsnapcommand.NewActivateAPIKeyCommand(service),
		DeactivateAPIKey: finsnapcommand.NewDeactivateAPIKeyCommand(service),
	}
	facade.queries = Queries{
		GetSession:      finsnapquery.NewGetSessionQuery(service),
		ListConnections: finsnapquery.NewListConnectionsQuery(service),
		GetConnection:   finsnapquery.NewGetConnectionQuery(service),
		ListAPIKeys:     finsnapquery.NewListAPIKeysQuery(service),
		BillingSummary:  finsnapquery.NewBillingSummaryQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Client)(nil)
