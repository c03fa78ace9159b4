package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]            = (*LoginCommand)(nil)
	_ gocmd.Commander[RegisterMessage]         = (*RegisterCommand)(nil)
	_ gocmd.Commander[RefreshMessage]          = (*RefreshCommand)(nil)
	_ gocmd.Commander[LogoutMessage]           = (*LogoutCommand)(nil)
	_ gocmd.Commander[CreateConnectionMessage] = (*CreateConnectionCommand)(nil)
	_ gocmd.Commander[UpdateConnectionMessage] = (*UpdateConnectionCommand)(nil)
	_ gocmd.Commander[DeleteConnectionMessage] = (*DeleteConnectionCommand)(nil)
	_ gocmd.Commander[TriggerSyncMessage]      = (*TriggerSyncCommand)(nil)
	_ gocmd.Commander[BeginLinkMessage]        = (*BeginLinkCommand)(nil)
	_ gocmd.Commander[ResolveLinkMessage]      = (*ResolveLinkCommand)(nil)
	_ gocmd.Commander[CreateAPIKeyMessage]     = (*CreateAPIKeyCommand)(nil)
	_ gocmd.Commander[DeleteAPIKeyMessage]     = (*DeleteAPIKeyCommand)(nil)
	_ gocmd.Commander[ActivateAPIKeyMessage]   = (*ActivateAPIKeyCommand)(nil)
	_ gocmd.Commander[DeactivateAPIKeyMessage] = (*DeactivateAPIKeyCommand)(nil)
)
