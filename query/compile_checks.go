package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/finsnap/finsnap-go/core"
)

var (
	_ gocmd.Querier[GetSessionMessage, core.Session]             = (*GetSessionQuery)(nil)
	_ gocmd.Querier[ListConnectionsMessage, core.ConnectionList] = (*ListConnectionsQuery)(nil)
	_ gocmd.Querier[GetConnectionMessage, core.Connection]       = (*GetConnectionQuery)(nil)
	_ gocmd.Querier[ListAPIKeysMessage, core.APIKeyList]         = (*ListAPIKeysQuery)(nil)
	_ gocmd.Querier[BillingSummaryMessage, core.BillingSummary]  = (*BillingSummaryQuery)(nil)
)
