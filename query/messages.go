package query

import (
	"strings"
)

const (
	TypeGetSession     = "finsnap.query.session.get"
	TypeListConnection = "finsnap.query.connection.list"
	TypeGetConnection  = "finsnap.query.connection.get"
	TypeListAPIKeys    = "finsnap.query.api_key.list"
	TypeBillingSummary = "finsnap.query.billing.summary"
)

type GetSessionMessage struct{}

func (GetSessionMessage) Type() string { return TypeGetSession }

func (GetSessionMessage) Validate() error { return nil }

type ListConnectionsMessage struct{}

func (ListConnectionsMessage) Type() string { return TypeListConnection }

func (ListConnectionsMessage) Validate() error { return nil }

type GetConnectionMessage struct {
	ConnectionID string
}

func (GetConnectionMessage) Type() string { return TypeGetConnection }

func (m GetConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return queryValidationError("connection_id", "connection id is required")
	}
	return nil
}

type ListAPIKeysMessage struct{}

func (ListAPIKeysMessage) Type() string { return TypeListAPIKeys }

func (ListAPIKeysMessage) Validate() error { return nil }

type BillingSummaryMessage struct{}

func (BillingSummaryMessage) Type() string { return TypeBillingSummary }

func (BillingSummaryMessage) Validate() error { return nil }
