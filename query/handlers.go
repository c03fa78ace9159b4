package query

import (
	"context"

	"github.com/finsnap/finsnap-go/core"
)

type SessionReader interface {
	Session(ctx context.Context) (core.Session, error)
}

type ConnectionReader interface {
	ListConnections(ctx context.Context) (core.ConnectionList, error)
	GetConnection(ctx context.Context, connectionID string) (core.Connection, error)
}

type APIKeyReader interface {
	ListAPIKeys(ctx context.Context) (core.APIKeyList, error)
}

type BillingReader interface {
	BillingSummary(ctx context.Context) (core.BillingSummary, error)
}

type GetSessionQuery struct {
	reader SessionReader
}

func NewGetSessionQuery(reader SessionReader) *GetSessionQuery {
	return &GetSessionQuery{reader: reader}
}

func (q *GetSessionQuery) Query(ctx context.Context, _ GetSessionMessage) (core.Session, error) {
	if q == nil || q.reader == nil {
		return core.Session{}, queryDependencyError("query: session reader is required")
	}
	return q.reader.Session(ctx)
}

type ListConnectionsQuery struct {
	reader ConnectionReader
}

func NewListConnectionsQuery(reader ConnectionReader) *ListConnectionsQuery {
	return &ListConnectionsQuery{reader: reader}
}

func (q *ListConnectionsQuery) Query(ctx context.Context, _ ListConnectionsMessage) (core.ConnectionList, error) {
	if q == nil || q.reader == nil {
		return core.ConnectionList{}, queryDependencyError("query: connection reader is required")
	}
	return q.reader.ListConnections(ctx)
}

type GetConnectionQuery struct {
	reader ConnectionReader
}

func NewGetConnectionQuery(reader ConnectionReader) *GetConnectionQuery {
	return &GetConnectionQuery{reader: reader}
}

func (q *GetConnectionQuery) Query(ctx context.Context, msg GetConnectionMessage) (core.Connection, error) {
	if q == nil || q.reader == nil {
		return core.Connection{}, queryDependencyError("query: connection reader is required")
	}
	return q.reader.GetConnection(ctx, msg.ConnectionID)
}

type ListAPIKeysQuery struct {
	reader APIKeyReader
}

func NewListAPIKeysQuery(reader APIKeyReader) *ListAPIKeysQuery {
	return &ListAPIKeysQuery{reader: reader}
}

func (q *ListAPIKeysQuery) Query(ctx context.Context, _ ListAPIKeysMessage) (core.APIKeyList, error) {
	if q == nil || q.reader == nil {
		return core.APIKeyList{}, queryDependencyError("query: api key reader is required")
	}
	return q.reader.ListAPIKeys(ctx)
}

type BillingSummaryQuery struct {
	reader BillingReader
}

func NewBillingSummaryQuery(reader BillingReader) *BillingSummaryQuery {
	return &BillingSummaryQuery{reader: reader}
}

func (q *BillingSummaryQuery) Query(ctx context.Context, _ BillingSummaryMessage) (core.BillingSummary, error) {
	if q == nil || q.reader == nil {
		return core.BillingSummary{}, queryDependencyError("query: billing reader is required")
	}
	return q.reader.BillingSummary(ctx)
}
