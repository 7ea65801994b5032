package query

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

type LastResultReader interface {
	LastResult() *core.TransportResult
}

type LastResultQuery struct {
	reader LastResultReader
}

func NewLastResultQuery(reader LastResultReader) *LastResultQuery {
	return &LastResultQuery{reader: reader}
}

// Query returns nil with no error before the first completed send.
func (q *LastResultQuery) Query(_ context.Context, _ LastResultMessage) (*core.TransportResult, error) {
	if q == nil || q.reader == nil {
		return nil, core.NewServiceError("query: dispatcher is required", goerrors.CategoryInternal, nil)
	}
	return q.reader.LastResult(), nil
}

type ListDispatchActivityQuery struct {
	reader core.DispatchActivityReader
}

func NewListDispatchActivityQuery(reader core.DispatchActivityReader) *ListDispatchActivityQuery {
	return &ListDispatchActivityQuery{reader: reader}
}

func (q *ListDispatchActivityQuery) Query(
	ctx context.Context,
	msg ListDispatchActivityMessage,
) (core.ActivityPage, error) {
	if q == nil || q.reader == nil {
		return core.ActivityPage{}, core.NewServiceError("query: dispatch activity reader is required", goerrors.CategoryInternal, nil)
	}
	return q.reader.List(ctx, msg.Filter)
}

type GetDispatchActivityQuery struct {
	reader core.DispatchActivityReader
}

func NewGetDispatchActivityQuery(reader core.DispatchActivityReader) *GetDispatchActivityQuery {
	return &GetDispatchActivityQuery{reader: reader}
}

func (q *GetDispatchActivityQuery) Query(
	ctx context.Context,
	msg GetDispatchActivityMessage,
) (core.DispatchActivityEntry, error) {
	if q == nil || q.reader == nil {
		return core.DispatchActivityEntry{}, core.NewServiceError("query: dispatch activity reader is required", goerrors.CategoryInternal, nil)
	}
	return q.reader.Get(ctx, msg.ID)
}
