package query

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

const (
	TypeLastResult           = "dispatch.query.last_result"
	TypeListDispatchActivity = "dispatch.query.activity.list"
	TypeGetDispatchActivity  = "dispatch.query.activity.get"
)

type LastResultMessage struct{}

func (LastResultMessage) Type() string { return TypeLastResult }

func (LastResultMessage) Validate() error { return nil }

type ListDispatchActivityMessage struct {
	Filter core.ActivityFilter
}

func (ListDispatchActivityMessage) Type() string { return TypeListDispatchActivity }

func (m ListDispatchActivityMessage) Validate() error {
	if m.Filter.Page < 0 {
		return core.NewFieldError("query: validation failed", "page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return core.NewFieldError("query: validation failed", "per_page", "per_page must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return core.NewServiceError("query: activity range end precedes start", goerrors.CategoryBadInput, nil)
	}
	return nil
}

type GetDispatchActivityMessage struct {
	ID string
}

func (GetDispatchActivityMessage) Type() string { return TypeGetDispatchActivity }

func (m GetDispatchActivityMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return core.NewFieldError("query: validation failed", "id", "activity id is required")
	}
	return nil
}
