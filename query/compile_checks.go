package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-service-dispatch/core"
)

var (
	_ gocmd.Querier[LastResultMessage, *core.TransportResult]               = (*LastResultQuery)(nil)
	_ gocmd.Querier[ListDispatchActivityMessage, core.ActivityPage]         = (*ListDispatchActivityQuery)(nil)
	_ gocmd.Querier[GetDispatchActivityMessage, core.DispatchActivityEntry] = (*GetDispatchActivityQuery)(nil)

	_ LastResultReader = (*core.RequestDispatcher)(nil)
)
