package sqlstore

import "github.com/goliatone/go-service-dispatch/core"

var (
	_ core.DispatchActivitySink   = (*ActivityStore)(nil)
	_ core.DispatchActivityReader = (*ActivityStore)(nil)
	_ core.DispatchActivityReader = (*CachedActivityReader)(nil)
)
