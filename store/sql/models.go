package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type dispatchActivityRecord struct {
	bun.BaseModel `bun:"table:dispatch_activity_entries,alias:dae"`

	ID         string    `bun:"id,pk"`
	RequestID  string    `bun:"request_id,notnull"`
	Endpoint   string    `bun:"endpoint,notnull"`
	Method     string    `bun:"method,notnull"`
	URL        string    `bun:"url,notnull"`
	StatusCode int       `bun:"status_code,notnull"`
	OK         bool      `bun:"ok,notnull"`
	Signed     bool      `bun:"signed,notnull"`
	Status     string    `bun:"status,notnull"`
	Error      string    `bun:"error_text"`
	DurationMS int64     `bun:"duration_ms,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
