package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type SignRequest struct {
	URL       string
	Method    string
	MediaType string
	Body      []byte
}

// SigningDelegate produces the authorization header value for an outbound
// request. Failures are returned to the Send caller unmodified.
type SigningDelegate interface {
	Sign(ctx context.Context, req SignRequest) (string, error)
}

type SigningDelegateFunc func(ctx context.Context, req SignRequest) (string, error)

func (f SigningDelegateFunc) Sign(ctx context.Context, req SignRequest) (string, error) {
	return f(ctx, req)
}

type TransportCall struct {
	URL           string
	Method        string
	Body          []byte
	Authorization string
	MediaType     string
	Headers       map[string]string
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Succeeded  bool
	Metadata   map[string]any
}

// Transport performs the network exchange. Connectivity, TLS and timeout
// problems are reported through the error; an unsuccessful HTTP status is a
// regular response with Succeeded set to false.
type Transport interface {
	Execute(ctx context.Context, call TransportCall) (TransportResponse, error)
}

type TransportFunc func(ctx context.Context, call TransportCall) (TransportResponse, error)

func (f TransportFunc) Execute(ctx context.Context, call TransportCall) (TransportResponse, error) {
	return f(ctx, call)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type DispatchActivitySink interface {
	Record(ctx context.Context, entry DispatchActivityEntry) error
}

type DispatchActivityReader interface {
	List(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
	Get(ctx context.Context, id string) (DispatchActivityEntry, error)
}

type ActivityFilter struct {
	Endpoint string
	Method   string
	OK       *bool
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}

type ActivityPage struct {
	Items      []DispatchActivityEntry
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}
