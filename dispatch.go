package dispatch

import (
	"slices"

	"github.com/goliatone/go-service-dispatch/core"
	"github.com/goliatone/go-service-dispatch/transport"
)

type Config = core.Config
type TransportConfig = core.TransportConfig
type ActivityConfig = core.ActivityConfig

type Option = core.Option

type RequestDispatcher = core.RequestDispatcher
type TransportResult = core.TransportResult
type Parameters = core.Parameters

type SigningDelegate = core.SigningDelegate
type SigningDelegateFunc = core.SigningDelegateFunc
type SignRequest = core.SignRequest
type Transport = core.Transport
type TransportFunc = core.TransportFunc
type TransportCall = core.TransportCall
type TransportResponse = core.TransportResponse

type DispatchActivityEntry = core.DispatchActivityEntry
type DispatchActivitySink = core.DispatchActivitySink
type DispatchActivityReader = core.DispatchActivityReader
type ActivityFilter = core.ActivityFilter
type ActivityPage = core.ActivityPage

var Params = core.Params

var (
	WithConfig             = core.WithConfig
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithTransport          = core.WithTransport
	WithActivitySink       = core.WithActivitySink
	WithClock              = core.WithClock
	WithRequestIDGenerator = core.WithRequestIDGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// New builds a dispatcher. Without WithTransport the transport is built from
// the resolved transport config through the default adapter registry.
func New(delegate SigningDelegate, endpoint string, mediaType string, opts ...Option) (*RequestDispatcher, error) {
	return NewWithRegistry(transport.NewDefaultRegistry(), delegate, endpoint, mediaType, opts...)
}

// NewWithRegistry is New with a caller supplied adapter registry, for hosts
// that register extra transport kinds.
func NewWithRegistry(
	registry *transport.Registry,
	delegate SigningDelegate,
	endpoint string,
	mediaType string,
	opts ...Option,
) (*RequestDispatcher, error) {
	if core.TransportFromOptions(opts...) != nil {
		return core.NewRequestDispatcher(delegate, endpoint, mediaType, opts...)
	}
	cfg, err := core.ResolveConfig(opts...)
	if err != nil {
		return nil, err
	}
	adapter, err := registry.Build(cfg.Transport.Kind, cfg.Transport)
	if err != nil {
		return nil, err
	}
	resolved := append(slices.Clone(opts), core.WithTransport(adapter))
	return core.NewRequestDispatcher(delegate, endpoint, mediaType, resolved...)
}
