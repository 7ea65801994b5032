package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
	"github.com/google/uuid"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type dispatcherBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	transport       Transport
	activitySink    DispatchActivitySink
	now             func() time.Time
	requestID       func() string
}

type Option func(*dispatcherBuilder)

func WithConfig(cfg Config) Option {
	return func(b *dispatcherBuilder) {
		b.runtimeConfig = cfg
	}
}

func WithLogger(logger Logger) Option {
	return func(b *dispatcherBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *dispatcherBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *dispatcherBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *dispatcherBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *dispatcherBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *dispatcherBuilder) {
		b.optionsResolver = resolver
	}
}

func WithTransport(transport Transport) Option {
	return func(b *dispatcherBuilder) {
		b.transport = transport
	}
}

func WithActivitySink(sink DispatchActivitySink) Option {
	return func(b *dispatcherBuilder) {
		b.activitySink = sink
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *dispatcherBuilder) {
		b.now = now
	}
}

func WithRequestIDGenerator(generate func() string) Option {
	return func(b *dispatcherBuilder) {
		b.requestID = generate
	}
}

// TransportFromOptions returns the transport set through WithTransport, or nil.
func TransportFromOptions(options ...Option) Transport {
	builder := dispatcherBuilder{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	return builder.transport
}

func defaultDispatcherBuilder() dispatcherBuilder {
	loggerProvider, logger := glog.Resolve(defaultServiceName, nil, nil)
	return dispatcherBuilder{
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now:             func() time.Time { return time.Now().UTC() },
		requestID:       uuid.NewString,
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

// ResolveConfig runs the provider and resolver pipeline used by the
// dispatcher constructor. Callers that need the effective configuration
// before constructing a dispatcher (for example to build a transport) use it
// with the same options.
func ResolveConfig(options ...Option) (Config, error) {
	builder := defaultDispatcherBuilder()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	return builder.resolveConfig()
}

func (b *dispatcherBuilder) resolveConfig() (Config, error) {
	if b.errorMapper == nil {
		b.errorMapper = defaultErrorMapper
	}
	if b.configProvider == nil {
		b.configProvider = NewCfgxConfigProvider(nil)
	}
	if b.optionsResolver == nil {
		b.optionsResolver = GoOptionsResolver{}
	}
	defaults := DefaultConfig()
	loaded, err := b.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return Config{}, mapBuildError(b.errorMapper, err)
	}
	resolved, err := b.optionsResolver.Resolve(defaults, loaded, b.runtimeConfig)
	if err != nil {
		return Config{}, mapBuildError(b.errorMapper, err)
	}
	return resolved, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfig returns a loader serving a fixed raw configuration map.
func StaticConfig(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Unsigned {
		layer["unsigned"] = cfg.Unsigned
	}
	if includeZero || strings.TrimSpace(cfg.Accept) != "" {
		layer["accept"] = cfg.Accept
	}

	transport := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Transport.Kind) != "" {
		transport["kind"] = cfg.Transport.Kind
	}
	if includeZero || cfg.Transport.Timeout > 0 {
		transport["timeout"] = cfg.Transport.Timeout
	}
	if includeZero || cfg.Transport.MaxResponseBodyBytes > 0 {
		transport["max_response_body_bytes"] = cfg.Transport.MaxResponseBodyBytes
	}
	if includeZero || len(cfg.Transport.DefaultHeaders) > 0 {
		headers := make(map[string]any, len(cfg.Transport.DefaultHeaders))
		for key, value := range cfg.Transport.DefaultHeaders {
			headers[key] = value
		}
		transport["default_headers"] = headers
	}
	if len(transport) > 0 {
		layer["transport"] = transport
	}

	if includeZero || cfg.Activity.Disabled {
		layer["activity"] = map[string]any{
			"disabled": cfg.Activity.Disabled,
		}
	}
	return layer
}
