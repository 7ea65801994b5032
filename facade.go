package dispatch

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-service-dispatch/adapters/gocommand"
	"github.com/goliatone/go-service-dispatch/adapters/gologger"
	dispatchcommand "github.com/goliatone/go-service-dispatch/command"
	"github.com/goliatone/go-service-dispatch/core"
	dispatchquery "github.com/goliatone/go-service-dispatch/query"
)

// QueueResolverKey names the resolver MirrorToQueue adds to the registry.
const QueueResolverKey = "dispatch.queue"

type Commands struct {
	Send        *dispatchcommand.SendCommand
	SetUnsigned *dispatchcommand.SetUnsignedCommand
}

type Queries struct {
	LastResult   *dispatchquery.LastResultQuery
	ListActivity *dispatchquery.ListDispatchActivityQuery
	GetActivity  *dispatchquery.GetDispatchActivityQuery
}

// Facade groups the go-command handlers for one dispatcher.
type Facade struct {
	dispatcher *core.RequestDispatcher
	commands   Commands
	queries    Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	activityReader core.DispatchActivityReader
}

func WithActivityReader(reader core.DispatchActivityReader) FacadeOption {
	return func(options *facadeOptions) {
		options.activityReader = reader
	}
}

// NewFacade wires command and query handlers. Activity queries read from
// WithActivityReader, falling back to the dispatcher's activity sink when it
// can also read.
func NewFacade(dispatcher *core.RequestDispatcher, opts ...FacadeOption) (*Facade, error) {
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatch: request dispatcher is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.activityReader
	if reader == nil {
		reader, _ = dispatcher.ActivitySink().(core.DispatchActivityReader)
	}

	return &Facade{
		dispatcher: dispatcher,
		commands: Commands{
			Send:        dispatchcommand.NewSendCommand(dispatcher),
			SetUnsigned: dispatchcommand.NewSetUnsignedCommand(dispatcher),
		},
		queries: Queries{
			LastResult:   dispatchquery.NewLastResultQuery(dispatcher),
			ListActivity: dispatchquery.NewListDispatchActivityQuery(reader),
			GetActivity:  dispatchquery.NewGetDispatchActivityQuery(reader),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Dispatcher() *core.RequestDispatcher {
	if f == nil {
		return nil
	}
	return f.dispatcher
}

// RegisterWith registers and subscribes every handler on adapter. On failure
// the subscriptions made so far are released.
func (f *Facade) RegisterWith(adapter *gocommand.RegistryAdapter) ([]commanddispatcher.Subscription, error) {
	if f == nil {
		return nil, fmt.Errorf("dispatch: facade is nil")
	}
	subscriptions := make([]commanddispatcher.Subscription, 0, 5)
	keep := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			for _, existing := range subscriptions {
				existing.Unsubscribe()
			}
			subscriptions = nil
			return err
		}
		subscriptions = append(subscriptions, sub)
		return nil
	}

	if err := keep(gocommand.RegisterAndSubscribe(adapter, f.commands.Send)); err != nil {
		return nil, err
	}
	if err := keep(gocommand.RegisterAndSubscribe(adapter, f.commands.SetUnsigned)); err != nil {
		return nil, err
	}
	if err := keep(gocommand.RegisterAndSubscribeQuery(adapter, f.queries.LastResult)); err != nil {
		return nil, err
	}
	if err := keep(gocommand.RegisterAndSubscribeQuery(adapter, f.queries.ListActivity)); err != nil {
		return nil, err
	}
	if err := keep(gocommand.RegisterAndSubscribeQuery(adapter, f.queries.GetActivity)); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

// MirrorToQueue adds a resolver that copies every command registered on
// adapter into queue, so go-job workers can run queued sends. Call it before
// the adapter is initialized.
func (f *Facade) MirrorToQueue(adapter *gocommand.RegistryAdapter, queue *jobqueuecommand.Registry) error {
	if f == nil {
		return fmt.Errorf("dispatch: facade is nil")
	}
	if adapter.HasResolver(QueueResolverKey) {
		return nil
	}
	return adapter.AddQueueResolver(QueueResolverKey, queue)
}

// JobLoggers bridges the dispatcher's logger to go-job workers, bound to the
// dispatcher endpoint.
func (f *Facade) JobLoggers() (job.LoggerProvider, job.Logger) {
	if f == nil || f.dispatcher == nil {
		return nil, nil
	}
	provider := f.dispatcher.LoggerProvider()
	logger := gologger.ForEndpoint(
		f.dispatcher.Config().ServiceName,
		provider,
		f.dispatcher.Logger(),
		f.dispatcher.Endpoint(),
	)
	return gologger.ToJobProvider(provider), gologger.ToJobLogger(logger)
}
