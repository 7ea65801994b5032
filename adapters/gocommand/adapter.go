package gocommand

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

const textCodeRegistry = "GOCOMMAND_REGISTRY_ERROR"

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return registryError("gocommand: message must implement Type() string", goerrors.CategoryBadInput)
	}
	if strings.TrimSpace(m.Type()) == "" {
		return registryError("gocommand: message type is required", goerrors.CategoryBadInput)
	}
	return nil
}

// RegistryAdapter wraps a go-command registry so dispatch commands and queries
// can be registered, resolved and mirrored into a go-job queue registry.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if !a.configured() {
		return errRegistryNotConfigured()
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if !a.configured() {
		return errRegistryNotConfigured()
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if !a.configured() {
		return errRegistryNotConfigured()
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors every registered command into queueRegistry during
// Initialize so go-job workers can execute queued sends.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return registryError("gocommand: queue registry is required", goerrors.CategoryBadInput)
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if !a.configured() {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if !a.configured() {
		return errRegistryNotConfigured()
	}
	return a.registry.Initialize()
}

func (a *RegistryAdapter) configured() bool {
	return a != nil && a.registry != nil
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe registers cmd and subscribes it to the global
// dispatcher. The subscription is released when registration fails.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if !adapter.configured() {
		return nil, errRegistryNotConfigured()
	}
	if cmd == nil {
		return nil, registryError("gocommand: command is required", goerrors.CategoryBadInput)
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if !adapter.configured() {
		return nil, errRegistryNotConfigured()
	}
	if qry == nil {
		return nil, registryError("gocommand: query is required", goerrors.CategoryBadInput)
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func errRegistryNotConfigured() error {
	return registryError("gocommand: registry is not configured", goerrors.CategoryInternal)
}

func registryError(message string, category goerrors.Category) error {
	code := http.StatusInternalServerError
	if category == goerrors.CategoryBadInput {
		code = http.StatusBadRequest
	}
	return goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCodeRegistry)
}
