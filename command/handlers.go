package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

// Sender is the dispatcher surface used by the send command.
type Sender interface {
	Send(ctx context.Context, method string, params core.Parameters, body []byte) (*core.TransportResult, error)
}

type SigningToggle interface {
	SetUnsigned(unsigned bool)
}

type SendCommand struct {
	sender Sender
}

func NewSendCommand(sender Sender) *SendCommand {
	return &SendCommand{sender: sender}
}

// Execute stores the *core.TransportResult in the go-command result collector
// when one is attached to ctx.
func (c *SendCommand) Execute(ctx context.Context, msg SendMessage) error {
	if c == nil || c.sender == nil {
		return core.NewServiceError("command: dispatcher is required", goerrors.CategoryInternal, nil)
	}
	out, err := c.sender.Send(ctx, msg.Method, msg.Parameters, msg.Body)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetUnsignedCommand struct {
	toggle SigningToggle
}

func NewSetUnsignedCommand(toggle SigningToggle) *SetUnsignedCommand {
	return &SetUnsignedCommand{toggle: toggle}
}

func (c *SetUnsignedCommand) Execute(_ context.Context, msg SetUnsignedMessage) error {
	if c == nil || c.toggle == nil {
		return core.NewServiceError("command: dispatcher is required", goerrors.CategoryInternal, nil)
	}
	c.toggle.SetUnsigned(msg.Unsigned)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
