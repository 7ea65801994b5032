package command

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

const (
	TypeSend        = "dispatch.command.send"
	TypeSetUnsigned = "dispatch.command.unsigned.set"
)

type SendMessage struct {
	Method     string
	Parameters core.Parameters
	Body       []byte
}

func (SendMessage) Type() string { return TypeSend }

func (m SendMessage) Validate() error {
	method := strings.TrimSpace(m.Method)
	if method == "" {
		return core.NewFieldError("command: validation failed", "method", "method is required")
	}
	if strings.ContainsAny(method, " \t\r\n") {
		return core.NewServiceError("command: method must be a single token", goerrors.CategoryBadInput, nil)
	}
	return nil
}

type SetUnsignedMessage struct {
	Unsigned bool
}

func (SetUnsignedMessage) Type() string { return TypeSetUnsigned }

func (SetUnsignedMessage) Validate() error { return nil }
