package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-service-dispatch/core"
)

var (
	_ gocmd.Commander[SendMessage]        = (*SendCommand)(nil)
	_ gocmd.Commander[SetUnsignedMessage] = (*SetUnsignedCommand)(nil)

	_ Sender        = (*core.RequestDispatcher)(nil)
	_ SigningToggle = (*core.RequestDispatcher)(nil)
)
