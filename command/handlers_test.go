package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

type stubSender struct {
	sendFn func(ctx context.Context, method string, params core.Parameters, body []byte) (*core.TransportResult, error)
}

func (s stubSender) Send(ctx context.Context, method string, params core.Parameters, body []byte) (*core.TransportResult, error) {
	return s.sendFn(ctx, method, params, body)
}

type stubToggle struct {
	unsigned *bool
}

func (s stubToggle) SetUnsigned(unsigned bool) {
	*s.unsigned = unsigned
}

func TestSendCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := &core.TransportResult{RequestURL: "https://host/svc?a=1", ResponseStatus: 200, OK: true}
	called := false
	sender := stubSender{
		sendFn: func(_ context.Context, method string, params core.Parameters, body []byte) (*core.TransportResult, error) {
			called = true
			if method != "POST" {
				t.Fatalf("expected POST, got %q", method)
			}
			if params.Encode() != "a=1" {
				t.Fatalf("unexpected params %q", params.Encode())
			}
			if string(body) != `{"x":1}` {
				t.Fatalf("unexpected body %q", string(body))
			}
			return expected, nil
		},
	}

	collector := gocmd.NewResult[*core.TransportResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err := NewSendCommand(sender).Execute(ctx, SendMessage{
		Method:     "POST",
		Parameters: core.Params("a", "1"),
		Body:       []byte(`{"x":1}`),
	})
	if err != nil {
		t.Fatalf("execute send: %v", err)
	}
	if !called {
		t.Fatalf("expected dispatcher invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result != expected {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSendCommand_ExecuteWithoutCollector(t *testing.T) {
	sender := stubSender{
		sendFn: func(context.Context, string, core.Parameters, []byte) (*core.TransportResult, error) {
			return &core.TransportResult{}, nil
		},
	}
	if err := NewSendCommand(sender).Execute(context.Background(), SendMessage{Method: "GET"}); err != nil {
		t.Fatalf("execute send: %v", err)
	}
}

func TestSendCommand_PropagatesDispatcherError(t *testing.T) {
	sentinel := errors.New("signer unavailable")
	sender := stubSender{
		sendFn: func(context.Context, string, core.Parameters, []byte) (*core.TransportResult, error) {
			return nil, sentinel
		},
	}
	collector := gocmd.NewResult[*core.TransportResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := NewSendCommand(sender).Execute(ctx, SendMessage{Method: "GET"}); err != sentinel {
		t.Fatalf("expected dispatcher error, got %v", err)
	}
	if _, ok := collector.Load(); ok {
		t.Fatalf("expected no stored result on failure")
	}
}

func TestSetUnsignedCommand_Execute(t *testing.T) {
	unsigned := false
	if err := NewSetUnsignedCommand(stubToggle{unsigned: &unsigned}).Execute(context.Background(), SetUnsignedMessage{Unsigned: true}); err != nil {
		t.Fatalf("execute set unsigned: %v", err)
	}
	if !unsigned {
		t.Fatalf("expected dispatcher to be marked unsigned")
	}
}

func TestSendMessage_ValidateReturnsRichError(t *testing.T) {
	err := (SendMessage{}).Validate()
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ServiceErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorBadInput, rich.TextCode)
	}

	err = (SendMessage{Method: "GET POST"}).Validate()
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input envelope, got %v", err)
	}
	if err := (SendMessage{Method: "PATCH"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestCommands_NilDependencyReturnsRichError(t *testing.T) {
	var send *SendCommand
	err := send.Execute(context.Background(), SendMessage{Method: "GET"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}

	err = NewSetUnsignedCommand(nil).Execute(context.Background(), SetUnsignedMessage{})
	if !goerrors.As(err, &rich) || rich.TextCode != core.ServiceErrorInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
}
