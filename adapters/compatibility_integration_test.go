package adapters_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-service-dispatch/adapters/gocommand"
	"github.com/goliatone/go-service-dispatch/adapters/gologger"
	dispatchcommand "github.com/goliatone/go-service-dispatch/command"
	"github.com/goliatone/go-service-dispatch/core"
	dispatchquery "github.com/goliatone/go-service-dispatch/query"
)

func TestRuntimeCompatibility_SendThroughCommandBusAndQueueMirror(t *testing.T) {
	ctx := context.Background()

	provider := &compatProvider{logger: compatLogger{}}
	resolvedProvider, resolvedLogger, jobProvider, jobLogger := gologger.ResolveForJob("dispatch", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	var seen core.TransportCall
	transport := core.TransportFunc(func(_ context.Context, call core.TransportCall) (core.TransportResponse, error) {
		seen = call
		return core.TransportResponse{StatusCode: 200, Body: []byte(`{"id":7}`), Succeeded: true}, nil
	})
	dispatcher, err := core.NewRequestDispatcher(
		core.StaticHeaderDelegate("Bearer abc"),
		"https://api.example.test/items",
		"application/json",
		core.WithTransport(transport),
		core.WithLoggerProvider(resolvedProvider),
		core.WithLogger(resolvedLogger),
	)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	sendSub, err := gocommand.RegisterAndSubscribe(adapter, dispatchcommand.NewSendCommand(dispatcher))
	if err != nil {
		t.Fatalf("register send command: %v", err)
	}
	defer sendSub.Unsubscribe()
	lastSub, err := gocommand.RegisterAndSubscribeQuery(adapter, dispatchquery.NewLastResultQuery(dispatcher))
	if err != nil {
		t.Fatalf("register last result query: %v", err)
	}
	defer lastSub.Unsubscribe()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize adapter: %v", err)
	}
	if _, ok := queueRegistry.Get(dispatchcommand.TypeSend); !ok {
		t.Fatalf("expected send command mirrored into go-job queue registry")
	}

	msg := dispatchcommand.SendMessage{Method: "GET", Parameters: core.Params("page", "2")}
	if err := gocommand.ValidateMessageContract(msg); err != nil {
		t.Fatalf("validate send message: %v", err)
	}
	if err := gocommand.Dispatch(ctx, msg); err != nil {
		t.Fatalf("dispatch send: %v", err)
	}
	if seen.URL != "https://api.example.test/items?page=2" || seen.Authorization != "Bearer abc" {
		t.Fatalf("unexpected transport call %#v", seen)
	}

	last, err := gocommand.Query[dispatchquery.LastResultMessage, *core.TransportResult](ctx, dispatchquery.LastResultMessage{})
	if err != nil {
		t.Fatalf("query last result: %v", err)
	}
	if last == nil || !last.OK {
		t.Fatalf("expected decoded last result, got %#v", last)
	}
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }
