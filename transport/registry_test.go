package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

type staticAdapter struct {
	kind string
}

func (a staticAdapter) Kind() string { return a.kind }

func (a staticAdapter) Execute(context.Context, core.TransportCall) (core.TransportResponse, error) {
	return core.TransportResponse{StatusCode: 200, Succeeded: true}, nil
}

func TestRegistry_RegisterGetAndListDeterministic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticAdapter{kind: "soap"}); err != nil {
		t.Fatalf("register soap adapter: %v", err)
	}
	if err := registry.Register(staticAdapter{kind: "REST"}); err != nil {
		t.Fatalf("register rest adapter: %v", err)
	}

	if _, ok := registry.Get("rest"); !ok {
		t.Fatalf("expected rest adapter to be registered")
	}

	listed := registry.List()
	if len(listed) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(listed))
	}
	if listed[0].Kind() != "REST" || listed[1].Kind() != "soap" {
		t.Fatalf("expected deterministic sorted order, got %q and %q", listed[0].Kind(), listed[1].Kind())
	}

	if err := registry.Register(staticAdapter{kind: "rest"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_RegisterFactoryReceivesConfig(t *testing.T) {
	registry := NewRegistry()
	var received core.TransportConfig
	if err := registry.RegisterFactory("custom", func(config core.TransportConfig) (Adapter, error) {
		received = config
		return staticAdapter{kind: "custom"}, nil
	}); err != nil {
		t.Fatalf("register adapter factory: %v", err)
	}

	headers := map[string]string{"X-Tenant": "acme"}
	adapter, err := registry.Build("Custom", core.TransportConfig{Timeout: time.Second, DefaultHeaders: headers})
	if err != nil {
		t.Fatalf("build adapter from factory: %v", err)
	}
	if adapter.Kind() != "custom" {
		t.Fatalf("expected custom adapter from factory, got %q", adapter.Kind())
	}
	if received.Timeout != time.Second || received.DefaultHeaders["X-Tenant"] != "acme" {
		t.Fatalf("expected config passed to factory, got %#v", received)
	}
	received.DefaultHeaders["X-Tenant"] = "changed"
	if headers["X-Tenant"] != "acme" {
		t.Fatalf("expected factory to receive a copy of default headers")
	}
}

func TestRegistry_BuildUnknownKindIsNotFound(t *testing.T) {
	_, err := NewRegistry().Build("ftp", core.TransportConfig{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryNotFound || rich.Code != http.StatusNotFound {
		t.Fatalf("expected not found envelope, got %q/%d", rich.Category, rich.Code)
	}
	if rich.TextCode != core.ServiceErrorNotFound {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorNotFound, rich.TextCode)
	}
}

func TestNewDefaultRegistry_BuildsRESTFromConfig(t *testing.T) {
	registry := NewDefaultRegistry()
	kinds := registry.Kinds()
	if len(kinds) != 1 || kinds[0] != KindREST {
		t.Fatalf("expected only rest kind, got %v", kinds)
	}

	adapter, err := registry.Build(KindREST, core.TransportConfig{
		Kind:                 KindREST,
		Timeout:              2 * time.Second,
		MaxResponseBodyBytes: 64,
		DefaultHeaders:       map[string]string{"User-Agent": "dispatch"},
	})
	if err != nil {
		t.Fatalf("build rest adapter: %v", err)
	}
	rest, ok := adapter.(*RESTAdapter)
	if !ok {
		t.Fatalf("expected *RESTAdapter, got %T", adapter)
	}
	if rest.Timeout != 2*time.Second || rest.MaxResponseBodyBytes != 64 {
		t.Fatalf("expected config applied, got timeout=%s limit=%d", rest.Timeout, rest.MaxResponseBodyBytes)
	}
	if rest.DefaultHeaders["User-Agent"] != "dispatch" {
		t.Fatalf("expected default headers from config")
	}
	if rest.Client != http.DefaultClient {
		t.Fatalf("expected default http client")
	}
}

func TestRegistry_NilRegistryReturnsErrors(t *testing.T) {
	var registry *Registry
	if err := registry.Register(staticAdapter{kind: "rest"}); err == nil {
		t.Fatalf("expected nil registry error")
	}
	if _, err := registry.Build("rest", core.TransportConfig{}); err == nil {
		t.Fatalf("expected nil registry build error")
	}
	if len(registry.List()) != 0 || len(registry.Kinds()) != 0 {
		t.Fatalf("expected empty listings from nil registry")
	}
}
