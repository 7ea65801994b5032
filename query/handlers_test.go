package query

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

type stubLastResultReader struct {
	result *core.TransportResult
}

func (s stubLastResultReader) LastResult() *core.TransportResult { return s.result }

type stubActivityReader struct {
	listFn func(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error)
	getFn  func(ctx context.Context, id string) (core.DispatchActivityEntry, error)
}

func (s stubActivityReader) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	return s.listFn(ctx, filter)
}

func (s stubActivityReader) Get(ctx context.Context, id string) (core.DispatchActivityEntry, error) {
	return s.getFn(ctx, id)
}

func TestLastResultQuery_QueryDelegates(t *testing.T) {
	expected := &core.TransportResult{RequestURL: "https://host/svc", OK: true}
	result, err := NewLastResultQuery(stubLastResultReader{result: expected}).Query(context.Background(), LastResultMessage{})
	if err != nil {
		t.Fatalf("query last result: %v", err)
	}
	if result != expected {
		t.Fatalf("unexpected last result: %#v", result)
	}

	result, err = NewLastResultQuery(stubLastResultReader{}).Query(context.Background(), LastResultMessage{})
	if err != nil || result != nil {
		t.Fatalf("expected nil result before first send, got %#v/%v", result, err)
	}
}

func TestListDispatchActivityQuery_QueryDelegates(t *testing.T) {
	okOnly := true
	expected := core.ActivityPage{
		Items: []core.DispatchActivityEntry{
			{ID: "act_1", Endpoint: "https://host/svc", Method: "GET", Status: core.DispatchActivityStatusOK, OK: true},
		},
		Page:    1,
		PerPage: 20,
		Total:   1,
	}
	called := false
	reader := stubActivityReader{
		listFn: func(_ context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
			called = true
			if filter.Endpoint != "https://host/svc" || filter.OK == nil || !*filter.OK {
				t.Fatalf("unexpected filter: %#v", filter)
			}
			return expected, nil
		},
	}

	page, err := NewListDispatchActivityQuery(reader).Query(context.Background(), ListDispatchActivityMessage{
		Filter: core.ActivityFilter{Endpoint: "https://host/svc", OK: &okOnly, Page: 1, PerPage: 20},
	})
	if err != nil {
		t.Fatalf("query activity: %v", err)
	}
	if !called {
		t.Fatalf("expected activity reader invocation")
	}
	if len(page.Items) != 1 || page.Items[0].ID != "act_1" {
		t.Fatalf("unexpected activity page: %#v", page)
	}
}

func TestGetDispatchActivityQuery_QueryDelegates(t *testing.T) {
	reader := stubActivityReader{
		getFn: func(_ context.Context, id string) (core.DispatchActivityEntry, error) {
			if id != "act_9" {
				t.Fatalf("unexpected id %q", id)
			}
			return core.DispatchActivityEntry{ID: id, Status: core.DispatchActivityStatusSoftFail}, nil
		},
	}
	entry, err := NewGetDispatchActivityQuery(reader).Query(context.Background(), GetDispatchActivityMessage{ID: "act_9"})
	if err != nil {
		t.Fatalf("get activity: %v", err)
	}
	if entry.Status != core.DispatchActivityStatusSoftFail {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestMessages_ValidateReturnsRichErrors(t *testing.T) {
	var rich *goerrors.Error

	err := (GetDispatchActivityMessage{}).Validate()
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope, got %v", err)
	}
	if rich.TextCode != core.ServiceErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ServiceErrorBadInput, rich.TextCode)
	}

	err = (ListDispatchActivityMessage{Filter: core.ActivityFilter{PerPage: -1}}).Validate()
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope, got %v", err)
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	err = (ListDispatchActivityMessage{Filter: core.ActivityFilter{From: &from, To: &to}}).Validate()
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input envelope, got %v", err)
	}

	if err := (LastResultMessage{}).Validate(); err != nil {
		t.Fatalf("expected last result message to validate, got %v", err)
	}
}

func TestQueries_NilReaderReturnsRichError(t *testing.T) {
	var rich *goerrors.Error
	_, err := NewListDispatchActivityQuery(nil).Query(context.Background(), ListDispatchActivityMessage{})
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
	_, err = NewGetDispatchActivityQuery(nil).Query(context.Background(), GetDispatchActivityMessage{ID: "x"})
	if !goerrors.As(err, &rich) || rich.TextCode != core.ServiceErrorInternal {
		t.Fatalf("expected internal envelope, got %v", err)
	}
	var last *LastResultQuery
	if _, err := last.Query(context.Background(), LastResultMessage{}); err == nil {
		t.Fatalf("expected dependency error for nil query")
	}
}
