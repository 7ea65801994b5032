package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

type recordingDelegate struct {
	mu     sync.Mutex
	header string
	err    error
	calls  []SignRequest
}

func (d *recordingDelegate) Sign(_ context.Context, req SignRequest) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, req)
	if d.err != nil {
		return "", d.err
	}
	return d.header, nil
}

func (d *recordingDelegate) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type stubTransport struct {
	mu       sync.Mutex
	response TransportResponse
	err      error
	calls    []TransportCall
}

func (t *stubTransport) Execute(_ context.Context, call TransportCall) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, call)
	if t.err != nil {
		return TransportResponse{}, t.err
	}
	return t.response, nil
}

func (t *stubTransport) lastCall() TransportCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return TransportCall{}
	}
	return t.calls[len(t.calls)-1]
}

func okResponse(body string) TransportResponse {
	return TransportResponse{StatusCode: 200, Body: []byte(body), Succeeded: true}
}

type recordingSink struct {
	mu      sync.Mutex
	entries []DispatchActivityEntry
	err     error
}

func (s *recordingSink) Record(_ context.Context, entry DispatchActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingSink) snapshot() []DispatchActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DispatchActivityEntry(nil), s.entries...)
}

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := current
		current = current.Add(step)
		return now
	}
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}

func newTestDispatcher(delegate SigningDelegate, transport Transport, endpoint string, options ...Option) (*RequestDispatcher, error) {
	base := []Option{
		WithTransport(transport),
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
	}
	return NewRequestDispatcher(delegate, endpoint, "application/json", append(base, options...)...)
}
