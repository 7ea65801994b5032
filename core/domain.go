package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TransportResult is the normalized record of one request/response cycle.
// ParsedBody is set only when the response body was non-empty and decoded;
// OK reports exactly that, together with transport success.
type TransportResult struct {
	RequestID       string
	RequestURL      string
	RequestMethod   string
	RequestBody     []byte
	RequestHeaders  map[string]string
	ResponseStatus  int
	ResponseHeaders map[string]string
	ResponseBody    []byte
	ParsedBody      any
	OK              bool
	SentAt          time.Time
	Duration        time.Duration
}

// Succeeded reports whether the response carried a 2xx status.
func (r *TransportResult) Succeeded() bool {
	if r == nil {
		return false
	}
	return r.ResponseStatus >= http.StatusOK && r.ResponseStatus < http.StatusMultipleChoices
}

// DecodeInto decodes the raw response body into target. It fails when the
// result did not carry a decodable body.
func (r *TransportResult) DecodeInto(target any) error {
	if r == nil || !r.OK {
		return fmt.Errorf("core: result has no decoded body")
	}
	if err := json.Unmarshal(r.ResponseBody, target); err != nil {
		return fmt.Errorf("core: decode response body: %w", err)
	}
	return nil
}

type DispatchActivityStatus string

const (
	DispatchActivityStatusOK       DispatchActivityStatus = "ok"
	DispatchActivityStatusSoftFail DispatchActivityStatus = "soft_failure"
	DispatchActivityStatusFailed   DispatchActivityStatus = "failed"
)

type DispatchActivityEntry struct {
	ID         string
	RequestID  string
	Endpoint   string
	Method     string
	URL        string
	StatusCode int
	OK         bool
	Signed     bool
	Status     DispatchActivityStatus
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}
