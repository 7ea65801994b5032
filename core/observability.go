package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type sendObservation struct {
	requestID string
	method    string
	url       string
	signed    bool
	result    *TransportResult
	err       error
}

func (d *RequestDispatcher) observeSend(ctx context.Context, startedAt time.Time, obs sendObservation) {
	if d == nil {
		return
	}
	duration := d.now().Sub(startedAt)
	statusCode := 0
	ok := false
	if obs.result != nil {
		statusCode = obs.result.ResponseStatus
		ok = obs.result.OK
	}
	status := sendStatus(obs.err, ok)

	fields := map[string]any{
		"endpoint":    d.endpoint,
		"method":      obs.method,
		"url":         obs.url,
		"request_id":  obs.requestID,
		"signed":      obs.signed,
		"status_code": statusCode,
		"ok":          ok,
		"status":      string(status),
		"duration_ms": duration.Milliseconds(),
	}
	if obs.err != nil {
		fields["error"] = obs.err.Error()
	}

	tags := sendTags(strings.ToUpper(strings.TrimSpace(obs.method)), status, ok)
	d.recordCounter(ctx, MetricSendTotal, 1, tags)
	d.recordHistogram(ctx, MetricSendDurationMS, float64(duration.Milliseconds()), tags)

	if obs.err != nil {
		d.logError(ctx, "send failed", fields)
	} else {
		d.logInfo(ctx, "send succeeded", fields)
	}

	d.recordActivity(ctx, DispatchActivityEntry{
		RequestID:  obs.requestID,
		Endpoint:   d.endpoint,
		Method:     obs.method,
		URL:        obs.url,
		StatusCode: statusCode,
		OK:         ok,
		Signed:     obs.signed,
		Status:     status,
		Error:      errorText(obs.err),
		DurationMS: duration.Milliseconds(),
		CreatedAt:  startedAt,
	})
}

func sendStatus(err error, ok bool) DispatchActivityStatus {
	switch {
	case err != nil:
		return DispatchActivityStatusFailed
	case ok:
		return DispatchActivityStatusOK
	default:
		return DispatchActivityStatusSoftFail
	}
}

// recordActivity writes to the activity sink. Sink failures are logged and
// never change the outcome of Send.
func (d *RequestDispatcher) recordActivity(ctx context.Context, entry DispatchActivityEntry) {
	if d.activitySink == nil || d.config.Activity.Disabled {
		return
	}
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if err := d.activitySink.Record(ctx, entry); err != nil {
		d.logError(ctx, "record dispatch activity failed", map[string]any{
			"request_id": entry.RequestID,
			"endpoint":   entry.Endpoint,
			"error":      err.Error(),
		})
	}
}

func (d *RequestDispatcher) logInfo(ctx context.Context, message string, fields map[string]any) {
	d.logWithLevel(ctx, "info", message, fields)
}

func (d *RequestDispatcher) logError(ctx context.Context, message string, fields map[string]any) {
	d.logWithLevel(ctx, "error", message, fields)
}

func (d *RequestDispatcher) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if d == nil || d.logger == nil {
		return
	}
	logger := d.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch level {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (d *RequestDispatcher) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	d.metricsRecorder.IncCounter(ctx, name, value, copyTags(tags))
}

func (d *RequestDispatcher) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	d.metricsRecorder.ObserveHistogram(ctx, name, value, copyTags(tags))
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
