package core

import (
	"context"
	"maps"
)

// Metric names emitted once per Send. Both carry method, status and ok tags.
const (
	MetricSendTotal      = "dispatch.send.total"
	MetricSendDurationMS = "dispatch.send.duration_ms"
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

func sendTags(method string, status DispatchActivityStatus, ok bool) map[string]string {
	tags := map[string]string{
		"method": method,
		"status": string(status),
		"ok":     "false",
	}
	if ok {
		tags["ok"] = "true"
	}
	return tags
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return map[string]string{}
	}
	return maps.Clone(tags)
}
