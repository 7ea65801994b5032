package gologger

import (
	"strings"

	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// DefaultName is the logger name dispatchers resolve when none is given.
const DefaultName = "dispatch"

// Resolve uses deterministic precedence provider > logger > nop. The returned
// logger is never nil.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	resolvedProvider, resolvedLogger := glog.Resolve(normalizeName(name), provider, logger)
	return resolvedProvider, glog.Ensure(resolvedLogger)
}

// ForEndpoint resolves the named logger and binds the endpoint field when the
// logger supports structured fields.
func ForEndpoint(name string, provider glog.LoggerProvider, logger glog.Logger, endpoint string) glog.Logger {
	_, resolved := Resolve(name, provider, logger)
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return resolved
	}
	if fields, ok := resolved.(glog.FieldsLogger); ok {
		return glog.Ensure(fields.WithFields(map[string]any{"endpoint": endpoint}))
	}
	return resolved
}

// ToJobProvider maps a glog provider to the go-job logger provider contract
// used by workers that run queued dispatch commands.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

func normalizeName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return DefaultName
}
