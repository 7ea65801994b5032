package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// RequestDispatcher sends requests to a single service endpoint, signing each
// one through the configured SigningDelegate unless it is marked unsigned.
//
// Every Send returns its own result. LastResult is a convenience cache of the
// most recent one; concurrent senders race on which result it holds, so
// callers sharing a dispatcher should keep the value Send returns.
type RequestDispatcher struct {
	endpoint  string
	mediaType string
	delegate  SigningDelegate
	transport Transport

	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	activitySink    DispatchActivitySink
	now             func() time.Time
	requestID       func() string

	mu       sync.RWMutex
	unsigned bool
	last     *TransportResult
}

func NewRequestDispatcher(
	delegate SigningDelegate,
	endpoint string,
	mediaType string,
	options ...Option,
) (*RequestDispatcher, error) {
	builder := defaultDispatcherBuilder()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	if delegate == nil {
		return nil, badInputError("core: signing delegate is required", nil)
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, badInputError("core: endpoint is required", nil)
	}
	if builder.transport == nil {
		return nil, badInputError("core: transport is required", map[string]any{"endpoint": endpoint})
	}

	cfg, err := builder.resolveConfig()
	if err != nil {
		return nil, err
	}

	provider, logger := glog.Resolve(cfg.ServiceName, builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(cfg.ServiceName); named != nil {
			logger = glog.Ensure(named)
		}
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	return &RequestDispatcher{
		endpoint:        endpoint,
		mediaType:       mediaType,
		delegate:        delegate,
		transport:       builder.transport,
		config:          cfg,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		activitySink:    builder.activitySink,
		now:             builder.now,
		requestID:       builder.requestID,
		unsigned:        cfg.Unsigned,
	}, nil
}

func (d *RequestDispatcher) Endpoint() string {
	if d == nil {
		return ""
	}
	return d.endpoint
}

func (d *RequestDispatcher) MediaType() string {
	if d == nil {
		return ""
	}
	return d.mediaType
}

func (d *RequestDispatcher) Config() Config {
	if d == nil {
		return Config{}
	}
	return d.config
}

func (d *RequestDispatcher) Logger() Logger {
	if d == nil {
		return nil
	}
	return d.logger
}

func (d *RequestDispatcher) LoggerProvider() LoggerProvider {
	if d == nil {
		return nil
	}
	return d.loggerProvider
}

func (d *RequestDispatcher) ActivitySink() DispatchActivitySink {
	if d == nil {
		return nil
	}
	return d.activitySink
}

// SetUnsigned toggles signing. Unsigned requests never reach the delegate and
// carry no Authorization header.
func (d *RequestDispatcher) SetUnsigned(unsigned bool) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.unsigned = unsigned
	d.mu.Unlock()
}

func (d *RequestDispatcher) Unsigned() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.unsigned
}

// LastResult returns the result of the most recent Send that reached the
// transport, failed exchanges included, or nil.
func (d *RequestDispatcher) LastResult() *TransportResult {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Send issues one request. Signing and transport errors are returned as the
// collaborator produced them. A signing failure leaves LastResult untouched;
// a transport failure still records a result with no response status and OK
// set to false, returned alongside the error. An empty or undecodable
// response body is not an error: the returned result has OK set to false and
// no ParsedBody.
func (d *RequestDispatcher) Send(
	ctx context.Context,
	method string,
	params Parameters,
	body []byte,
) (result *TransportResult, err error) {
	if d == nil {
		return nil, badInputError("core: request dispatcher is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startedAt := d.now()
	requestID := d.nextRequestID()
	target := AppendQuery(d.endpoint, params)
	signed := !d.Unsigned()
	defer func() {
		d.observeSend(ctx, startedAt, sendObservation{
			requestID: requestID,
			method:    method,
			url:       target,
			signed:    signed,
			result:    result,
			err:       err,
		})
	}()

	authorization := ""
	if signed {
		authorization, err = d.delegate.Sign(ctx, SignRequest{
			URL:       target,
			Method:    method,
			MediaType: d.mediaType,
			Body:      body,
		})
		if err != nil {
			return nil, err
		}
	}

	call := TransportCall{
		URL:           target,
		Method:        method,
		Body:          body,
		Authorization: authorization,
		MediaType:     d.mediaType,
		Headers:       d.requestHeaders(authorization, body),
	}
	raw, err := d.transport.Execute(ctx, call)
	result = &TransportResult{
		RequestID:      requestID,
		RequestURL:     target,
		RequestMethod:  method,
		RequestBody:    body,
		RequestHeaders: call.Headers,
		SentAt:         startedAt,
	}
	if err == nil {
		result.ResponseStatus = raw.StatusCode
		result.ResponseHeaders = raw.Headers
		result.ResponseBody = raw.Body
		if raw.Succeeded && len(raw.Body) > 0 {
			result.ParsedBody, result.OK = decodeBody(raw.Body)
		}
	}
	result.Duration = d.now().Sub(startedAt)

	d.mu.Lock()
	d.last = result
	d.mu.Unlock()
	return result, err
}

// requestHeaders is the header set handed to the transport and echoed on the
// result.
func (d *RequestDispatcher) requestHeaders(authorization string, body []byte) map[string]string {
	headers := make(map[string]string, len(d.config.Transport.DefaultHeaders)+3)
	for key, value := range d.config.Transport.DefaultHeaders {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			headers[http.CanonicalHeaderKey(trimmed)] = strings.TrimSpace(value)
		}
	}
	if accept := strings.TrimSpace(d.config.Accept); accept != "" {
		headers["Accept"] = accept
	}
	if body != nil && strings.TrimSpace(d.mediaType) != "" {
		headers["Content-Type"] = strings.TrimSpace(d.mediaType)
	}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	return headers
}

func (d *RequestDispatcher) nextRequestID() string {
	if d.requestID == nil {
		return ""
	}
	return d.requestID()
}

// decodeBody never fails loudly: malformed JSON and a literal null both
// report ok=false.
func decodeBody(body []byte) (any, bool) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false
	}
	if decoded == nil {
		return nil, false
	}
	return decoded, true
}
