package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-service-dispatch/core"
)

const KindREST = "rest"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter executes dispatcher calls over net/http. The request URL is used
// verbatim so the query string the signer saw is the one on the wire.
type RESTAdapter struct {
	Client               HTTPDoer
	Timeout              time.Duration
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &RESTAdapter{
		Client:               client,
		Timeout:              core.DefaultTransportTimeout,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: core.DefaultMaxResponseBodyBytes,
	}
}

// NewRESTAdapterFromConfig applies the transport section of the dispatcher
// configuration to a new adapter.
func NewRESTAdapterFromConfig(client HTTPDoer, cfg core.TransportConfig) *RESTAdapter {
	adapter := NewRESTAdapter(client)
	if cfg.Timeout > 0 {
		adapter.Timeout = cfg.Timeout
	}
	if cfg.MaxResponseBodyBytes > 0 {
		adapter.MaxResponseBodyBytes = cfg.MaxResponseBodyBytes
	}
	for key, value := range cfg.DefaultHeaders {
		adapter.DefaultHeaders[key] = value
	}
	return adapter
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Execute(ctx context.Context, call core.TransportCall) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, core.NewServiceError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(call.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := strings.TrimSpace(call.URL)
	if target == "" {
		return core.TransportResponse{}, core.NewServiceError(
			"transport: request url is required",
			goerrors.CategoryBadInput,
			map[string]any{"adapter": KindREST},
		)
	}

	requestCtx := ctx
	cancel := func() {}
	if a.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, a.Timeout)
	}
	defer cancel()

	var body io.Reader = http.NoBody
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}
	httpReq, err := http.NewRequestWithContext(requestCtx, method, target, body)
	if err != nil {
		return core.TransportResponse{}, core.WrapServiceError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			map[string]any{"adapter": KindREST, "method": method, "url": target},
		)
	}
	applyHeaders(httpReq.Header, a.DefaultHeaders)
	applyHeaders(httpReq.Header, call.Headers)
	if call.Body != nil && strings.TrimSpace(call.MediaType) != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", strings.TrimSpace(call.MediaType))
	}
	if call.Authorization != "" {
		httpReq.Header.Set("Authorization", call.Authorization)
	}

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return core.TransportResponse{}, core.WrapServiceError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			map[string]any{"adapter": KindREST, "method": method, "url": target},
		)
	}
	defer httpRes.Body.Close()

	maxBodyBytes := resolveResponseBodyLimit(a.MaxResponseBodyBytes)
	payload, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes+1))
	if err != nil {
		return core.TransportResponse{}, core.WrapServiceError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			map[string]any{"adapter": KindREST, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(payload)) > maxBodyBytes {
		return core.TransportResponse{}, core.NewServiceError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", maxBodyBytes),
			goerrors.CategoryExternal,
			map[string]any{
				"adapter":          KindREST,
				"status_code":      httpRes.StatusCode,
				"response_limit_b": maxBodyBytes,
			},
		)
	}

	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       payload,
		Succeeded:  httpRes.StatusCode >= 200 && httpRes.StatusCode < 300,
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindREST,
			"method":      method,
		},
	}, nil
}

func applyHeaders(target http.Header, headers map[string]string) {
	for key, value := range headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		target.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(adapterLimit int64) int64 {
	if adapterLimit > 0 {
		return adapterLimit
	}
	return core.DefaultMaxResponseBodyBytes
}

var _ Adapter = (*RESTAdapter)(nil)
