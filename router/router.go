// Package router glues the pieces together: it parses a caller's raw
// body, extracts routing hints, resolves the target provider via the model
// catalog, detects the caller's source wire format, and dispatches through
// transform/streaming under the retry policy with the right credentials.
package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/braintrustdata/llm-router/adapters"
	"github.com/braintrustdata/llm-router/auth"
	"github.com/braintrustdata/llm-router/catalog"
	"github.com/braintrustdata/llm-router/httpclient"
	"github.com/braintrustdata/llm-router/retry"
	"github.com/braintrustdata/llm-router/streaming"
	"github.com/braintrustdata/llm-router/transform"
)

// ProviderConfig binds a catalog provider format to the concrete upstream
// endpoint and credential needed to dispatch to it.
type ProviderConfig struct {
	// Endpoint is the upstream URL requests for this provider format are
	// sent to.
	Endpoint string
	// Credential supplies the bearer token for this provider format's
	// Authorization header. Mutually exclusive with Signer: exactly one of
	// the two must be set.
	Credential auth.Credential
	// AuthHeader is the header the credential is placed in; defaults to
	// "Authorization" with a "Bearer " prefix when empty. Google's API-key
	// auth instead wants the token in a query parameter or "x-goog-api-key"
	// header; set AuthHeaderRaw to bypass the Bearer prefix.
	AuthHeader    string
	AuthHeaderRaw bool
	// Signer handles catalog.AuthAWSSigV4 provider formats (Bedrock), whose
	// credential is not a bearer token but a signature over the whole
	// outgoing request. When set, it replaces the Credential/AuthHeader
	// path entirely.
	Signer *auth.AWSSigV4
}

// Router is the fully assembled request handler: an adapter registry for
// format detection, a model catalog resolver, per-provider-format
// configuration, a pooled HTTP client, and a retry policy.
type Router struct {
	registry    *adapters.Registry
	catalogRes  catalog.Resolver
	providers   map[string]ProviderConfig
	client      *http.Client
	retryConfig retry.Config
	engine      *streaming.Engine
	tracer      trace.Tracer
	requests    metric.Int64Counter
	latency     metric.Float64Histogram
}

// bundledCatalogResolver adapts catalog's package-level default lookup
// (which may have been swapped via catalog.SetLookup) to the catalog.Resolver
// interface Router holds, so Router always resolves through whatever
// lookup is currently installed rather than freezing the bundled table at
// construction time.
type bundledCatalogResolver struct{}

func (bundledCatalogResolver) Resolve(model string) (catalog.Entry, bool) {
	return catalog.Resolve(model)
}

// Option configures a Router during construction via RouterBuilder.
type Option func(*Router)

// WithClient overrides the process-wide default HTTP client.
func WithClient(c *http.Client) Option {
	return func(r *Router) { r.client = c }
}

// WithCatalog overrides the bundled catalog resolver, e.g. with a Resolver
// fed by a host-managed model table.
func WithCatalog(res catalog.Resolver) Option {
	return func(r *Router) { r.catalogRes = res }
}

// WithRetry overrides the default retry.Config.
func WithRetry(cfg retry.Config) Option {
	return func(r *Router) { r.retryConfig = cfg }
}

// WithProviderConfig registers the endpoint/credential for a catalog
// provider format (e.g. "anthropic", "bedrock_converse").
func WithProviderConfig(format string, cfg ProviderConfig) Option {
	return func(r *Router) { r.providers[format] = cfg }
}

// NewRouter builds a Router around registry, applying any Options. The
// process-wide default HTTP client, the bundled catalog, and
// retry.DefaultConfig() are used unless overridden.
func NewRouter(registry *adapters.Registry, opts ...Option) *Router {
	meter := otel.Meter("github.com/braintrustdata/llm-router/router")
	requests, _ := meter.Int64Counter("llmrouter.requests")
	latency, _ := meter.Float64Histogram("llmrouter.request.duration")
	r := &Router{
		registry:    registry,
		catalogRes:  bundledCatalogResolver{},
		providers:   make(map[string]ProviderConfig),
		client:      httpclient.Default(),
		retryConfig: retry.DefaultConfig(),
		engine:      streaming.NewEngine(),
		tracer:      otel.Tracer("github.com/braintrustdata/llm-router/router"),
		requests:    requests,
		latency:     latency,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RouterBuilder accumulates Options before constructing a Router, for
// callers assembling configuration across several call sites before Router
// exists.
type RouterBuilder struct {
	registry *adapters.Registry
	opts     []Option
}

// NewRouterBuilder starts a RouterBuilder around registry.
func NewRouterBuilder(registry *adapters.Registry) *RouterBuilder {
	return &RouterBuilder{registry: registry}
}

// WithClient overrides the process-wide default HTTP client.
func (b *RouterBuilder) WithClient(c *http.Client) *RouterBuilder {
	b.opts = append(b.opts, WithClient(c))
	return b
}

// WithCatalog overrides the bundled catalog resolver.
func (b *RouterBuilder) WithCatalog(res catalog.Resolver) *RouterBuilder {
	b.opts = append(b.opts, WithCatalog(res))
	return b
}

// WithRetry overrides the default retry.Config.
func (b *RouterBuilder) WithRetry(cfg retry.Config) *RouterBuilder {
	b.opts = append(b.opts, WithRetry(cfg))
	return b
}

// WithProviderConfig registers the endpoint/credential for a catalog
// provider format.
func (b *RouterBuilder) WithProviderConfig(format string, cfg ProviderConfig) *RouterBuilder {
	b.opts = append(b.opts, WithProviderConfig(format, cfg))
	return b
}

// Build constructs the configured Router.
func (b *RouterBuilder) Build() *Router {
	return NewRouter(b.registry, b.opts...)
}

// Result is what Handle produces: either buffered response bytes for a
// non-streaming call, or nothing (the stream was already written to the
// caller-supplied io.Writer).
type Result struct {
	Streaming bool
	Body      []byte
}

// Handle processes one caller request end to end: extract hints, resolve
// the provider, detect the source format, transform the request,
// select credentials, sanitize headers, dispatch under the retry policy,
// and either stream the translated response into streamOut or return the
// transformed response bytes.
func (r *Router) Handle(ctx context.Context, body []byte, headers http.Header, streamOut io.Writer) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "llmrouter.dispatch")
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("llmrouter.request_id", requestID))

	start := time.Now()
	outcome := "error"
	providerFormat := ""
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("llmrouter.provider", providerFormat),
			attribute.String("llmrouter.outcome", outcome),
		)
		r.requests.Add(ctx, 1, attrs)
		r.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	hints, err := ExtractRequestHints(body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("llmrouter.model", hints.Model), attribute.Bool("llmrouter.stream", hints.Stream))

	if hints.Stream && streamOut == nil {
		err := &MalformedRequestError{Reason: "stream:true on a non-streaming call path"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entry, ok := r.catalogRes.Resolve(hints.Model)
	if !ok {
		err := &UnresolvedModelError{Model: hints.Model}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	providerFormat = entry.ProviderFormat

	target, ok := r.registry.Get(entry.ProviderFormat)
	if !ok {
		err := &ProviderNotConfiguredError{Format: entry.ProviderFormat}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	contentTypeHint := headers.Get("Content-Type")
	source, ok := r.registry.Detect(body, contentTypeHint)
	if !ok {
		err := &UnsupportedFormatError{}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pcfg, ok := r.providers[entry.ProviderFormat]
	if !ok {
		err := &ProviderNotConfiguredError{Format: entry.ProviderFormat}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	log.Info(ctx, log.KV{K: "msg", V: "dispatching"}, log.KV{K: "request_id", V: requestID}, log.KV{K: "source", V: source.Name()}, log.KV{K: "target", V: target.Name()}, log.KV{K: "model", V: hints.Model})

	outBody, err := transform.TransformRequest(source, target, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	outHeaders := transform.ClientHeaders(headers)
	outHeaders.Set("Content-Type", "application/json")
	outHeaders.Set("X-Request-Id", requestID)

	var signer *auth.AWSSigV4
	if pcfg.Signer != nil {
		signer = pcfg.Signer
	} else {
		bearer, err := pcfg.Credential.Bearer(ctx)
		if err != nil {
			authErr := &AuthError{Provider: entry.ProviderFormat, Cause: err}
			span.SetStatus(codes.Error, authErr.Error())
			return nil, authErr
		}
		if pcfg.AuthHeaderRaw {
			outHeaders.Set(headerOrDefault(pcfg.AuthHeader, "x-api-key"), bearer)
		} else {
			outHeaders.Set(headerOrDefault(pcfg.AuthHeader, "Authorization"), "Bearer "+bearer)
		}
	}

	resp, err := r.dispatch(ctx, pcfg.Endpoint, outHeaders, outBody, signer)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	if hints.Stream {
		if err := r.engine.Translate(ctx, target, source, resp.Body, streamOut); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		outcome = "ok"
		return &Result{Streaming: true}, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("router: read upstream response: %w", err)
	}
	translated, err := transform.TransformResponse(target, source, respBody)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	outcome = "ok"
	return &Result{Body: translated}, nil
}

func headerOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// dispatch sends req to endpoint under the retry policy, classifying each
// attempt's outcome. A 2xx response is returned to the
// caller; the retry loop consumes and discards the body of every
// non-terminal attempt so the connection can be reused by the pool.
func (r *Router) dispatch(ctx context.Context, endpoint string, headers http.Header, body []byte, signer *auth.AWSSigV4) (*http.Response, error) {
	var final *http.Response
	var lastStatus int
	var lastProviderCode string

	err := retry.Do(ctx, r.retryConfig, func(ctx context.Context, attemptNum int) (retry.Outcome, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return retry.Outcome{}, fmt.Errorf("router: build upstream request: %w", err)
		}
		req.Header = headers.Clone()
		if signer != nil {
			// Signing must happen after headers are set and immediately
			// before send: SigV4 binds the signature to the exact header
			// set and must be recomputed on every retry attempt (the
			// signature's timestamp has a ~15 minute validity window).
			if err := signer.SignRequest(ctx, req, body); err != nil {
				return retry.Outcome{}, fmt.Errorf("router: sign aws request: %w", err)
			}
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return retry.Outcome{Err: err}, nil
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			final = resp
			return retry.Outcome{}, nil
		}

		retryAfter := retry.ParseRetryAfter(resp.Header.Get("Retry-After"))
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		lastStatus = resp.StatusCode
		lastProviderCode = providerErrorCode(resp.Header, errBody)
		return retry.Outcome{
			Err:               fmt.Errorf("upstream status %d: %s", resp.StatusCode, errBody),
			StatusCode:        resp.StatusCode,
			RetryAfter:        retryAfter,
			ProviderErrorCode: lastProviderCode,
		}, nil
	})

	if err != nil {
		if final != nil {
			final.Body.Close()
		}
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			return nil, &UpstreamHTTPError{Status: lastStatus, ProviderErrorKind: lastProviderCode, Message: exhausted.Error(), Retriable: true}
		}
		return nil, &UpstreamHTTPError{Status: lastStatus, ProviderErrorKind: lastProviderCode, Message: err.Error()}
	}
	return final, nil
}

// providerErrorCode extracts a provider's error type/code without a full
// typed unmarshal, checking the shapes used by Anthropic
// ({"error":{"type":"overloaded_error",...}}), OpenAI-family providers
// ({"error":{"code":"rate_limit_exceeded",...}}), and Bedrock's AWS JSON
// protocol exceptions, which carry the exception name in the
// X-Amzn-Errortype response header (and redundantly in an unauthenticated
// "__type" body field, e.g. "ThrottlingException" or
// "com.amazonaws.bedrockruntime#ThrottlingException") rather than in a
// nested "error" object.
func providerErrorCode(headers http.Header, body []byte) string {
	if errType := headers.Get("X-Amzn-Errortype"); errType != "" {
		if i := strings.IndexByte(errType, ':'); i >= 0 {
			errType = errType[:i]
		}
		return errType
	}
	if !gjson.ValidBytes(body) {
		return ""
	}
	if t := gjson.GetBytes(body, "error.type"); t.Exists() {
		return t.String()
	}
	if c := gjson.GetBytes(body, "error.code"); c.Exists() {
		return c.String()
	}
	if t := gjson.GetBytes(body, "__type"); t.Exists() {
		s := t.String()
		if i := strings.LastIndexByte(s, '#'); i >= 0 {
			s = s[i+1:]
		}
		return s
	}
	return ""
}
