package resolve

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/metrics"
	"github.com/nadzzz/proagent/internal/reasoning"
)

// DefaultTimeout bounds one reasoning service call.
const DefaultTimeout = 15 * time.Second

// Failure reasons recorded on degraded calls.
const (
	ReasonUnavailable = "unavailable"
	ReasonRateLimited = "rate_limited"
	ReasonTimeout     = "timeout"
	ReasonRequest     = "request"
)

var tracer = otel.Tracer("proagent.resolve")

// Resolver asks the reasoning service once and falls back to keyword
// resolution on any failure. A Resolver with a nil client always falls back.
// It is safe for concurrent use.
type Resolver struct {
	client  reasoning.Client
	backend string
	catalog *catalog.Catalog
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Resolver) { r.catalog = c }
}

// WithTimeout bounds each reasoning call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRateLimit caps reasoning calls per second. Requests over the limit
// are resolved by the fallback instead of waiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(r *Resolver) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, burst))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver for client, which may be nil.
func New(client reasoning.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:  client,
		catalog: defaultCatalog,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	if client != nil {
		r.backend = reasoning.NameOf(client)
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Catalog returns the catalog calls are resolved against.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Resolve always returns a valid call. When the reasoning tier fails the
// fallback result is returned with Degraded set and the failure recorded.
func (r *Resolver) Resolve(ctx context.Context, prompt string, files []message.File) message.Call {
	ctx, span := tracer.Start(ctx, "resolve.Resolver.Resolve",
		trace.WithAttributes(
			attribute.Int("file_count", len(files)),
			attribute.String("backend", r.backend),
		),
	)
	defer span.End()

	out := r.Reason(ctx, prompt, files)
	if out.OK() {
		call := *out.Call
		span.SetAttributes(
			attribute.String("strategy", string(call.Strategy)),
			attribute.String("function", call.FunctionName),
		)
		metrics.ResolutionsTotal.WithLabelValues(string(call.Strategy), call.FunctionName).Inc()
		return call
	}

	call := FallbackWith(r.catalog, prompt, files)
	call.Degraded = true
	call.DegradedReason = out.Reason
	if out.Proposed != "" && out.Proposed != call.FunctionName {
		call.Substitution = out.Proposed
	}

	metrics.ReasoningFailuresTotal.WithLabelValues(out.Reason).Inc()
	metrics.ResolutionsTotal.WithLabelValues(string(call.Strategy), call.FunctionName).Inc()
	span.SetAttributes(
		attribute.String("strategy", string(call.Strategy)),
		attribute.String("function", call.FunctionName),
		attribute.String("degraded_reason", out.Reason),
	)

	r.logger.Warn("reasoning resolution degraded, using fallback",
		"reason", out.Reason,
		"detail", out.Detail,
		"function", call.FunctionName,
		"substitution", call.Substitution,
		"confidence", call.Confidence,
	)
	return call
}

// Reason runs only the reasoning tier.
func (r *Resolver) Reason(ctx context.Context, prompt string, files []message.File) Outcome {
	if r.client == nil {
		return Unresolved(ReasonUnavailable, "no reasoning backend configured")
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return Unresolved(ReasonRateLimited, "reasoning rate limit exceeded")
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx, span := tracer.Start(callCtx, "resolve.Resolver.Reason")
	defer span.End()

	start := time.Now()
	text, err := r.client.Complete(ctx, buildPrompt(r.catalog, prompt, files))
	metrics.ObserveReasoning(r.backend, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Unresolved(ReasonTimeout, err.Error())
		}
		return Unresolved(ReasonRequest, err.Error())
	}

	call, proposed, err := parseReply(r.catalog, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		out := Unresolved(parseReason(err), err.Error())
		out.Proposed = proposed
		return out
	}

	r.logger.Debug("reasoning resolution succeeded",
		"function", call.FunctionName,
		"confidence", call.Confidence,
		"duration", time.Since(start),
	)
	return Resolved(call)
}

func parseReason(err error) string {
	for _, sentinel := range []error{ErrDecode, ErrUnknownFunction, ErrConfidence, ErrParameters} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrDecode.Error()
}
