// Package dispatch implements the request pipeline.
//
// The dispatcher resolves a prompt into a call, runs the call through the
// transformation registry and shapes the single response returned to the
// caller. The caller always receives a response: failures are reported in
// it, never as a returned error, and a failed response never references an
// artifact.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/metrics"
	"github.com/nadzzz/proagent/internal/transform"
)

var tracer = otel.Tracer("proagent.dispatch")

// Resolver turns a prompt into a call. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, prompt string, files []message.File) message.Call
}

// Executor runs a resolved call.
type Executor interface {
	Execute(ctx context.Context, name string, params message.Params, files []message.File) (*transform.Result, error)
}

// Dispatcher is the central pipeline.
type Dispatcher struct {
	resolver Resolver
	executor Executor
	logger   *slog.Logger
}

// New creates a Dispatcher. A nil logger uses slog.Default().
func New(resolver Resolver, executor Executor, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{resolver: resolver, executor: executor, logger: logger}
}

// Resolve runs resolution only, without executing anything.
func (d *Dispatcher) Resolve(ctx context.Context, prompt string, files []message.File) message.Call {
	return d.resolver.Resolve(ctx, prompt, files)
}

// Handle processes a single request through the full pipeline.
func (d *Dispatcher) Handle(ctx context.Context, req *message.Request) *message.Response {
	if req == nil {
		req = &message.Request{}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	start := time.Now()
	logger := d.logger.With("request_id", req.ID)

	ctx, span := tracer.Start(ctx, "dispatch.Dispatcher.Handle",
		trace.WithAttributes(
			attribute.String("request_id", req.ID),
			attribute.Int("file_count", len(req.Files)),
		),
	)
	defer span.End()

	logger.Info("dispatch started", "files", len(req.Files), "prompt_length", len(req.Prompt))

	call := d.resolver.Resolve(ctx, req.Prompt, req.Files)
	span.SetAttributes(
		attribute.String("function", call.FunctionName),
		attribute.String("strategy", string(call.Strategy)),
		attribute.Bool("degraded", call.Degraded),
	)
	logger.Info("call resolved",
		"function", call.FunctionName,
		"strategy", call.Strategy,
		"confidence", call.Confidence,
		"degraded", call.Degraded,
	)

	// Caller cancellation does not reach an in-flight transformation.
	execStart := time.Now()
	res, err := d.executor.Execute(context.WithoutCancel(ctx), call.FunctionName, call.Parameters, req.Files)
	metrics.DispatchDuration.WithLabelValues(call.FunctionName).Observe(time.Since(execStart).Seconds())

	if err != nil {
		kind := transform.KindOf(err)
		metrics.DispatchTotal.WithLabelValues(call.FunctionName, string(kind)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("transformation failed",
			"function", call.FunctionName,
			"error_kind", kind,
			"error", err,
			"duration", time.Since(start),
		)
		return failure(req.ID, call, err)
	}

	metrics.DispatchTotal.WithLabelValues(call.FunctionName, "success").Inc()
	logger.Info("dispatch complete",
		"function", call.FunctionName,
		"output", res.Primary(),
		"outputs", len(res.Outputs),
		"duration", time.Since(start),
	)
	return success(req.ID, call, res)
}

func success(id string, call message.Call, res *transform.Result) *message.Response {
	meta := make(map[string]any, len(res.Metadata)+3)
	for k, v := range res.Metadata {
		meta[k] = v
	}
	meta["outputs"] = res.Outputs
	if call.Degraded {
		meta["degraded_reason"] = call.DegradedReason
		if call.Substitution != "" {
			meta["substitution"] = call.Substitution
		}
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("Successfully executed %s", call.FunctionName)
	}
	return &message.Response{
		RequestID:    id,
		Success:      true,
		Message:      msg,
		OutputPath:   res.Primary(),
		FunctionUsed: call.FunctionName,
		Confidence:   call.Confidence,
		Strategy:     call.Strategy,
		Degraded:     call.Degraded,
		Metadata:     meta,
	}
}

func failure(id string, call message.Call, err error) *message.Response {
	msg := err.Error()
	var te *transform.Error
	if errors.As(err, &te) && te.Message != "" {
		msg = te.Message
	}
	return &message.Response{
		RequestID:    id,
		Success:      false,
		Message:      msg,
		FunctionUsed: call.FunctionName,
		Confidence:   call.Confidence,
		Strategy:     call.Strategy,
		Degraded:     call.Degraded,
		ErrorKind:    string(transform.KindOf(err)),
		ErrorDetails: err.Error(),
	}
}
