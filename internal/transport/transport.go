// Package transport defines the contract for pluggable inbound transports.
//
// Each transport (HTTP, gRPC) accepts requests in its own protocol and hands
// them to a Handler. The handler does not care how requests arrive.
package transport

import (
	"context"

	"github.com/nadzzz/proagent/internal/message"
)

// Handler processes requests. *dispatch.Dispatcher implements it.
type Handler interface {
	// Handle runs the full pipeline and always returns a response.
	Handle(ctx context.Context, req *message.Request) *message.Response

	// Resolve runs resolution only.
	Resolve(ctx context.Context, prompt string, files []message.File) message.Call
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and hands them to h.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, h Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
