// Package reasoning defines the boundary to the external reasoning service
// used for intent resolution.
package reasoning

import (
	"context"
	"errors"
)

// Client sends one prompt to a reasoning service and returns its free-text
// reply. Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by clients that report a backend name for logs
// and metrics.
type Named interface {
	Name() string
}

// Func adapts a function to Client.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyReply is returned by backends when the service answered without text.
var ErrEmptyReply = errors.New("reasoning service returned an empty reply")

// NameOf returns c's backend name, or "custom".
func NameOf(c Client) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "custom"
}
