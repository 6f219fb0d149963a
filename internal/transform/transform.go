// Package transform defines the contract every file transformation
// satisfies and the registry that dispatches resolved calls to them.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/nadzzz/proagent/internal/message"
)

// Transformation is one concrete file operation.
//
// Execute must return either a Result with at least one output or an
// *Error. Outputs are written under the output area with names unique to
// the invocation.
type Transformation interface {
	// Name returns the operation id the transformation serves.
	Name() string

	// Execute runs the operation against the given inputs.
	Execute(ctx context.Context, params message.Params, files []message.File) (*Result, error)
}

// Result describes what a transformation produced.
type Result struct {
	// Outputs are artifact paths relative to the output area. The first
	// one is the primary artifact.
	Outputs []string `json:"outputs"`

	// Metadata is operation-specific (ratios, page counts, files modified).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Message is a short human summary.
	Message string `json:"message,omitempty"`
}

// Primary returns the first output, or "" when there is none.
func (r *Result) Primary() string {
	if r == nil || len(r.Outputs) == 0 {
		return ""
	}
	return r.Outputs[0]
}

// Registry maps operation ids to transformations.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Transformation
	log   *slog.Logger
}

// NewRegistry creates a registry holding ts, keyed by their names.
func NewRegistry(ts ...Transformation) *Registry {
	r := &Registry{items: make(map[string]Transformation), log: slog.Default()}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds or replaces t.
func (r *Registry) Register(t Transformation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.Name()] = t
}

// Lookup returns the transformation for name.
func (r *Registry) Lookup(name string) (Transformation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[name]
	return t, ok
}

// Names returns the registered ids in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for n := range r.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute dispatches to the transformation registered under name and
// returns its result unchanged. Every failure comes back as an *Error:
// unstructured errors and panics are classified as processing failures,
// and a result without outputs is treated as a failure.
func (r *Registry) Execute(ctx context.Context, name string, params message.Params, files []message.File) (res *Result, err error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, &Error{Kind: KindUnknownFunction, Op: name, Message: fmt.Sprintf("no transformation registered for %q", name)}
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("transformation panicked", "function", name, "panic", p, "stack", string(debug.Stack()))
			res, err = nil, &Error{Kind: KindProcessingFailure, Op: name, Message: fmt.Sprintf("transformation panicked: %v", p)}
		}
	}()

	res, err = t.Execute(ctx, params, files)
	if err != nil {
		return nil, classify(name, err)
	}
	if res == nil || len(res.Outputs) == 0 {
		return nil, &Error{Kind: KindProcessingFailure, Op: name, Message: "transformation produced no output"}
	}
	return res, nil
}
