package resolve

import "github.com/nadzzz/proagent/internal/message"

// Outcome is the result of the reasoning tier: either a resolved call or
// the reason it could not produce one.
type Outcome struct {
	Call *message.Call

	// Reason is a short failure kind when Call is nil (metric label safe).
	Reason string

	// Detail is the human-readable failure description.
	Detail string

	// Proposed is the function name the service proposed, when it proposed
	// one that was rejected.
	Proposed string
}

// Resolved wraps a valid call.
func Resolved(call message.Call) Outcome {
	return Outcome{Call: &call}
}

// Unresolved records why the reasoning tier failed.
func Unresolved(reason, detail string) Outcome {
	return Outcome{Reason: reason, Detail: detail}
}

// OK reports whether the outcome carries a call.
func (o Outcome) OK() bool { return o.Call != nil }
