package transform

import (
	"errors"
	"fmt"
)

// Kind classifies a transformation failure.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindProcessingFailure Kind = "processing_failure"
	KindUnknownFunction   Kind = "unknown_function"
)

var (
	// ErrInvalidInput matches errors caused by missing or wrong-type files
	// or an absent required parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProcessingFailure matches errors where the underlying format
	// library or service rejected the content.
	ErrProcessingFailure = errors.New("processing failure")

	// ErrUnknownFunction matches dispatch of an id with no registered transformation.
	ErrUnknownFunction = errors.New("unknown function")
)

// Error is the only error type transformations return.
type Error struct {
	Kind    Kind
	Op      string // operation id
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrProcessingFailure:
		return e.Kind == KindProcessingFailure
	case ErrUnknownFunction:
		return e.Kind == KindUnknownFunction
	}
	return false
}

// InvalidInput builds an invalid_input error.
func InvalidInput(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// ProcessingFailure builds a processing_failure error wrapping err.
func ProcessingFailure(op string, err error, format string, args ...any) *Error {
	return &Error{Kind: KindProcessingFailure, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, treating anything that is not an *Error
// as a processing failure.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindProcessingFailure
}

// classify makes sure err is an *Error for op.
func classify(op string, err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		if te.Op == "" {
			cp := *te
			cp.Op = op
			return &cp
		}
		return te
	}
	return &Error{Kind: KindProcessingFailure, Op: op, Message: "transformation failed", Err: err}
}
