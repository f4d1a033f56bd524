package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseInit      Phase = "init"      // interpreter initialization
	PhaseConvert   Phase = "convert"   // Go to Python or Python to Go
	PhaseAttr      Phase = "attr"      // attribute access
	PhaseItem      Phase = "item"      // item/subscript access
	PhaseCall      Phase = "call"      // calling Python objects
	PhaseOperator  Phase = "operator"  // arithmetic/comparison dispatch
	PhaseIterate   Phase = "iterate"   // iteration protocol
	PhaseTypeBuild Phase = "typebuild" // native type/module creation
	PhaseBoundary  Phase = "boundary"  // Python calling back into Go
	PhaseEval      Phase = "eval"      // source evaluation
)

// Kind categorizes the error
type Kind string

const (
	KindPythonException Kind = "python_exception"
	KindArityMismatch   Kind = "arity_mismatch"
	KindTypeMismatch    Kind = "type_mismatch"
	KindOverflow        Kind = "overflow"
	KindNotInitialized  Kind = "not_initialized"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
	KindABIRejected     Kind = "abi_rejected"
	KindInternal        Kind = "internal"
)

// Error is the structured error type used throughout the binding layer
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	PyType string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.GoType != "" || e.PyType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.PyType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Python type ")
			b.WriteString(e.PyType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("Python type ")
			b.WriteString(e.PyType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.PyType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// PyType sets the Python type name (exception class for bridged errors)
func (b *Builder) PyType(t string) *Builder {
	b.err.PyType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// PythonException wraps a fetched interpreter exception. pyType is the
// exception class name ("ValueError"), detail its rendered message.
func PythonException(phase Phase, pyType, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPythonException,
		PyType: pyType,
		Detail: detail,
	}
}

// Arity creates an argument-count mismatch error, mirroring the
// interpreter's own message convention.
func Arity(phase Phase, callee string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArityMismatch,
		Detail: fmt.Sprintf("%s() takes %d positional arguments but %d were given", callee, want, got),
		Value:  got,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, goType, pyType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		GoType: goType,
		PyType: pyType,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// NotInitialized creates a not-initialized error for a missing runtime
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// ABIRejected is returned when the interpreter refuses a type spec or
// module definition this layer constructed.
func ABIRejected(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseTypeBuild,
		Kind:   KindABIRejected,
		Detail: what,
		Cause:  cause,
	}
}

// Internal flags a broken invariant inside this layer, not a failure of
// the embedded program.
func Internal(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
