// Package errors provides structured error types for the python-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: Go/Python type names, the offending value,
// and a cause chain. Bridged interpreter exceptions carry only the exception class
// name and rendered message text; no structured exception hierarchy crosses the
// ABI boundary.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		GoType("string").
//		PyType("int").
//		Detail("cannot convert int to string").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.PythonException(errors.PhaseCall, "ValueError", "bad input")
//	err := errors.Arity(errors.PhaseBoundary, "Point", 0, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
