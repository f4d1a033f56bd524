package runtime

import (
	"unsafe"

	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Tuple is the borrowed view of the argument tuple a native function
// receives from the interpreter. Per the calling convention the arguments
// are borrowed references: the view never takes ownership and nothing read
// through it may be released. Get promotes an element to an owned reference
// when the callee wants to keep it beyond the call.
type Tuple struct {
	ptr unsafe.Pointer
}

// Len returns the number of arguments.
func (t Tuple) Len() int {
	if t.ptr == nil {
		return 0
	}
	return cpython.TupleSize(t.ptr)
}

// Get promotes argument i to a new owned reference the caller must Close.
func (t Tuple) Get(i int) (*Object, error) {
	p, err := t.borrow(i)
	if err != nil {
		return nil, err
	}
	return FromBorrowed(p), nil
}

// Int64 reads argument i as an int64 without taking a reference.
func (t Tuple) Int64(i int) (int64, error) {
	p, err := t.borrow(i)
	if err != nil {
		return 0, err
	}
	return cpython.LongAsInt64(p)
}

// Float64 reads argument i as a float64 without taking a reference.
func (t Tuple) Float64(i int) (float64, error) {
	p, err := t.borrow(i)
	if err != nil {
		return 0, err
	}
	return cpython.FloatAsFloat64(p)
}

// Str reads argument i as a Go string without taking a reference.
func (t Tuple) Str(i int) (string, error) {
	p, err := t.borrow(i)
	if err != nil {
		return "", err
	}
	return cpython.UnicodeAsString(p)
}

// TuplePayload resolves argument i as a native-backed instance of payload type
// T. The shape is unchecked beyond the handle being present; passing an
// instance of a different native type is the caller's bug.
func TuplePayload[T any](t Tuple, i int) (*T, error) {
	p, err := t.borrow(i)
	if err != nil {
		return nil, err
	}
	return payloadFromInstance[T](p)
}

func (t Tuple) borrow(i int) (unsafe.Pointer, error) {
	if t.ptr == nil || i < 0 || i >= t.Len() {
		return nil, errors.InvalidInput(errors.PhaseBoundary, "argument index out of range")
	}
	release := cpython.EnsureGIL()
	defer release()
	p := cpython.TupleGet(t.ptr, i)
	if p == nil {
		return nil, cpython.MustFetchError(errors.PhaseBoundary)
	}
	return p, nil
}

// Func is the plain native-callable flavor. The interpreter's calling
// convention guarantees the lock is already held; the function returns a
// new owned reference (nil is normalized to None).
type Func func(args Tuple) *Object

// FailingFunc is the fallible flavor. The trampoline acquires the lock
// state around the call and, on error, sets the interpreter's pending
// exception from the error's message before returning the null sentinel.
type FailingFunc func(args Tuple) (*Object, error)

func wrapPlain(fn Func) cpython.RawBoundaryFunc {
	return func(raw unsafe.Pointer) (unsafe.Pointer, error) {
		r := fn(Tuple{ptr: raw})
		return stealOrNone(r), nil
	}
}

func wrapFailing(fn FailingFunc) cpython.RawBoundaryFunc {
	return func(raw unsafe.Pointer) (unsafe.Pointer, error) {
		r, err := fn(Tuple{ptr: raw})
		if err != nil {
			if r != nil {
				r.Close()
			}
			return nil, err
		}
		return stealOrNone(r), nil
	}
}

// stealOrNone moves the result's reference out for the interpreter to own,
// substituting None for a missing value so the non-nil result contract
// holds.
func stealOrNone(r *Object) unsafe.Pointer {
	if r == nil || r.Raw() == nil {
		return None().Steal()
	}
	return r.Steal()
}
