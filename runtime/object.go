package runtime

import (
	"unsafe"

	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Object is an owning, reference-counted handle to one interpreter object.
// A non-nil pointer always represents one reference count unit this handle
// owns; Close releases it exactly once. Two Objects pointing at the same
// interpreter object are independent owners, each entitled to one release.
//
// The zero Object is the null state: Close and Steal are no-ops on it, and
// it is what a handle becomes after Steal moves its reference out.
type Object struct {
	ptr unsafe.Pointer
}

// FromOwned takes ownership of an already-owned raw pointer without
// altering the reference count.
func FromOwned(p unsafe.Pointer) *Object {
	return &Object{ptr: p}
}

// FromBorrowed promotes a borrowed raw pointer: it increments the count and
// takes ownership of the new unit. The lender keeps its own reference.
func FromBorrowed(p unsafe.Pointer) *Object {
	if p != nil {
		cpython.IncRef(p)
	}
	return &Object{ptr: p}
}

// Clone returns a second independent owner of the same interpreter object.
func (o *Object) Clone() *Object {
	if o == nil || o.ptr == nil {
		return &Object{}
	}
	cpython.IncRef(o.ptr)
	return &Object{ptr: o.ptr}
}

// Close releases this handle's reference count unit and nulls the handle.
// Safe to call on the null state and safe to call twice, from any goroutine.
func (o *Object) Close() {
	if o == nil || o.ptr == nil {
		return
	}
	cpython.DecRef(o.ptr)
	o.ptr = nil
}

// Steal moves the owned reference out, leaving the handle in the null state
// so its eventual Close is a no-op. The caller becomes responsible for the
// reference count unit.
func (o *Object) Steal() unsafe.Pointer {
	if o == nil {
		return nil
	}
	p := o.ptr
	o.ptr = nil
	return p
}

// Raw returns the wrapped pointer as a borrowed view; ownership stays with
// the handle.
func (o *Object) Raw() unsafe.Pointer {
	if o == nil {
		return nil
	}
	return o.ptr
}

// IsNone reports whether the handle wraps the None singleton.
func (o *Object) IsNone() bool {
	return o != nil && o.ptr != nil && o.ptr == cpython.NoneSingleton()
}

// Is reports pointer identity, bypassing dispatch entirely.
func (o *Object) Is(other *Object) bool {
	if o == nil || other == nil {
		return false
	}
	return o.ptr == other.ptr
}

// Equal delegates to the objects' own equality operation. Equality is a
// total function on handles, so a failing underlying call is treated as a
// programming error: it trips the assertion hook and compares unequal
// instead of propagating.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil || o.ptr == nil || other.ptr == nil {
		return false
	}
	eq, err := cpython.RichCompareEq(o.ptr, other.ptr)
	if err != nil {
		cpython.AssertFailed("equality dispatch failed: " + err.Error())
		return false
	}
	return eq
}

// HashValue returns the interpreter hash of the object. Hashing is total by
// contract; failure trips the assertion hook and yields zero.
func (o *Object) HashValue() int64 {
	if err := o.nullGuard(errors.PhaseOperator); err != nil {
		cpython.AssertFailed(err.Error())
		return 0
	}
	h, err := cpython.Hash(o.ptr)
	if err != nil {
		cpython.AssertFailed("hash dispatch failed: " + err.Error())
		return 0
	}
	return h
}

// String renders str(o). The intermediate string object produced by the
// conversion call never escapes. Rendering failures trip the assertion hook
// and yield an empty string, keeping fmt.Stringer total.
func (o *Object) String() string {
	if o == nil || o.ptr == nil {
		return "<null>"
	}
	s, err := cpython.Str(o.ptr)
	if err != nil {
		cpython.AssertFailed("str dispatch failed: " + err.Error())
		return ""
	}
	defer cpython.DecRef(s)
	text, err := cpython.UnicodeAsString(s)
	if err != nil {
		cpython.AssertFailed("str decode failed: " + err.Error())
		return ""
	}
	return text
}

// TypeName returns the interpreter-level type name of the object.
func (o *Object) TypeName() string {
	if o == nil || o.ptr == nil {
		return "<null>"
	}
	return cpython.TypeName(o.ptr)
}

// AsInt64 converts the object to an int64, bridging overflow and type
// failures.
func (o *Object) AsInt64() (int64, error) {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return 0, err
	}
	return cpython.LongAsInt64(o.ptr)
}

// AsFloat64 converts the object to a float64 through the numeric protocol.
func (o *Object) AsFloat64() (float64, error) {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return 0, err
	}
	return cpython.FloatAsFloat64(o.ptr)
}

// AsString copies a str object into a Go string. Non-str objects bridge the
// interpreter's TypeError; use String for display rendering.
func (o *Object) AsString() (string, error) {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return "", err
	}
	return cpython.UnicodeAsString(o.ptr)
}

// AsBool evaluates the object's truthiness.
func (o *Object) AsBool() (bool, error) {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return false, err
	}
	return cpython.IsTrue(o.ptr)
}

// AsBytes copies a bytes object into a Go slice.
func (o *Object) AsBytes() ([]byte, error) {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return nil, err
	}
	return cpython.BytesAsSlice(o.ptr)
}

func (o *Object) nullGuard(phase errors.Phase) error {
	if o == nil || o.ptr == nil {
		return errors.InvalidInput(phase, "operation on null object reference")
	}
	return nil
}
