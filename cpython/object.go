package cpython

/*
#include <stdlib.h>

#include "shim.h"
*/
import "C"

import (
	"unsafe"

	"github.com/wippyai/python-runtime/errors"
)

// The functions in this file are thin wrappers over the interpreter's C
// entry points, expressed in unsafe.Pointer so the high-level package never
// sees a C type. Each wrapper acquires the lock state for the duration of
// the call (recursion-safe when the caller already holds it), does exactly
// one call plus error-state bridging, and releases. Ownership of the
// returned pointer follows the entry point's documented convention and is
// noted per function.

// IncRef adds one reference count unit to p.
func IncRef(p unsafe.Pointer) {
	release := EnsureGIL()
	defer release()
	C.Py_IncRef((*C.PyObject)(p))
}

// DecRef releases one reference count unit.
func DecRef(p unsafe.Pointer) {
	release := EnsureGIL()
	defer release()
	C.Py_DecRef((*C.PyObject)(p))
}

// RefCount returns p's current reference count. Test instrumentation only;
// the value is stale the moment it is read.
func RefCount(p unsafe.Pointer) int64 {
	release := EnsureGIL()
	defer release()
	return int64(C.pyrunRefCount((*C.PyObject)(p)))
}

// NoneSingleton returns the None singleton as a borrowed pointer.
func NoneSingleton() unsafe.Pointer {
	return unsafe.Pointer(C.pyrunNone())
}

// TypeName returns the runtime type name of the object p.
func TypeName(p unsafe.Pointer) string {
	release := EnsureGIL()
	defer release()
	return C.GoString(C.pyrunTypeName((*C.PyObject)(p)))
}

// typeObjectName returns the tp_name of a type object (not an instance).
// The caller holds the lock.
func typeObjectName(tp unsafe.Pointer) string {
	return C.GoString(C.pyrunTypeObjectName((*C.PyObject)(tp)))
}

// Scalar constructors. Each returns a new owned reference or nil with the
// error state set.

func NewLong(v int64) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyLong_FromLongLong(C.longlong(v)))
}

// NewLongUnsigned covers the upper half of the uint64 range; interpreter
// ints are unbounded, so no Go unsigned value is out of range.
func NewLongUnsigned(v uint64) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyLong_FromUnsignedLongLong(C.ulonglong(v)))
}

func NewFloat(v float64) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyFloat_FromDouble(C.double(v)))
}

func NewBool(v bool) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	var l C.long
	if v {
		l = 1
	}
	return unsafe.Pointer(C.PyBool_FromLong(l))
}

func NewString(s string) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return unsafe.Pointer(C.PyUnicode_FromStringAndSize(cs, C.Py_ssize_t(len(s))))
}

func NewBytes(b []byte) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	var cb *C.char
	if len(b) > 0 {
		cb = (*C.char)(unsafe.Pointer(&b[0]))
	}
	return unsafe.Pointer(C.PyBytes_FromStringAndSize(cb, C.Py_ssize_t(len(b))))
}

// Scalar accessors.

// LongAsInt64 converts a numeric object to int64, bridging overflow and
// type failures.
func LongAsInt64(p unsafe.Pointer) (int64, error) {
	release := EnsureGIL()
	defer release()
	v := C.PyLong_AsLongLong((*C.PyObject)(p))
	if v == -1 && ErrorOccurred() {
		return 0, FetchError(errors.PhaseConvert)
	}
	return int64(v), nil
}

func FloatAsFloat64(p unsafe.Pointer) (float64, error) {
	release := EnsureGIL()
	defer release()
	v := C.PyFloat_AsDouble((*C.PyObject)(p))
	if v == -1.0 && ErrorOccurred() {
		return 0, FetchError(errors.PhaseConvert)
	}
	return float64(v), nil
}

// UnicodeAsString copies a str object's UTF-8 form into a Go string.
func UnicodeAsString(p unsafe.Pointer) (string, error) {
	release := EnsureGIL()
	defer release()
	var size C.Py_ssize_t
	cs := C.PyUnicode_AsUTF8AndSize((*C.PyObject)(p), &size)
	if cs == nil {
		return "", FetchError(errors.PhaseConvert)
	}
	return C.GoStringN(cs, C.int(size)), nil
}

// BytesAsSlice copies a bytes object into a Go byte slice.
func BytesAsSlice(p unsafe.Pointer) ([]byte, error) {
	release := EnsureGIL()
	defer release()
	var buf *C.char
	var size C.Py_ssize_t
	if C.PyBytes_AsStringAndSize((*C.PyObject)(p), &buf, &size) < 0 {
		return nil, FetchError(errors.PhaseConvert)
	}
	return C.GoBytes(unsafe.Pointer(buf), C.int(size)), nil
}

// IsTrue evaluates truthiness through the interpreter's own protocol.
func IsTrue(p unsafe.Pointer) (bool, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_IsTrue((*C.PyObject)(p))
	if r < 0 {
		return false, FetchError(errors.PhaseConvert)
	}
	return r == 1, nil
}

// Containers.

func NewTuple(n int) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyTuple_New(C.Py_ssize_t(n)))
}

// TupleSetStolen stores item at index i, stealing the caller's reference.
// A failure here is this layer's own bug: the tuple is fresh and the index
// in range by construction.
func TupleSetStolen(t unsafe.Pointer, i int, item unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	if C.PyTuple_SetItem((*C.PyObject)(t), C.Py_ssize_t(i), (*C.PyObject)(item)) < 0 {
		ClearError()
		return errors.Internal(errors.PhaseConvert, "tuple slot assignment failed")
	}
	return nil
}

// TupleGet returns a borrowed reference to element i, or nil with the error
// state set.
func TupleGet(t unsafe.Pointer, i int) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyTuple_GetItem((*C.PyObject)(t), C.Py_ssize_t(i)))
}

func TupleSize(t unsafe.Pointer) int {
	release := EnsureGIL()
	defer release()
	return int(C.PyTuple_Size((*C.PyObject)(t)))
}

func NewList(n int) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyList_New(C.Py_ssize_t(n)))
}

// ListSetStolen stores item at index i, stealing the caller's reference.
func ListSetStolen(l unsafe.Pointer, i int, item unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	if C.PyList_SetItem((*C.PyObject)(l), C.Py_ssize_t(i), (*C.PyObject)(item)) < 0 {
		ClearError()
		return errors.Internal(errors.PhaseConvert, "list slot assignment failed")
	}
	return nil
}

func ListAppend(l, item unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	if C.PyList_Append((*C.PyObject)(l), (*C.PyObject)(item)) < 0 {
		return FetchError(errors.PhaseConvert)
	}
	return nil
}

func NewDict() unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PyDict_New())
}

// DictSetString inserts v under a re-encoded string key. The dict takes its
// own reference; the caller keeps ownership of v.
func DictSetString(d unsafe.Pointer, key string, v unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	ck := C.CString(key)
	defer C.free(unsafe.Pointer(ck))
	if C.PyDict_SetItemString((*C.PyObject)(d), ck, (*C.PyObject)(v)) < 0 {
		return FetchError(errors.PhaseConvert)
	}
	return nil
}

// NewSliceObject builds a slice object from the three bound objects; each
// may be the None singleton. Borrows all three.
func NewSliceObject(start, stop, step unsafe.Pointer) unsafe.Pointer {
	release := EnsureGIL()
	defer release()
	return unsafe.Pointer(C.PySlice_New(
		(*C.PyObject)(start), (*C.PyObject)(stop), (*C.PyObject)(step)))
}

// Attribute access.

func GetAttrString(o unsafe.Pointer, name string) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	r := C.PyObject_GetAttrString((*C.PyObject)(o), cn)
	if r == nil {
		return nil, FetchError(errors.PhaseAttr)
	}
	return unsafe.Pointer(r), nil
}

func SetAttrString(o unsafe.Pointer, name string, v unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	if C.PyObject_SetAttrString((*C.PyObject)(o), cn, (*C.PyObject)(v)) < 0 {
		return FetchError(errors.PhaseAttr)
	}
	return nil
}

func HasAttrString(o unsafe.Pointer, name string) bool {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	return C.PyObject_HasAttrString((*C.PyObject)(o), cn) == 1
}

// Item access.

func GetItem(o, key unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_GetItem((*C.PyObject)(o), (*C.PyObject)(key))
	if r == nil {
		return nil, FetchError(errors.PhaseItem)
	}
	return unsafe.Pointer(r), nil
}

func SetItem(o, key, v unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	if C.PyObject_SetItem((*C.PyObject)(o), (*C.PyObject)(key), (*C.PyObject)(v)) < 0 {
		return FetchError(errors.PhaseItem)
	}
	return nil
}

func DelItem(o, key unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	if C.PyObject_DelItem((*C.PyObject)(o), (*C.PyObject)(key)) < 0 {
		return FetchError(errors.PhaseItem)
	}
	return nil
}

// Call invokes callable with a positional tuple and optional keyword dict.
// The entry point's contract guarantees a non-nil result on success (a
// value-less call returns the None singleton), so nil without a pending
// error is reported as this layer's own failure.
func Call(callable, args, kw unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_Call((*C.PyObject)(callable), (*C.PyObject)(args), (*C.PyObject)(kw))
	if r == nil {
		if ErrorOccurred() {
			return nil, FetchError(errors.PhaseCall)
		}
		return nil, errors.Internal(errors.PhaseCall, "call returned nil without raising")
	}
	return unsafe.Pointer(r), nil
}

// Length returns len(o).
func Length(o unsafe.Pointer) (int64, error) {
	release := EnsureGIL()
	defer release()
	n := C.PyObject_Length((*C.PyObject)(o))
	if n < 0 {
		return 0, FetchError(errors.PhaseOperator)
	}
	return int64(n), nil
}

// Hash returns hash(o).
func Hash(o unsafe.Pointer) (int64, error) {
	release := EnsureGIL()
	defer release()
	h := C.PyObject_Hash((*C.PyObject)(o))
	if h == -1 && ErrorOccurred() {
		return 0, FetchError(errors.PhaseOperator)
	}
	return int64(h), nil
}

// Str returns str(o) as a new owned reference.
func Str(o unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_Str((*C.PyObject)(o))
	if r == nil {
		return nil, FetchError(errors.PhaseConvert)
	}
	return unsafe.Pointer(r), nil
}

// Repr returns repr(o) as a new owned reference.
func Repr(o unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_Repr((*C.PyObject)(o))
	if r == nil {
		return nil, FetchError(errors.PhaseConvert)
	}
	return unsafe.Pointer(r), nil
}

// RichCompareEq delegates equality to the objects' own protocol.
func RichCompareEq(a, b unsafe.Pointer) (bool, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_RichCompareBool((*C.PyObject)(a), (*C.PyObject)(b), C.Py_EQ)
	if r < 0 {
		return false, FetchError(errors.PhaseOperator)
	}
	return r == 1, nil
}

// Iteration. GetIter starts the protocol; IterNext returns (nil, nil) on
// normal exhaustion.

func GetIter(o unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyObject_GetIter((*C.PyObject)(o))
	if r == nil {
		return nil, FetchError(errors.PhaseIterate)
	}
	return unsafe.Pointer(r), nil
}

func IterNext(it unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyIter_Next((*C.PyObject)(it))
	if r == nil {
		if ErrorOccurred() {
			return nil, FetchError(errors.PhaseIterate)
		}
		return nil, nil
	}
	return unsafe.Pointer(r), nil
}

// Modules and evaluation.

func ImportModule(name string) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	r := C.PyImport_ImportModule(cn)
	if r == nil {
		return nil, FetchError(errors.PhaseEval)
	}
	return unsafe.Pointer(r), nil
}

// MainDict returns the __main__ module's globals as a borrowed reference.
func MainDict() (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	cn := C.CString("__main__")
	defer C.free(unsafe.Pointer(cn))
	m := C.PyImport_AddModule(cn)
	if m == nil {
		return nil, FetchError(errors.PhaseEval)
	}
	d := C.PyModule_GetDict(m)
	if d == nil {
		return nil, FetchError(errors.PhaseEval)
	}
	return unsafe.Pointer(d), nil
}

// RunString compiles and runs source against the given globals/locals.
// eval mode expects a single expression and produces its value; otherwise
// the source is executed as statements and the None singleton is produced.
func RunString(src string, eval bool, globals, locals unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	cs := C.CString(src)
	defer C.free(unsafe.Pointer(cs))
	start := C.int(C.Py_file_input)
	if eval {
		start = C.int(C.Py_eval_input)
	}
	r := C.PyRun_String(cs, start, (*C.PyObject)(globals), (*C.PyObject)(locals))
	if r == nil {
		return nil, FetchError(errors.PhaseEval)
	}
	return unsafe.Pointer(r), nil
}

// NewModule creates an empty module object (not registered with the import
// machinery).
func NewModule(name string) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	r := C.PyModule_New(cn)
	if r == nil {
		return nil, FetchError(errors.PhaseTypeBuild)
	}
	return unsafe.Pointer(r), nil
}

// ModuleAddObjectStolen adds v to the module namespace under name. The
// module steals the reference on success; on failure ownership stays with
// the caller, which this wrapper resolves by releasing it.
func ModuleAddObjectStolen(m unsafe.Pointer, name string, v unsafe.Pointer) error {
	release := EnsureGIL()
	defer release()
	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	if C.PyModule_AddObject((*C.PyObject)(m), cn, (*C.PyObject)(v)) < 0 {
		err := FetchError(errors.PhaseTypeBuild)
		C.Py_DecRef((*C.PyObject)(v))
		return err
	}
	return nil
}

// NewInstanceMethod wraps a callable so attribute access on an instance
// binds it as a method. Returns a new owned reference; borrows fn.
func NewInstanceMethod(fn unsafe.Pointer) (unsafe.Pointer, error) {
	release := EnsureGIL()
	defer release()
	r := C.PyInstanceMethod_New((*C.PyObject)(fn))
	if r == nil {
		return nil, FetchError(errors.PhaseTypeBuild)
	}
	return unsafe.Pointer(r), nil
}
