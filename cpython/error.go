package cpython

/*
#include <stdlib.h>

#include "shim.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/python-runtime/errors"
)

// The interpreter keeps at most one pending exception per thread. FetchError
// is the only reader, and reading clears the state. Components that want
// "propagate if anything went wrong" semantics use ThrowIfError.

// ErrorOccurred reports whether the thread-local error flag is set.
func ErrorOccurred() bool {
	release := EnsureGIL()
	defer release()
	return C.PyErr_Occurred() != nil
}

// ClearError drops any pending exception without looking at it.
func ClearError() {
	release := EnsureGIL()
	defer release()
	C.PyErr_Clear()
}

// SetError sets the pending exception to a RuntimeError carrying msg. Used
// by the boundary wrapper to surface native failures to embedded code.
func SetError(msg string) {
	release := EnsureGIL()
	defer release()
	cm := C.CString(msg)
	defer C.free(unsafe.Pointer(cm))
	C.PyErr_SetString(C.PyExc_RuntimeError, cm)
}

// SetTypeError sets the pending exception to a TypeError carrying msg,
// mirroring the interpreter's own arity/type message convention.
func SetTypeError(msg string) {
	release := EnsureGIL()
	defer release()
	cm := C.CString(msg)
	defer C.free(unsafe.Pointer(cm))
	C.PyErr_SetString(C.PyExc_TypeError, cm)
}

// FetchError fetches, normalizes, and clears the pending exception,
// converting it to a structured error tagged with phase. Only the exception
// class name and rendered message survive the crossing.
func FetchError(phase errors.Phase) *errors.Error {
	release := EnsureGIL()
	defer release()
	var ptype, pvalue, ptrace *C.PyObject
	C.PyErr_Fetch(&ptype, &pvalue, &ptrace)
	if ptype == nil {
		return errors.Internal(phase, "error fetch with no pending exception")
	}
	C.PyErr_NormalizeException(&ptype, &pvalue, &ptrace)

	name := typeObjectName(unsafe.Pointer(ptype))

	var msg string
	if pvalue != nil {
		if s := C.PyObject_Str(pvalue); s != nil {
			msg, _ = UnicodeAsString(unsafe.Pointer(s))
			C.Py_DecRef(s)
		} else {
			C.PyErr_Clear()
		}
	}

	C.Py_DecRef(ptype)
	if pvalue != nil {
		C.Py_DecRef(pvalue)
	}
	if ptrace != nil {
		C.Py_DecRef(ptrace)
	}

	return errors.PythonException(phase, name, msg)
}

// ThrowIfError bridges the pending exception if one is set, otherwise it is
// a no-op.
func ThrowIfError(phase errors.Phase) error {
	if !ErrorOccurred() {
		return nil
	}
	return FetchError(phase)
}

// MustFetchError requires a pending exception. Calling it with a clear
// error state is a bug in this layer.
func MustFetchError(phase errors.Phase) *errors.Error {
	if !ErrorOccurred() {
		AssertFailed("MustFetchError called with no pending exception")
		return errors.Internal(phase, "error fetch with no pending exception")
	}
	return FetchError(phase)
}

var (
	assertMu      sync.RWMutex
	assertHandler func(msg string)
)

// SetAssertHandler installs the hook invoked when an operation that is
// total by contract (equality, hashing) fails underneath. The default logs
// at error level. Tests install a failing handler.
func SetAssertHandler(h func(msg string)) {
	assertMu.Lock()
	defer assertMu.Unlock()
	assertHandler = h
}

// AssertFailed reports a broken total-operation contract.
func AssertFailed(msg string) {
	assertMu.RLock()
	h := assertHandler
	assertMu.RUnlock()
	if h != nil {
		h(msg)
		return
	}
	Logger().Error("assertion failed", zap.String("msg", msg))
}
