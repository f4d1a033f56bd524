package cpython

/*
#include <stdlib.h>

#include "shim.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/wippyai/python-runtime/errors"
)

// TypeHooks are the native lifecycle slots of a native-backed type. Every
// hook receives or produces the opaque payload handle stored at the fixed
// offset behind the object header.
type TypeHooks struct {
	// NewPayload default-constructs the payload and returns its handle.
	NewPayload func() uintptr
	// DropPayload destroys the payload behind the handle.
	DropPayload func(h uintptr)
	// Repr renders the payload for the interpreter's repr machinery.
	Repr func(h uintptr) string
}

type typeEntry struct {
	hooks TypeHooks
	name  string
}

var nativeTypes = struct {
	entries map[unsafe.Pointer]*typeEntry
	mu      sync.RWMutex
}{
	entries: make(map[unsafe.Pointer]*typeEntry),
}

func lookupType(tp unsafe.Pointer) *typeEntry {
	nativeTypes.mu.RLock()
	defer nativeTypes.mu.RUnlock()
	return nativeTypes.entries[tp]
}

// NewNativeType materializes a type whose instances embed a native payload
// handle behind the object header. The returned pointer is a new owned
// reference to the type object. The interpreter rejecting the spec is
// bridged as an ABI-rejection error.
func NewNativeType(name string, hooks TypeHooks) (unsafe.Pointer, error) {
	if hooks.NewPayload == nil || hooks.DropPayload == nil || hooks.Repr == nil {
		return nil, errors.InvalidInput(errors.PhaseTypeBuild, "type hooks must all be set")
	}

	release := EnsureGIL()
	defer release()

	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))

	tp := C.pyrunTypeFromSpec(cn)
	if tp == nil {
		return nil, errors.ABIRejected("create type "+name, FetchError(errors.PhaseTypeBuild))
	}

	// Registration happens before the type escapes, so the slot
	// trampolines can never observe an unregistered type.
	nativeTypes.mu.Lock()
	nativeTypes.entries[unsafe.Pointer(tp)] = &typeEntry{hooks: hooks, name: name}
	nativeTypes.mu.Unlock()

	return unsafe.Pointer(tp), nil
}

// InstanceHandle reads the payload handle of a native-backed instance by
// applying the fixed header-to-payload offset. It is the only sanctioned
// way to reach the payload region; the caller is responsible for self
// actually being an instance of a type built by NewNativeType.
func InstanceHandle(self unsafe.Pointer) uintptr {
	return uintptr(C.pyrunInstanceHandle((*C.PyObject)(self)))
}

// PayloadOffset returns the fixed byte offset from the object header to the
// payload slot, as advertised to the interpreter in the type spec.
func PayloadOffset() int {
	return int(C.pyrunPayloadOffset())
}

// NewBoundaryFunction wraps fn as an interpreter-callable function object.
// failing selects the lock-acquiring, error-bridging flavor. The returned
// pointer is a new owned reference.
func NewBoundaryFunction(name, doc string, fn RawBoundaryFunc, failing bool) (unsafe.Pointer, error) {
	if fn == nil {
		return nil, errors.InvalidInput(errors.PhaseTypeBuild, "boundary function cannot be nil")
	}

	release := EnsureGIL()
	defer release()

	id := registerBoundary(name, fn, failing)

	capsule := C.pyrunNewCapsule(C.uintptr_t(id))
	if capsule == nil {
		dropBoundary(id)
		return nil, errors.ABIRejected("create capsule for "+name, FetchError(errors.PhaseTypeBuild))
	}

	cn := C.CString(name)
	defer C.free(unsafe.Pointer(cn))
	cd := C.CString(doc)
	defer C.free(unsafe.Pointer(cd))

	fnObj := C.pyrunNewBoundaryFunc(cn, cd, capsule)
	// The function object holds its own capsule reference now (or the
	// capsule dies here and its destructor unregisters fn).
	C.Py_DecRef(capsule)
	if fnObj == nil {
		return nil, errors.ABIRejected("create function "+name, FetchError(errors.PhaseTypeBuild))
	}
	return unsafe.Pointer(fnObj), nil
}
