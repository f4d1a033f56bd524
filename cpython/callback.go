package cpython

/*
#include "shim.h"
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/wippyai/python-runtime/errors"
)

// C function pointers cannot target Go closures, so the interpreter always
// calls one of the fixed exported trampolines below. Identity travels in a
// capsule (boundary functions) or in the instance's type object (type
// slots), and the trampoline resolves it through a registry.

// RawBoundaryFunc is the registry-level shape of a native callable: args is
// the borrowed argument tuple, the returned pointer is a new owned
// reference (or nil with err set for the failing flavor).
type RawBoundaryFunc func(args unsafe.Pointer) (unsafe.Pointer, error)

type boundaryEntry struct {
	fn      RawBoundaryFunc
	name    string
	failing bool
}

var boundary = struct {
	entries map[uintptr]*boundaryEntry
	nextID  uintptr
	mu      sync.RWMutex
}{
	entries: make(map[uintptr]*boundaryEntry),
	nextID:  1,
}

func registerBoundary(name string, fn RawBoundaryFunc, failing bool) uintptr {
	boundary.mu.Lock()
	defer boundary.mu.Unlock()
	id := boundary.nextID
	boundary.nextID++
	boundary.entries[id] = &boundaryEntry{fn: fn, name: name, failing: failing}
	return id
}

func lookupBoundary(id uintptr) *boundaryEntry {
	boundary.mu.RLock()
	defer boundary.mu.RUnlock()
	return boundary.entries[id]
}

func dropBoundary(id uintptr) {
	boundary.mu.Lock()
	defer boundary.mu.Unlock()
	delete(boundary.entries, id)
}

//export pyrunBoundaryCallGo
func pyrunBoundaryCallGo(self, args *C.PyObject) *C.PyObject {
	id := uintptr(C.pyrunCapsuleID(self))
	if id == 0 {
		if !ErrorOccurred() {
			SetError("boundary call with foreign capsule")
		}
		return nil
	}
	e := lookupBoundary(id)
	if e == nil {
		SetError("boundary function no longer registered")
		return nil
	}

	if !e.failing {
		// Plain flavor: the interpreter's calling convention guarantees
		// the caller holds the lock.
		r, _ := e.fn(unsafe.Pointer(args))
		return (*C.PyObject)(r)
	}

	release := EnsureGIL()
	defer release()

	r, err := e.fn(unsafe.Pointer(args))
	if err != nil {
		SetError(err.Error())
		return nil
	}
	return (*C.PyObject)(r)
}

//export pyrunCapsuleFreeGo
func pyrunCapsuleFreeGo(id C.uintptr_t) {
	dropBoundary(uintptr(id))
}

//export pyrunTypeInitGo
func pyrunTypeInitGo(self, args, kwds *C.PyObject) C.int {
	te := lookupType(unsafe.Pointer(C.pyrunTypeOf(self)))
	if te == nil {
		SetError("native type no longer registered")
		return -1
	}

	argc := 0
	if args != nil {
		argc = int(C.PyTuple_Size(args))
	}
	if kwds != nil {
		argc += int(C.PyDict_Size(kwds))
	}
	if argc > 0 {
		SetTypeError(errors.Arity(errors.PhaseBoundary, te.name, 0, argc).Detail)
		return -1
	}

	// __init__ can run again on a live instance; the previous payload, if
	// any, is dropped before the slot is overwritten.
	if h := uintptr(C.pyrunInstanceHandle(self)); h != 0 {
		te.hooks.DropPayload(h)
	}
	C.pyrunInstanceSetHandle(self, C.uintptr_t(te.hooks.NewPayload()))
	return 0
}

//export pyrunTypeDeallocGo
func pyrunTypeDeallocGo(self *C.PyObject) {
	te := lookupType(unsafe.Pointer(C.pyrunTypeOf(self)))
	if te == nil {
		return
	}
	h := uintptr(C.pyrunInstanceHandle(self))
	if h != 0 {
		te.hooks.DropPayload(h)
		C.pyrunInstanceSetHandle(self, 0)
	}
}

//export pyrunTypeReprGo
func pyrunTypeReprGo(self *C.PyObject) *C.PyObject {
	te := lookupType(unsafe.Pointer(C.pyrunTypeOf(self)))
	if te == nil {
		SetError("native type no longer registered")
		return nil
	}
	h := uintptr(C.pyrunInstanceHandle(self))
	if h == 0 {
		SetError(te.name + " instance has no native payload")
		return nil
	}
	return (*C.PyObject)(NewString(te.hooks.Repr(h)))
}
