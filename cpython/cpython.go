package cpython

/*
#cgo pkg-config: python3-embed

#include <stdlib.h>

#include "shim.h"
*/
import "C"

import (
	goruntime "runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/python-runtime/errors"
)

// Option configures interpreter initialization.
type Option func(*config)

type config struct {
	programName string
	pythonHome  string
	noSignals   bool
}

// WithProgramName sets argv[0] as seen by the interpreter.
func WithProgramName(name string) Option {
	return func(c *config) { c.programName = name }
}

// WithPythonHome overrides the interpreter's installation prefix.
func WithPythonHome(home string) Option {
	return func(c *config) { c.pythonHome = home }
}

// WithoutSignalHandlers leaves the host's signal handlers in place instead
// of installing the interpreter's.
func WithoutSignalHandlers() Option {
	return func(c *config) { c.noSignals = true }
}

var (
	initOnce sync.Once
	initErr  error

	// Thread state of the initializing thread, detached from the lock so
	// other threads can run interpreter code. Finalize reattaches it.
	mainState *C.PyThreadState

	finalizeMu sync.Mutex
	finalized  bool
)

// Initialize loads and initializes the embedded interpreter. It is lazy and
// idempotent: the first call does the work, every later call returns the
// same error. The initializing goroutine is locked to its OS thread for the
// interpreter's lifetime. The interpreter lock is released before Initialize
// returns; every entry point in this package reacquires it for the duration
// of its call, so any goroutine may use the API afterwards.
func Initialize(opts ...Option) error {
	initOnce.Do(func() {
		var cfg config
		for _, opt := range opts {
			opt(&cfg)
		}

		goruntime.LockOSThread()

		var cProg, cHome *C.char
		if cfg.programName != "" {
			cProg = C.CString(cfg.programName)
			defer C.free(unsafe.Pointer(cProg))
		}
		if cfg.pythonHome != "" {
			cHome = C.CString(cfg.pythonHome)
			defer C.free(unsafe.Pointer(cHome))
		}
		installSignals := C.int(1)
		if cfg.noSignals {
			installSignals = 0
		}

		if C.pyrunInitialize(cProg, cHome, installSignals) < 0 || C.Py_IsInitialized() == 0 {
			initErr = errors.New(errors.PhaseInit, errors.KindNotInitialized).
				Detail("interpreter initialization failed: %s", C.GoString(C.pyrunInitErrorMessage())).
				Build()
			return
		}

		Logger().Info("interpreter initialized",
			zap.String("version", VersionString()),
			zap.Bool("signal_handlers", !cfg.noSignals))

		// Hand the lock back to the interpreter so any thread can take it
		// through EnsureGIL. Finalize reattaches this state for teardown.
		mainState = C.PyEval_SaveThread()
	})
	return initErr
}

// Initialized reports whether the interpreter is up.
func Initialized() bool {
	return C.Py_IsInitialized() != 0 && !isFinalized()
}

// Finalize tears the interpreter down. Idempotent; meant for process exit,
// called from the goroutine that ran Initialize. All Objects must be closed
// first.
func Finalize() error {
	finalizeMu.Lock()
	defer finalizeMu.Unlock()
	if finalized || C.Py_IsInitialized() == 0 {
		return nil
	}
	finalized = true
	if mainState != nil {
		C.PyEval_RestoreThread(mainState)
		mainState = nil
	}
	if C.Py_FinalizeEx() < 0 {
		return errors.Internal(errors.PhaseInit, "interpreter finalization flushed with errors")
	}
	Logger().Info("interpreter finalized")
	return nil
}

func isFinalized() bool {
	finalizeMu.Lock()
	defer finalizeMu.Unlock()
	return finalized
}

// EnsureGIL acquires the interpreter lock state for the current thread and
// returns the matching release. The release must run on every exit path:
//
//	release := cpython.EnsureGIL()
//	defer release()
//
// The goroutine is pinned to its OS thread between acquire and release,
// because the lock state must be released on the thread that acquired it
// and the pending-exception state is thread-local. Acquisition is
// recursion-safe; a thread that already holds the lock pays only a counter
// increment, and the pins nest the same way.
func EnsureGIL() (release func()) {
	goruntime.LockOSThread()
	state := C.PyGILState_Ensure()
	return func() {
		C.PyGILState_Release(state)
		goruntime.UnlockOSThread()
	}
}

// VersionString returns the interpreter's version banner.
func VersionString() string {
	return C.GoString(C.Py_GetVersion())
}
