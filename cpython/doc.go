// Package cpython is the low-level engine package: it owns every call into
// the embedded CPython interpreter's C ABI and exposes the entry points the
// high-level runtime package builds on.
//
// # Responsibilities
//
//   - Interpreter lifecycle: Initialize (lazy, idempotent, process-wide)
//     and Finalize, with functional options for program name, home, and
//     signal handling.
//   - Lock discipline: every wrapper acquires the interpreter's global
//     lock for the duration of its call via EnsureGIL, which always
//     returns the paired release so callers can defer it across every
//     exit path.
//   - Raw entry points: object lifecycle (IncRef/DecRef), scalar and
//     container construction, attribute/item access, calling, iteration,
//     import and evaluation — all in terms of unsafe.Pointer so no C type
//     crosses the package boundary.
//   - Error state: the interpreter keeps one pending exception per thread;
//     FetchError is the only reader-and-clearer, ThrowIfError the
//     propagate-if-set helper.
//   - Callback trampolines: C function pointers cannot target Go closures,
//     so fixed //export trampolines dispatch through registries, keyed by
//     an identity capsule (boundary functions) or the instance's type
//     object (type slots).
//
// # Ownership
//
// Every function documents whether the pointer it returns is a new owned
// reference or borrowed. Pointers returned as owned carry exactly one
// reference count unit the caller must eventually release with DecRef;
// borrowed pointers must be promoted with IncRef before being stored.
//
// # Threads
//
// Initialize releases the interpreter lock before returning, so no thread
// holds it between calls. Every wrapper in this package re-acquires it with
// EnsureGIL, which pins the goroutine to its OS thread for the acquisition's
// lifetime; pending-exception state is thread-local, so multi-step sequences
// that read the error state after a call returns take one outer EnsureGIL
// bracket around the whole sequence. Acquisition is recursion-safe.
package cpython
