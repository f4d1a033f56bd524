// Package pythonruntime embeds the CPython interpreter in Go programs.
//
// The library gives native code a single owning handle type over
// interpreter objects that participates correctly in the interpreter's
// reference counting, exposes the fully dynamic operation set through a
// typed surface, and lets Go code construct interpreter-visible types and
// module functions backed by Go data.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	python-runtime/      Root package (documentation only)
//	├── runtime/         High-level API: Object, operators, iteration,
//	│                    shape tags, type/module builders
//	├── cpython/         Low-level engine: cgo bindings, interpreter
//	│                    lifecycle, lock protocol, error state, callback
//	│                    trampolines
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	if err := runtime.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	defer runtime.Finalize()
//
//	math, err := runtime.Import("math")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer math.Close()
//
//	sqrt, err := math.Attr("sqrt")
//	result, err := sqrt.Call(2.0)
//	fmt.Println(result) // 1.4142135623730951
//
// # Ownership
//
// The interpreter hands out two kinds of references and this library makes
// the distinction explicit at every call site: FromOwned adopts a reference
// the caller already owns, FromBorrowed promotes a borrowed one by
// incrementing first. Destruction is the single point that decrements.
//
// # Building
//
// The cpython package links against the interpreter's embedding library
// via pkg-config (python3-embed), available with any CPython ≥3.8
// development installation.
package pythonruntime
