// Package runtime provides the high-level API for embedding CPython.
//
// # Quick Start
//
//	if err := runtime.Initialize(); err != nil {
//	    log.Fatal(err)
//	}
//	defer runtime.Finalize()
//
//	list, err := runtime.NewList(1, 2, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer list.Close()
//
//	doubled, err := list.Obj().Mul(2)
//	fmt.Println(doubled) // [1, 2, 3, 1, 2, 3]
//
// # References
//
// Object is the fundamental value: an owning handle over one interpreter
// object, participating in the interpreter's reference counting. Two
// constructors make the ownership of a raw pointer explicit at every call
// site:
//
//	FromOwned(p)     take over a reference the caller already owns
//	FromBorrowed(p)  increment first, then own the new count
//
// Every Object must be Closed exactly once (Clone creates an independent
// owner with its own Close obligation). Steal moves the reference out and
// leaves the handle null, after which Close is a no-op.
//
// # Dynamic operations
//
// Attribute access, item access (including multi-key and Slice subscripts),
// calling, iteration, length, hashing, and the operator set all dispatch
// through the interpreter:
//
//	v, err := obj.Attr("name")
//	v, err := obj.Item("key")
//	v, err := obj.Item(1, 2)              // packs a key tuple
//	v, err := obj.Call(1, "two", 3.0)
//	v, err := obj.Add(other)
//	ok, err := obj.Contains(42)
//
// Failures anywhere in a chain carry the interpreter exception's class name
// and message; see the errors package. Equality and hashing are total by
// contract and report underlying failures through the assertion hook
// instead of propagating.
//
// # Shape tags
//
// Typed[T] narrows the static surface with a zero-cost compile-time tag:
//
//	mod, err := runtime.Import("math")      // *Typed[TagModule]
//	t := runtime.UncheckedTyped[TagTuple](obj)
//
// Tags are never validated at runtime; Unchecked constructors are exactly
// that.
//
// # Native types and functions
//
// TypeBuilder exposes a Go value type to the interpreter, ModuleBuilder a
// set of Go functions:
//
//	type Point struct{ X, Y int64 }
//	func (p Point) Repr() string { return fmt.Sprintf("Point(%d, %d)", p.X, p.Y) }
//
//	typeObj, err := runtime.NewTypeBuilder[Point]("Point").Build()
//
//	mod, err := runtime.NewModuleBuilder("host").
//	    DefFailing("parse", "", func(args runtime.Tuple) (*runtime.Object, error) {
//	        ...
//	    }).
//	    Build()
//
// Instances carry the Go payload behind the interpreter object header;
// PayloadOf and TuplePayload recover it inside method implementations.
//
// # Threads
//
// This package adds no concurrency of its own and defers all serialization
// to the interpreter's global lock. Initialize releases the lock before
// returning, and every operation re-acquires it for the duration of its
// underlying calls, so handles are safe to use and Close from any goroutine.
// Distinct goroutines still serialize on the one lock: concurrency here buys
// safety, not parallelism.
package runtime
