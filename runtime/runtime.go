package runtime

import (
	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Initialize brings the embedded interpreter up. Lazy and idempotent; see
// the cpython package for the thread and lock contract.
func Initialize(opts ...cpython.Option) error {
	return cpython.Initialize(opts...)
}

// Finalize tears the interpreter down at process exit.
func Finalize() error {
	return cpython.Finalize()
}

// None returns a new owned reference to the None singleton.
func None() *Object {
	return FromBorrowed(cpython.NoneSingleton())
}

// VersionString returns the embedded interpreter's version banner.
func VersionString() string {
	return cpython.VersionString()
}

// Import loads the named module through the interpreter's import machinery.
func Import(name string) (*Typed[TagModule], error) {
	if !cpython.Initialized() {
		return nil, errors.NotInitialized(errors.PhaseEval, "interpreter")
	}
	p, err := cpython.ImportModule(name)
	if err != nil {
		return nil, err
	}
	return UncheckedTyped[TagModule](FromOwned(p)), nil
}

// Eval evaluates a single expression against __main__ globals and returns
// its value.
func Eval(expr string) (*Object, error) {
	return run(expr, true)
}

// Exec executes statements against __main__ globals.
func Exec(stmts string) error {
	r, err := run(stmts, false)
	if err != nil {
		return err
	}
	r.Close()
	return nil
}

func run(src string, eval bool) (*Object, error) {
	if !cpython.Initialized() {
		return nil, errors.NotInitialized(errors.PhaseEval, "interpreter")
	}
	globals, err := cpython.MainDict()
	if err != nil {
		return nil, err
	}
	p, err := cpython.RunString(src, eval, globals, globals)
	if err != nil {
		return nil, err
	}
	return FromOwned(p), nil
}

// NewList builds a list from converted items.
func NewList(items ...any) (*Typed[TagList], error) {
	o, err := fromSlice(items)
	if err != nil {
		return nil, err
	}
	return UncheckedTyped[TagList](o), nil
}

// NewTuple builds a tuple from converted items.
func NewTuple(items ...any) (*Typed[TagTuple], error) {
	o, err := packTuple(items, From)
	if err != nil {
		return nil, err
	}
	return UncheckedTyped[TagTuple](o), nil
}

// NewDict builds a dict from a string-keyed map of converted values.
func NewDict(m map[string]any) (*Typed[TagDict], error) {
	o, err := fromMap(m)
	if err != nil {
		return nil, err
	}
	return UncheckedTyped[TagDict](o), nil
}
