package runtime

import (
	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Tag is the compile-time shape marker for Typed references. Tags are
// zero-size phantom types with no runtime representation: a Typed[TagTuple]
// and a bare Object are byte-identical.
type Tag interface {
	shapeTag()
}

type (
	// TagTuple marks references expected to hold a tuple.
	TagTuple struct{}
	// TagList marks references expected to hold a list.
	TagList struct{}
	// TagDict marks references expected to hold a dict.
	TagDict struct{}
	// TagModule marks references expected to hold a module.
	TagModule struct{}
	// TagType marks references expected to hold a type object.
	TagType struct{}
	// TagNone marks references expected to hold the None singleton.
	TagNone struct{}
)

func (TagTuple) shapeTag()  {}
func (TagList) shapeTag()   {}
func (TagDict) shapeTag()   {}
func (TagModule) shapeTag() {}
func (TagType) shapeTag()   {}
func (TagNone) shapeTag()   {}

// Typed is a shape-tagged reference: one Object plus a compile-time tag
// that narrows which operations are offered. The tag is a documentation and
// type-narrowing device only — it is never validated against the object's
// actual runtime type.
type Typed[T Tag] struct {
	Object
}

// UncheckedTyped wraps o under tag T without any runtime validation,
// taking ownership of o's reference and leaving o in the null state. The
// caller vouches for the shape; a wrong tag surfaces later as interpreter
// errors from the narrowed operations.
func UncheckedTyped[T Tag](o *Object) *Typed[T] {
	return &Typed[T]{Object: Object{ptr: o.Steal()}}
}

// Obj returns the untagged view of the reference; ownership stays with the
// Typed wrapper.
func (t *Typed[T]) Obj() *Object {
	return &t.Object
}

// Narrowed operations. Methods cannot be declared on individual generic
// instantiations, so shape-specific operations are package-level functions
// over the concrete Typed instantiation.

// TupleSize returns the tuple's element count.
func TupleSize(t *Typed[TagTuple]) int {
	if t == nil || t.ptr == nil {
		return 0
	}
	return cpython.TupleSize(t.ptr)
}

// TupleGet returns element i as a new owned reference.
func TupleGet(t *Typed[TagTuple], i int) (*Object, error) {
	if err := t.nullGuard(errors.PhaseItem); err != nil {
		return nil, err
	}
	release := cpython.EnsureGIL()
	defer release()
	p := cpython.TupleGet(t.ptr, i)
	if p == nil {
		return nil, cpython.MustFetchError(errors.PhaseItem)
	}
	return FromBorrowed(p), nil
}

// ListAppend converts v and appends it to the list.
func ListAppend(l *Typed[TagList], v any) error {
	if err := l.nullGuard(errors.PhaseItem); err != nil {
		return err
	}
	val, err := From(v)
	if err != nil {
		return err
	}
	defer val.Close()
	return cpython.ListAppend(l.ptr, val.Raw())
}

// DictSet converts v and stores it under the string key.
func DictSet(d *Typed[TagDict], key string, v any) error {
	if err := d.nullGuard(errors.PhaseItem); err != nil {
		return err
	}
	val, err := From(v)
	if err != nil {
		return err
	}
	defer val.Close()
	return cpython.DictSetString(d.ptr, key, val.Raw())
}

// ModuleAdd places o into the module's namespace under name, consuming o's
// reference (the module steals it).
func ModuleAdd(m *Typed[TagModule], name string, o *Object) error {
	if err := m.nullGuard(errors.PhaseTypeBuild); err != nil {
		return err
	}
	return cpython.ModuleAddObjectStolen(m.ptr, name, o.Steal())
}
