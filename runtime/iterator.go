package runtime

import (
	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Iterator adapts the interpreter's iteration protocol — one "next element
// or exhaustion" call — to the host convention that separates "is there a
// next element" from "produce it". The adapter buffers one element ahead:
// construction eagerly pulls the first element, and every Next returns the
// buffered element before pulling its successor. The buffered element
// survives the transition to the exhausted state, so the last real element
// is never lost.
type Iterator struct {
	iter *Object
	next *Object // one-ahead buffer; nil once exhausted
}

// Iter starts iteration over the object.
func (o *Object) Iter() (*Iterator, error) {
	if err := o.nullGuard(errors.PhaseIterate); err != nil {
		return nil, err
	}
	p, err := cpython.GetIter(o.ptr)
	if err != nil {
		return nil, err
	}
	it := &Iterator{iter: FromOwned(p)}
	if err := it.pull(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

// HasNext reports whether Next will produce an element.
func (it *Iterator) HasNext() bool {
	return it.next != nil
}

// Next returns the buffered element as a new owned reference and pulls the
// element after it. The caller owns the returned element.
func (it *Iterator) Next() (*Object, error) {
	if it.next == nil {
		return nil, errors.InvalidInput(errors.PhaseIterate, "iterator exhausted")
	}
	current := it.next
	it.next = nil
	if err := it.pull(); err != nil {
		current.Close()
		return nil, err
	}
	return current, nil
}

func (it *Iterator) pull() error {
	p, err := cpython.IterNext(it.iter.Raw())
	if err != nil {
		return err
	}
	if p != nil {
		it.next = FromOwned(p)
	}
	return nil
}

// Close releases the underlying iterator and any buffered element.
func (it *Iterator) Close() {
	if it == nil {
		return
	}
	if it.next != nil {
		it.next.Close()
	}
	it.iter.Close()
}
