package runtime

import (
	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Call invokes the object with converted positional arguments and returns
// the result as a new owned reference. A call that produces no value still
// produces the None singleton; the interpreter never returns nil without
// raising, and a violation of that contract surfaces as an internal error.
func (o *Object) Call(args ...any) (*Object, error) {
	return o.CallKw(args, nil)
}

// CallKw invokes the object with positional and named arguments. Positional
// arguments marshal into a fresh tuple (ownership of each converted value
// transfers into the tuple), named arguments into a fresh mapping with
// re-encoded string keys.
func (o *Object) CallKw(args []any, kw map[string]any) (*Object, error) {
	if err := o.nullGuard(errors.PhaseCall); err != nil {
		return nil, err
	}

	argTuple, err := packTuple(args, From)
	if err != nil {
		return nil, err
	}
	defer argTuple.Close()

	var kwDict *Object
	if len(kw) > 0 {
		kwDict, err = fromMap(kw)
		if err != nil {
			return nil, err
		}
		defer kwDict.Close()
	}

	p, err := cpython.Call(o.ptr, argTuple.Raw(), kwDict.Raw())
	if err != nil {
		return nil, err
	}
	return FromOwned(p), nil
}
