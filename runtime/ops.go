package runtime

import (
	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Dynamic operations come in two strategies. Attribute access, item access,
// calling, length, hashing, and truthiness have direct entry points in the
// interpreter; everything operator-shaped (arithmetic, comparisons, bitwise
// ops) goes through one primitive, callMethod, which looks the dunder
// method up by name on the receiver and calls it with an argument tuple.

// Attr returns the named attribute as a new owned reference.
func (o *Object) Attr(name string) (*Object, error) {
	if err := o.nullGuard(errors.PhaseAttr); err != nil {
		return nil, err
	}
	p, err := cpython.GetAttrString(o.ptr, name)
	if err != nil {
		return nil, err
	}
	return FromOwned(p), nil
}

// SetAttr converts v and assigns it to the named attribute.
func (o *Object) SetAttr(name string, v any) error {
	if err := o.nullGuard(errors.PhaseAttr); err != nil {
		return err
	}
	val, err := From(v)
	if err != nil {
		return err
	}
	defer val.Close()
	return cpython.SetAttrString(o.ptr, name, val.Raw())
}

// HasAttr reports whether the named attribute exists, clearing any error
// the lookup raises.
func (o *Object) HasAttr(name string) bool {
	if o == nil || o.ptr == nil {
		return false
	}
	return cpython.HasAttrString(o.ptr, name)
}

// Slice mirrors the interpreter's slice notation: nil bounds become None.
type Slice struct {
	Start *int64
	Stop  *int64
	Step  *int64
}

func (s Slice) toObject() (*Object, error) {
	release := cpython.EnsureGIL()
	defer release()

	bound := func(v *int64) (*Object, error) {
		if v == nil {
			return None(), nil
		}
		return From(*v)
	}
	start, err := bound(s.Start)
	if err != nil {
		return nil, err
	}
	defer start.Close()
	stop, err := bound(s.Stop)
	if err != nil {
		return nil, err
	}
	defer stop.Close()
	step, err := bound(s.Step)
	if err != nil {
		return nil, err
	}
	defer step.Close()

	p := cpython.NewSliceObject(start.Raw(), stop.Raw(), step.Raw())
	if p == nil {
		return nil, cpython.MustFetchError(errors.PhaseItem)
	}
	return FromOwned(p), nil
}

// keyObject converts the key list for subscripting. A single key passes
// through directly; several keys pack into one tuple, matching the
// interpreter's own convention for multi-dimensional subscripts.
func keyObject(keys []any) (*Object, error) {
	if len(keys) == 0 {
		return nil, errors.InvalidInput(errors.PhaseItem, "subscript requires at least one key")
	}
	convert := func(k any) (*Object, error) {
		if s, ok := k.(Slice); ok {
			return s.toObject()
		}
		return From(k)
	}
	if len(keys) == 1 {
		return convert(keys[0])
	}
	return packTuple(keys, convert)
}

// Item returns o[key] (or o[k1, k2, ...] for several keys) as a new owned
// reference.
func (o *Object) Item(keys ...any) (*Object, error) {
	if err := o.nullGuard(errors.PhaseItem); err != nil {
		return nil, err
	}
	key, err := keyObject(keys)
	if err != nil {
		return nil, err
	}
	defer key.Close()
	p, err := cpython.GetItem(o.ptr, key.Raw())
	if err != nil {
		return nil, err
	}
	return FromOwned(p), nil
}

// SetItem assigns o[key...] = v.
func (o *Object) SetItem(v any, keys ...any) error {
	if err := o.nullGuard(errors.PhaseItem); err != nil {
		return err
	}
	key, err := keyObject(keys)
	if err != nil {
		return err
	}
	defer key.Close()
	val, err := From(v)
	if err != nil {
		return err
	}
	defer val.Close()
	return cpython.SetItem(o.ptr, key.Raw(), val.Raw())
}

// DelItem removes o[key...].
func (o *Object) DelItem(keys ...any) error {
	if err := o.nullGuard(errors.PhaseItem); err != nil {
		return err
	}
	key, err := keyObject(keys)
	if err != nil {
		return err
	}
	defer key.Close()
	return cpython.DelItem(o.ptr, key.Raw())
}

// Len returns len(o).
func (o *Object) Len() (int64, error) {
	if err := o.nullGuard(errors.PhaseOperator); err != nil {
		return 0, err
	}
	return cpython.Length(o.ptr)
}

// Truth evaluates the object's truthiness through the interpreter protocol.
func (o *Object) Truth() (bool, error) {
	if err := o.nullGuard(errors.PhaseOperator); err != nil {
		return false, err
	}
	return cpython.IsTrue(o.ptr)
}

// callMethod is the single late-bound dispatch primitive: look the named
// method up on the receiver, call it with the converted arguments, and wrap
// the result. Every operator reuses it.
func (o *Object) callMethod(name string, args ...any) (*Object, error) {
	if err := o.nullGuard(errors.PhaseOperator); err != nil {
		return nil, err
	}
	m, err := cpython.GetAttrString(o.ptr, name)
	if err != nil {
		return nil, err
	}
	method := FromOwned(m)
	defer method.Close()

	argTuple, err := packTuple(args, From)
	if err != nil {
		return nil, err
	}
	defer argTuple.Close()

	p, err := cpython.Call(method.Raw(), argTuple.Raw(), nil)
	if err != nil {
		return nil, err
	}
	return FromOwned(p), nil
}

// CallMethod invokes the named method with converted positional arguments.
func (o *Object) CallMethod(name string, args ...any) (*Object, error) {
	return o.callMethod(name, args...)
}

// Binary operators, dispatched by dunder method name.

func (o *Object) Add(rhs any) (*Object, error)      { return o.callMethod("__add__", rhs) }
func (o *Object) Sub(rhs any) (*Object, error)      { return o.callMethod("__sub__", rhs) }
func (o *Object) Mul(rhs any) (*Object, error)      { return o.callMethod("__mul__", rhs) }
func (o *Object) Div(rhs any) (*Object, error)      { return o.callMethod("__truediv__", rhs) }
func (o *Object) FloorDiv(rhs any) (*Object, error) { return o.callMethod("__floordiv__", rhs) }
func (o *Object) Mod(rhs any) (*Object, error)      { return o.callMethod("__mod__", rhs) }
func (o *Object) Pow(rhs any) (*Object, error)      { return o.callMethod("__pow__", rhs) }
func (o *Object) BitAnd(rhs any) (*Object, error)   { return o.callMethod("__and__", rhs) }
func (o *Object) BitOr(rhs any) (*Object, error)    { return o.callMethod("__or__", rhs) }
func (o *Object) BitXor(rhs any) (*Object, error)   { return o.callMethod("__xor__", rhs) }
func (o *Object) LShift(rhs any) (*Object, error)   { return o.callMethod("__lshift__", rhs) }
func (o *Object) RShift(rhs any) (*Object, error)   { return o.callMethod("__rshift__", rhs) }

// Reflected variants, for when the receiver is the right-hand operand.

func (o *Object) RAdd(lhs any) (*Object, error) { return o.callMethod("__radd__", lhs) }
func (o *Object) RSub(lhs any) (*Object, error) { return o.callMethod("__rsub__", lhs) }
func (o *Object) RMul(lhs any) (*Object, error) { return o.callMethod("__rmul__", lhs) }
func (o *Object) RDiv(lhs any) (*Object, error) { return o.callMethod("__rtruediv__", lhs) }

// Unary operators.

func (o *Object) Neg() (*Object, error)    { return o.callMethod("__neg__") }
func (o *Object) Pos() (*Object, error)    { return o.callMethod("__pos__") }
func (o *Object) Invert() (*Object, error) { return o.callMethod("__invert__") }
func (o *Object) Abs() (*Object, error)    { return o.callMethod("__abs__") }

// In-place variants reuse the plain method name (no separate in-place
// method is looked up) and replace the receiver's stored reference with the
// call result after releasing the previous one. On failure the receiver
// keeps its old reference; no rollback of partial effects is attempted.

func (o *Object) AddAssign(rhs any) error    { return o.inPlace("__add__", rhs) }
func (o *Object) SubAssign(rhs any) error    { return o.inPlace("__sub__", rhs) }
func (o *Object) MulAssign(rhs any) error    { return o.inPlace("__mul__", rhs) }
func (o *Object) DivAssign(rhs any) error    { return o.inPlace("__truediv__", rhs) }
func (o *Object) ModAssign(rhs any) error    { return o.inPlace("__mod__", rhs) }
func (o *Object) BitAndAssign(rhs any) error { return o.inPlace("__and__", rhs) }
func (o *Object) BitOrAssign(rhs any) error  { return o.inPlace("__or__", rhs) }

func (o *Object) inPlace(name string, rhs any) error {
	r, err := o.callMethod(name, rhs)
	if err != nil {
		return err
	}
	old := o.ptr
	o.ptr = r.Steal()
	if old != nil {
		cpython.DecRef(old)
	}
	return nil
}

// Comparisons. Eq/Ne are covered by Equal; the ordered comparisons
// propagate failures because ordering is not total across arbitrary types.

func (o *Object) Lt(rhs any) (bool, error) { return o.compare("__lt__", rhs) }
func (o *Object) Le(rhs any) (bool, error) { return o.compare("__le__", rhs) }
func (o *Object) Gt(rhs any) (bool, error) { return o.compare("__gt__", rhs) }
func (o *Object) Ge(rhs any) (bool, error) { return o.compare("__ge__", rhs) }

func (o *Object) compare(name string, rhs any) (bool, error) {
	r, err := o.callMethod(name, rhs)
	if err != nil {
		return false, err
	}
	defer r.Close()
	return r.AsBool()
}

// Contains reports whether x is in o. It first tries the receiver's own
// __contains__; a receiver without one falls back to a linear scan over the
// iteration protocol with per-element equality. Exhausting the iterator
// without a match is a normal false, not an error.
func (o *Object) Contains(x any) (bool, error) {
	if err := o.nullGuard(errors.PhaseOperator); err != nil {
		return false, err
	}

	if o.HasAttr("__contains__") {
		r, err := o.callMethod("__contains__", x)
		if err != nil {
			return false, err
		}
		defer r.Close()
		return r.AsBool()
	}

	needle, err := From(x)
	if err != nil {
		return false, err
	}
	defer needle.Close()

	iter, err := o.Iter()
	if err != nil {
		return false, err
	}
	defer iter.Close()

	for iter.HasNext() {
		el, err := iter.Next()
		if err != nil {
			return false, err
		}
		found := el.Equal(needle)
		el.Close()
		if found {
			return true, nil
		}
	}
	return false, nil
}

// packTuple converts items and packs them into a fresh tuple. Each
// converted element is a new owned reference whose ownership transfers into
// the tuple through the stealing slot write; a slot write failing on a
// fresh tuple is this layer's own bug and surfaces as an internal error.
func packTuple(items []any, convert func(any) (*Object, error)) (*Object, error) {
	release := cpython.EnsureGIL()
	defer release()

	t := cpython.NewTuple(len(items))
	if t == nil {
		return nil, cpython.MustFetchError(errors.PhaseConvert)
	}
	tuple := FromOwned(t)
	for i, item := range items {
		el, err := convert(item)
		if err != nil {
			tuple.Close()
			return nil, err
		}
		if err := cpython.TupleSetStolen(t, i, el.Steal()); err != nil {
			tuple.Close()
			return nil, err
		}
	}
	return tuple, nil
}
