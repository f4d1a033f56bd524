package runtime

import (
	"fmt"
	"unsafe"

	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Objecter is the convertibility capability: a native value that can
// produce an interpreter representation of itself as a new owned reference.
type Objecter interface {
	ToObject() (*Object, error)
}

// FromObjecter is the reverse capability: a native value that can rebuild
// itself from an interpreter representation. The reference is borrowed for
// the duration of the call. Object.Into dispatches through it.
type FromObjecter interface {
	FromObject(o *Object) error
}

// From converts a native literal into a new owned reference. Supported:
// nil (None), bool, all int/uint widths, float32/64, string, []byte,
// []any, map[string]any, Objecter implementations, and Object itself
// (cloned, the argument stays owned by the caller).
func From(v any) (*Object, error) {
	// The whole conversion runs under one lock acquisition so that a failed
	// constructor's pending exception cannot leak across threads before it
	// is fetched.
	release := cpython.EnsureGIL()
	defer release()

	switch x := v.(type) {
	case nil:
		return None(), nil
	case *Object:
		if x == nil || x.ptr == nil {
			return None(), nil
		}
		return x.Clone(), nil
	case Objecter:
		return x.ToObject()
	case bool:
		return fromPtr(cpython.NewBool(x))
	case int:
		return fromPtr(cpython.NewLong(int64(x)))
	case int8:
		return fromPtr(cpython.NewLong(int64(x)))
	case int16:
		return fromPtr(cpython.NewLong(int64(x)))
	case int32:
		return fromPtr(cpython.NewLong(int64(x)))
	case int64:
		return fromPtr(cpython.NewLong(x))
	case uint:
		return fromPtr(cpython.NewLongUnsigned(uint64(x)))
	case uint8:
		return fromPtr(cpython.NewLong(int64(x)))
	case uint16:
		return fromPtr(cpython.NewLong(int64(x)))
	case uint32:
		return fromPtr(cpython.NewLong(int64(x)))
	case uint64:
		return fromPtr(cpython.NewLongUnsigned(x))
	case float32:
		return fromPtr(cpython.NewFloat(float64(x)))
	case float64:
		return fromPtr(cpython.NewFloat(x))
	case string:
		return fromPtr(cpython.NewString(x))
	case []byte:
		return fromPtr(cpython.NewBytes(x))
	case []any:
		return fromSlice(x)
	case map[string]any:
		return fromMap(x)
	default:
		return nil, errors.New(errors.PhaseConvert, errors.KindUnsupported).
			GoType(fmt.Sprintf("%T", v)).
			Detail("no conversion to an interpreter object").
			Build()
	}
}

// Into decodes the object into dst. FromObjecter implementations take
// precedence; otherwise dst must be a pointer to one of the scalar kinds the
// accessors cover.
func (o *Object) Into(dst any) error {
	if err := o.nullGuard(errors.PhaseConvert); err != nil {
		return err
	}
	switch d := dst.(type) {
	case FromObjecter:
		return d.FromObject(o)
	case *int64:
		v, err := o.AsInt64()
		if err != nil {
			return err
		}
		*d = v
		return nil
	case *float64:
		v, err := o.AsFloat64()
		if err != nil {
			return err
		}
		*d = v
		return nil
	case *string:
		v, err := o.AsString()
		if err != nil {
			return err
		}
		*d = v
		return nil
	case *bool:
		v, err := o.AsBool()
		if err != nil {
			return err
		}
		*d = v
		return nil
	case *[]byte:
		v, err := o.AsBytes()
		if err != nil {
			return err
		}
		*d = v
		return nil
	default:
		return errors.New(errors.PhaseConvert, errors.KindUnsupported).
			GoType(fmt.Sprintf("%T", dst)).
			Detail("no decoding from an interpreter object").
			Build()
	}
}

func fromPtr(p unsafe.Pointer) (*Object, error) {
	if p == nil {
		return nil, cpython.MustFetchError(errors.PhaseConvert)
	}
	return FromOwned(p), nil
}

func fromSlice(items []any) (*Object, error) {
	l := cpython.NewList(len(items))
	if l == nil {
		return nil, cpython.MustFetchError(errors.PhaseConvert)
	}
	list := FromOwned(l)
	for i, item := range items {
		el, err := From(item)
		if err != nil {
			list.Close()
			return nil, err
		}
		// The list slot steals the element's reference.
		if err := cpython.ListSetStolen(l, i, el.Steal()); err != nil {
			list.Close()
			return nil, err
		}
	}
	return list, nil
}

func fromMap(m map[string]any) (*Object, error) {
	d := cpython.NewDict()
	if d == nil {
		return nil, cpython.MustFetchError(errors.PhaseConvert)
	}
	dict := FromOwned(d)
	for k, v := range m {
		val, err := From(v)
		if err != nil {
			dict.Close()
			return nil, err
		}
		err = cpython.DictSetString(d, k, val.Raw())
		val.Close()
		if err != nil {
			dict.Close()
			return nil, err
		}
	}
	return dict, nil
}
