package runtime

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/wippyai/python-runtime/cpython"
	"github.com/wippyai/python-runtime/errors"
)

// Payload is the capability a native type needs to be exposed as an
// interpreter type: a zero value that serves as the default construction,
// and a representation function for the interpreter's repr machinery.
// Repr must use a value receiver so the zero value satisfies the interface.
type Payload interface {
	Repr() string
}

// Instances of built types embed the interpreter's object header followed
// by a handle slot at a fixed offset. The handle indirects to the Go
// payload: storing Go pointers directly in interpreter-allocated memory
// would hide them from the collector and violate the pointer-passing rules,
// so the slot carries a cgo.Handle instead. payloadFromInstance is the only
// reader, mirroring the single-accessor rule on the C side.
func payloadFromInstance[T any](instance unsafe.Pointer) (*T, error) {
	h := cpython.InstanceHandle(instance)
	if h == 0 {
		return nil, errors.Internal(errors.PhaseBoundary, "instance has no native payload")
	}
	p, ok := cgo.Handle(h).Value().(*T)
	if !ok {
		return nil, errors.New(errors.PhaseBoundary, errors.KindTypeMismatch).
			GoType(typeName[T]()).
			PyType(cpython.TypeName(instance)).
			Detail("instance payload holds a different native type").
			Build()
	}
	return p, nil
}

// PayloadOf resolves an Object as a native-backed instance of payload type
// T. The shape is not validated beyond the payload handle's own type check.
func PayloadOf[T any](o *Object) (*T, error) {
	if err := o.nullGuard(errors.PhaseBoundary); err != nil {
		return nil, err
	}
	return payloadFromInstance[T](o.Raw())
}

type methodDef struct {
	name string
	doc  string
	fn   FailingFunc
}

// TypeBuilder constructs a new interpreter-visible type whose instances are
// backed by a native payload of type T. The builder wires the lifecycle
// slots: generic allocation, a default-construct initializer that rejects
// any arguments, payload destruction on deallocation, and representation
// through the payload's Repr.
type TypeBuilder[T Payload] struct {
	name    string
	methods []methodDef
}

// NewTypeBuilder starts a builder for a type with the given name.
func NewTypeBuilder[T Payload](name string) *TypeBuilder[T] {
	return &TypeBuilder[T]{name: name}
}

// Def adds a method-table entry. Methods use the failing flavor and receive
// the instance as their first argument. Entries accumulate until Build.
func (b *TypeBuilder[T]) Def(name, doc string, fn FailingFunc) *TypeBuilder[T] {
	b.methods = append(b.methods, methodDef{name: name, doc: doc, fn: fn})
	return b
}

// Build finalizes the slot table and asks the interpreter to materialize
// the type. A rejected spec is bridged as an ABI-rejection error. The
// returned reference owns the type object.
func (b *TypeBuilder[T]) Build() (*Typed[TagType], error) {
	if b.name == "" {
		return nil, errors.InvalidInput(errors.PhaseTypeBuild, "type name cannot be empty")
	}

	hooks := cpython.TypeHooks{
		NewPayload: func() uintptr {
			var v T
			return uintptr(cgo.NewHandle(&v))
		},
		DropPayload: func(h uintptr) {
			cgo.Handle(h).Delete()
		},
		Repr: func(h uintptr) string {
			return (*cgo.Handle(h).Value().(*T)).Repr()
		},
	}

	tp, err := cpython.NewNativeType(b.name, hooks)
	if err != nil {
		return nil, err
	}
	typeObj := FromOwned(tp)

	for _, def := range b.methods {
		if err := bindMethod(typeObj, def); err != nil {
			typeObj.Close()
			return nil, err
		}
	}

	return UncheckedTyped[TagType](typeObj), nil
}

// bindMethod exposes def as an instance method: the boundary function binds
// through the descriptor protocol so the instance arrives as the first
// argument of the tuple.
func bindMethod(typeObj *Object, def methodDef) error {
	fnPtr, err := cpython.NewBoundaryFunction(def.name, def.doc, wrapFailing(def.fn), true)
	if err != nil {
		return err
	}
	fnObj := FromOwned(fnPtr)
	defer fnObj.Close()

	m, err := cpython.NewInstanceMethod(fnObj.Raw())
	if err != nil {
		return err
	}
	method := FromOwned(m)
	defer method.Close()

	return cpython.SetAttrString(typeObj.Raw(), def.name, method.Raw())
}

type funcDef struct {
	name    string
	doc     string
	fn      cpython.RawBoundaryFunc
	failing bool
}

// ModuleBuilder accumulates function definitions and registers them with a
// fresh module object atomically: Build either produces a module carrying
// every definition or nothing at all.
type ModuleBuilder struct {
	name  string
	funcs []funcDef
}

// NewModuleBuilder starts a builder for a module with the given name.
func NewModuleBuilder(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// Def adds a plain native function.
func (b *ModuleBuilder) Def(name, doc string, fn Func) *ModuleBuilder {
	b.funcs = append(b.funcs, funcDef{name: name, doc: doc, fn: wrapPlain(fn)})
	return b
}

// DefFailing adds a fallible native function: the boundary wrapper acquires
// the lock state, and an error return becomes the interpreter's pending
// exception.
func (b *ModuleBuilder) DefFailing(name, doc string, fn FailingFunc) *ModuleBuilder {
	b.funcs = append(b.funcs, funcDef{name: name, doc: doc, fn: wrapFailing(fn), failing: true})
	return b
}

// Build materializes the module and registers every accumulated function.
func (b *ModuleBuilder) Build() (*Typed[TagModule], error) {
	if b.name == "" {
		return nil, errors.InvalidInput(errors.PhaseTypeBuild, "module name cannot be empty")
	}

	// Create all function objects before touching the module so a late
	// failure leaves no half-registered module behind.
	fnObjs := make([]*Object, 0, len(b.funcs))
	closeAll := func() {
		for _, f := range fnObjs {
			f.Close()
		}
	}
	for _, def := range b.funcs {
		p, err := cpython.NewBoundaryFunction(def.name, def.doc, def.fn, def.failing)
		if err != nil {
			closeAll()
			return nil, err
		}
		fnObjs = append(fnObjs, FromOwned(p))
	}

	mp, err := cpython.NewModule(b.name)
	if err != nil {
		closeAll()
		return nil, err
	}
	mod := UncheckedTyped[TagModule](FromOwned(mp))

	for i, def := range b.funcs {
		if err := ModuleAdd(mod, def.name, fnObjs[i]); err != nil {
			for _, f := range fnObjs[i+1:] {
				f.Close()
			}
			mod.Close()
			return nil, err
		}
	}
	return mod, nil
}

// MethodTable accumulates method entries for a native type and, once
// complete, builds the type and installs it into a module's namespace.
type MethodTable[T Payload] struct {
	builder *TypeBuilder[T]
}

// NewMethodTable starts a method table for a type with the given name.
func NewMethodTable[T Payload](typeName string) *MethodTable[T] {
	return &MethodTable[T]{builder: NewTypeBuilder[T](typeName)}
}

// Def adds a method entry.
func (mt *MethodTable[T]) Def(name, doc string, fn FailingFunc) *MethodTable[T] {
	mt.builder.Def(name, doc, fn)
	return mt
}

// AddTo builds the type and adds the finished type object into the owning
// module's namespace under the given name.
func (mt *MethodTable[T]) AddTo(mod *Typed[TagModule], name string) error {
	typeObj, err := mt.builder.Build()
	if err != nil {
		return err
	}
	return ModuleAdd(mod, name, typeObj.Obj())
}

func typeName[T any]() string {
	var v T
	return fmt.Sprintf("%T", v)
}
