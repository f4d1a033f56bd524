package runtime

import (
	goerrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/python-runtime/errors"
)

// point is the native payload used across the builder tests.
type point struct {
	X, Y int64
}

func (p point) Repr() string {
	return fmt.Sprintf("Point(%d, %d)", p.X, p.Y)
}

func TestTypeBuilder_DefaultConstructAndRepr(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Obj().Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	if got := inst.String(); got != "Point(0, 0)" {
		t.Errorf("repr = %q, want \"Point(0, 0)\"", got)
	}
	if got := inst.TypeName(); got != "Point" {
		t.Errorf("type name = %q, want \"Point\"", got)
	}
}

func TestTypeBuilder_ReinitReplacesPayload(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Obj().Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	p, err := PayloadOf[point](inst)
	if err != nil {
		t.Fatalf("resolve payload: %v", err)
	}
	p.X, p.Y = 9, 9

	// Re-running __init__ on the live instance drops the old payload and
	// installs a fresh default one.
	r, err := inst.CallMethod("__init__")
	if err != nil {
		t.Fatalf("re-run __init__: %v", err)
	}
	r.Close()

	if got := inst.String(); got != "Point(0, 0)" {
		t.Errorf("repr after re-init = %q, want \"Point(0, 0)\"", got)
	}
}

func TestTypeBuilder_ConstructorRejectsArguments(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	_, err = typeObj.Obj().Call(1, 2)
	if err == nil {
		t.Fatal("construction with arguments did not fail")
	}
	if !strings.Contains(err.Error(), "positional arguments") {
		t.Errorf("error %q does not describe the arity mismatch", err.Error())
	}
}

func TestPayloadOf_RoundTrip(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Obj().Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	p, err := PayloadOf[point](inst)
	if err != nil {
		t.Fatalf("resolve payload: %v", err)
	}
	p.X, p.Y = 3, 4

	// The mutation is visible through the interpreter's repr path.
	if got := inst.String(); got != "Point(3, 4)" {
		t.Errorf("repr after mutation = %q, want \"Point(3, 4)\"", got)
	}
}

func TestPayloadOf_WrongPayloadType(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Obj().Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	type other struct{}
	_, err = PayloadOf[other](inst)
	var e *errors.Error
	if !goerrors.As(err, &e) || e.Kind != errors.KindTypeMismatch {
		t.Errorf("wrong payload type: got %v, want kind %s", err, errors.KindTypeMismatch)
	}
}

func TestPayloadOf_PlainObjectHasNoPayload(t *testing.T) {
	n, err := From(1)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer n.Close()

	if _, err := PayloadOf[point](n); err == nil {
		t.Error("payload resolution on a plain int did not fail")
	}
}

func TestTypeBuilder_MethodReceivesInstance(t *testing.T) {
	typeObj, err := NewTypeBuilder[point]("Point").
		Def("shift", "shift the point by (dx, dy)", func(args Tuple) (*Object, error) {
			self, err := TuplePayload[point](args, 0)
			if err != nil {
				return nil, err
			}
			dx, err := args.Int64(1)
			if err != nil {
				return nil, err
			}
			dy, err := args.Int64(2)
			if err != nil {
				return nil, err
			}
			self.X += dx
			self.Y += dy
			return nil, nil
		}).
		Build()
	if err != nil {
		t.Fatalf("build type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Obj().Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	r, err := inst.CallMethod("shift", 5, 7)
	if err != nil {
		t.Fatalf("call shift: %v", err)
	}
	r.Close()

	if got := inst.String(); got != "Point(5, 7)" {
		t.Errorf("repr after shift = %q, want \"Point(5, 7)\"", got)
	}
}

func TestModuleBuilder_PlainFunction(t *testing.T) {
	mod, err := NewModuleBuilder("hostmod").
		Def("answer", "the canonical constant", func(args Tuple) *Object {
			v, err := From(42)
			if err != nil {
				return nil
			}
			return v
		}).
		Build()
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer mod.Close()

	fn, err := mod.Attr("answer")
	if err != nil {
		t.Fatalf("look up function: %v", err)
	}
	defer fn.Close()

	r, err := fn.Call()
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	defer r.Close()
	if v, _ := r.AsInt64(); v != 42 {
		t.Errorf("answer() = %d, want 42", v)
	}
}

func TestModuleBuilder_FailingFunctionBridgesError(t *testing.T) {
	mod, err := NewModuleBuilder("hostmod").
		DefFailing("parse", "always rejects", func(args Tuple) (*Object, error) {
			return nil, errors.InvalidInput(errors.PhaseBoundary, "bad input")
		}).
		Build()
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer mod.Close()

	fn, err := mod.Attr("parse")
	if err != nil {
		t.Fatalf("look up function: %v", err)
	}
	defer fn.Close()

	_, err = fn.Call()
	if err == nil {
		t.Fatal("failing function did not surface an error")
	}
	if !strings.Contains(err.Error(), "bad input") {
		t.Errorf("bridged error %q lost the original message", err.Error())
	}
}

func TestModuleBuilder_FunctionUsableFromInterpreter(t *testing.T) {
	mod, err := NewModuleBuilder("hostmath").
		DefFailing("double", "double an int", func(args Tuple) (*Object, error) {
			if args.Len() != 1 {
				return nil, errors.Arity(errors.PhaseBoundary, "double", 1, args.Len())
			}
			v, err := args.Int64(0)
			if err != nil {
				return nil, err
			}
			return From(v * 2)
		}).
		Build()
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer mod.Close()

	// Expose the module object to interpreter code and call it from there.
	mainMod, err := Import("__main__")
	if err != nil {
		t.Fatalf("import __main__: %v", err)
	}
	defer mainMod.Close()
	if err := mainMod.SetAttr("hostmath", mod.Obj()); err != nil {
		t.Fatalf("publish module: %v", err)
	}

	r, err := Eval("hostmath.double(21)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	defer r.Close()
	if v, _ := r.AsInt64(); v != 42 {
		t.Errorf("hostmath.double(21) = %d, want 42", v)
	}

	// The arity check travels through the interpreter as a real exception.
	if _, err := Eval("hostmath.double(1, 2)"); err == nil {
		t.Error("arity violation through interpreter code did not fail")
	}
}

func TestMethodTable_AddTo(t *testing.T) {
	mod, err := NewModuleBuilder("geo").Build()
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer mod.Close()

	mt := NewMethodTable[point]("Point").
		Def("magnitude_sq", "squared distance from origin", func(args Tuple) (*Object, error) {
			self, err := TuplePayload[point](args, 0)
			if err != nil {
				return nil, err
			}
			return From(self.X*self.X + self.Y*self.Y)
		})
	if err := mt.AddTo(mod, "Point"); err != nil {
		t.Fatalf("install type: %v", err)
	}

	typeObj, err := mod.Attr("Point")
	if err != nil {
		t.Fatalf("look up type: %v", err)
	}
	defer typeObj.Close()

	inst, err := typeObj.Call()
	if err != nil {
		t.Fatalf("construct instance: %v", err)
	}
	defer inst.Close()

	p, err := PayloadOf[point](inst)
	if err != nil {
		t.Fatalf("resolve payload: %v", err)
	}
	p.X, p.Y = 3, 4

	r, err := inst.CallMethod("magnitude_sq")
	if err != nil {
		t.Fatalf("call magnitude_sq: %v", err)
	}
	defer r.Close()
	if v, _ := r.AsInt64(); v != 25 {
		t.Errorf("magnitude_sq = %d, want 25", v)
	}
}

func TestTypeBuilder_EmptyNameRejected(t *testing.T) {
	if _, err := NewTypeBuilder[point]("").Build(); err == nil {
		t.Error("empty type name accepted")
	}
	if _, err := NewModuleBuilder("").Build(); err == nil {
		t.Error("empty module name accepted")
	}
}
