package runtime

import (
	"strings"
	"testing"
)

func TestList_MulByTwo(t *testing.T) {
	list, err := NewList(1, 2, 3)
	if err != nil {
		t.Fatalf("build list: %v", err)
	}
	defer list.Close()

	two, err := From(2)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer two.Close()

	doubled, err := list.Obj().Mul(two)
	if err != nil {
		t.Fatalf("multiply list: %v", err)
	}
	defer doubled.Close()

	want, err := NewList(1, 2, 3, 1, 2, 3)
	if err != nil {
		t.Fatalf("build expected list: %v", err)
	}
	defer want.Close()

	if !doubled.Equal(want.Obj()) {
		t.Errorf("list * 2 = %s, want %s", doubled, want.Obj())
	}
}

func TestArithmetic(t *testing.T) {
	five, err := From(5)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer five.Close()

	tests := []struct {
		name string
		op   func() (*Object, error)
		want string
	}{
		{"add", func() (*Object, error) { return five.Add(3) }, "8"},
		{"sub", func() (*Object, error) { return five.Sub(3) }, "2"},
		{"mul", func() (*Object, error) { return five.Mul(3) }, "15"},
		{"truediv", func() (*Object, error) { return five.Div(2) }, "2.5"},
		{"floordiv", func() (*Object, error) { return five.FloorDiv(2) }, "2"},
		{"mod", func() (*Object, error) { return five.Mod(3) }, "2"},
		{"pow", func() (*Object, error) { return five.Pow(2) }, "25"},
		{"and", func() (*Object, error) { return five.BitAnd(3) }, "1"},
		{"or", func() (*Object, error) { return five.BitOr(2) }, "7"},
		{"xor", func() (*Object, error) { return five.BitXor(1) }, "4"},
		{"lshift", func() (*Object, error) { return five.LShift(1) }, "10"},
		{"rshift", func() (*Object, error) { return five.RShift(1) }, "2"},
		{"neg", five.Neg, "-5"},
		{"abs", five.Abs, "5"},
		{"invert", five.Invert, "-6"},
		{"radd", func() (*Object, error) { return five.RAdd(10) }, "15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.op()
			if err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			defer r.Close()
			if got := r.String(); got != tt.want {
				t.Errorf("result = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInPlaceOperators(t *testing.T) {
	n, err := From(5)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer n.Close()

	if err := n.AddAssign(3); err != nil {
		t.Fatalf("add assign: %v", err)
	}
	if v, _ := n.AsInt64(); v != 8 {
		t.Errorf("after += 3: %d, want 8", v)
	}

	if err := n.MulAssign(2); err != nil {
		t.Fatalf("mul assign: %v", err)
	}
	if v, _ := n.AsInt64(); v != 16 {
		t.Errorf("after *= 2: %d, want 16", v)
	}
}

func TestComparisons(t *testing.T) {
	three, err := From(3)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer three.Close()

	if lt, err := three.Lt(5); err != nil || !lt {
		t.Errorf("3 < 5 = %v, %v", lt, err)
	}
	if gt, err := three.Gt(5); err != nil || gt {
		t.Errorf("3 > 5 = %v, %v", gt, err)
	}
	if ge, err := three.Ge(3); err != nil || !ge {
		t.Errorf("3 >= 3 = %v, %v", ge, err)
	}
}

func TestAttrAccess(t *testing.T) {
	math, err := Import("math")
	if err != nil {
		t.Fatalf("import math: %v", err)
	}
	defer math.Close()

	pi, err := math.Attr("pi")
	if err != nil {
		t.Fatalf("get math.pi: %v", err)
	}
	defer pi.Close()

	v, err := pi.AsFloat64()
	if err != nil {
		t.Fatalf("convert pi: %v", err)
	}
	if v < 3.14 || v > 3.15 {
		t.Errorf("math.pi = %v", v)
	}

	if _, err := math.Attr("no_such_attr"); err == nil {
		t.Error("expected AttributeError for missing attribute")
	}
}

func TestSetAttr(t *testing.T) {
	ns, err := Eval("type('NS', (), {})()")
	if err != nil {
		t.Fatalf("build namespace object: %v", err)
	}
	defer ns.Close()

	if err := ns.SetAttr("field", 42); err != nil {
		t.Fatalf("set attribute: %v", err)
	}
	v, err := ns.Attr("field")
	if err != nil {
		t.Fatalf("get attribute back: %v", err)
	}
	defer v.Close()
	if got, _ := v.AsInt64(); got != 42 {
		t.Errorf("field = %d, want 42", got)
	}
}

func TestItemAccess(t *testing.T) {
	d, err := NewDict(map[string]any{"answer": 42})
	if err != nil {
		t.Fatalf("build dict: %v", err)
	}
	defer d.Close()

	v, err := d.Item("answer")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	defer v.Close()
	if got, _ := v.AsInt64(); got != 42 {
		t.Errorf("d[\"answer\"] = %d, want 42", got)
	}

	if err := d.SetItem("changed", "answer"); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if err := d.DelItem("answer"); err != nil {
		t.Fatalf("del item: %v", err)
	}
	if _, err := d.Item("answer"); err == nil {
		t.Error("expected KeyError after deletion")
	}
}

func TestItem_MultiKeyPacksTuple(t *testing.T) {
	d, err := Eval("{}")
	if err != nil {
		t.Fatalf("build dict: %v", err)
	}
	defer d.Close()

	// d[1, 2] = "cell" uses a tuple key, the interpreter's own convention
	// for multi-dimensional subscripts.
	if err := d.SetItem("cell", 1, 2); err != nil {
		t.Fatalf("set multi-key item: %v", err)
	}
	v, err := d.Item(1, 2)
	if err != nil {
		t.Fatalf("get multi-key item: %v", err)
	}
	defer v.Close()
	if got, _ := v.AsString(); got != "cell" {
		t.Errorf("d[1, 2] = %q, want \"cell\"", got)
	}
}

func TestItem_Slice(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	list, err := NewList(10, 20, 30, 40, 50)
	if err != nil {
		t.Fatalf("build list: %v", err)
	}
	defer list.Close()

	head, err := list.Item(Slice{Start: i64(0), Stop: i64(2)})
	if err != nil {
		t.Fatalf("slice list: %v", err)
	}
	defer head.Close()

	want, err := NewList(10, 20)
	if err != nil {
		t.Fatalf("build expected: %v", err)
	}
	defer want.Close()
	if !head.Equal(want.Obj()) {
		t.Errorf("list[0:2] = %s, want %s", head, want.Obj())
	}

	// Open bounds become None; step walks backwards.
	rev, err := list.Item(Slice{Step: i64(-1)})
	if err != nil {
		t.Fatalf("reverse slice: %v", err)
	}
	defer rev.Close()
	if got := rev.String(); got != "[50, 40, 30, 20, 10]" {
		t.Errorf("list[::-1] = %s", got)
	}
}

func TestLenAndTruth(t *testing.T) {
	list, err := NewList("a", "b", "c")
	if err != nil {
		t.Fatalf("build list: %v", err)
	}
	defer list.Close()

	n, err := list.Len()
	if err != nil || n != 3 {
		t.Errorf("Len() = %d, %v, want 3", n, err)
	}
	truth, err := list.Truth()
	if err != nil || !truth {
		t.Errorf("Truth() = %v, %v, want true", truth, err)
	}

	empty, err := NewList()
	if err != nil {
		t.Fatalf("build empty list: %v", err)
	}
	defer empty.Close()
	if truth, _ := empty.Truth(); truth {
		t.Error("empty list is truthy")
	}
}

func TestHashValue(t *testing.T) {
	// Small ints hash to themselves; a stable anchor for the contract.
	seven, err := From(7)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer seven.Close()
	if h := seven.HashValue(); h != 7 {
		t.Errorf("hash(7) = %d, want 7", h)
	}
}

func TestContains_WithDunderMethod(t *testing.T) {
	list, err := NewList(1, 2, 3)
	if err != nil {
		t.Fatalf("build list: %v", err)
	}
	defer list.Close()

	if ok, err := list.Contains(2); err != nil || !ok {
		t.Errorf("2 in [1,2,3] = %v, %v, want true", ok, err)
	}
	if ok, err := list.Contains(9); err != nil || ok {
		t.Errorf("9 in [1,2,3] = %v, %v, want false", ok, err)
	}
}

func TestContains_IterationFallback(t *testing.T) {
	// A plain iterator exposes no __contains__, forcing the linear scan.
	it, err := Eval("iter([1, 2, 3])")
	if err != nil {
		t.Fatalf("build iterator: %v", err)
	}
	defer it.Close()
	if it.HasAttr("__contains__") {
		t.Fatal("test subject unexpectedly has __contains__")
	}
	if ok, err := it.Contains(2); err != nil || !ok {
		t.Errorf("fallback containment = %v, %v, want true", ok, err)
	}

	// Exhaustion without a match terminates normally with false.
	it2, err := Eval("iter([1, 2, 3])")
	if err != nil {
		t.Fatalf("build iterator: %v", err)
	}
	defer it2.Close()
	if ok, err := it2.Contains(9); err != nil || ok {
		t.Errorf("fallback containment miss = %v, %v, want false", ok, err)
	}
}

func TestCall_PositionalAndKeyword(t *testing.T) {
	if err := Exec("def _add(a, b=0):\n    return a + b\n"); err != nil {
		t.Fatalf("define function: %v", err)
	}
	fn, err := Eval("_add")
	if err != nil {
		t.Fatalf("look up function: %v", err)
	}
	defer fn.Close()

	r, err := fn.Call(2, 3)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	defer r.Close()
	if v, _ := r.AsInt64(); v != 5 {
		t.Errorf("_add(2, 3) = %d, want 5", v)
	}

	rkw, err := fn.CallKw([]any{2}, map[string]any{"b": 10})
	if err != nil {
		t.Fatalf("call with keywords: %v", err)
	}
	defer rkw.Close()
	if v, _ := rkw.AsInt64(); v != 12 {
		t.Errorf("_add(2, b=10) = %d, want 12", v)
	}
}

func TestCall_ValuelessReturnsNone(t *testing.T) {
	if err := Exec("def _noop():\n    pass\n"); err != nil {
		t.Fatalf("define function: %v", err)
	}
	fn, err := Eval("_noop")
	if err != nil {
		t.Fatalf("look up function: %v", err)
	}
	defer fn.Close()

	r, err := fn.Call()
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	defer r.Close()
	if !r.IsNone() {
		t.Error("value-less call did not produce the None singleton")
	}
}

func TestCall_ExceptionBridgesMessage(t *testing.T) {
	if err := Exec("def _boom():\n    raise ValueError('kaboom')\n"); err != nil {
		t.Fatalf("define function: %v", err)
	}
	fn, err := Eval("_boom")
	if err != nil {
		t.Fatalf("look up function: %v", err)
	}
	defer fn.Close()

	_, err = fn.Call()
	if err == nil {
		t.Fatal("expected bridged exception")
	}
	if !strings.Contains(err.Error(), "ValueError") || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("bridged error %q missing class or message", err.Error())
	}
}

func TestCallMethod(t *testing.T) {
	s, err := From("a,b,c")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	defer s.Close()

	parts, err := s.CallMethod("split", ",")
	if err != nil {
		t.Fatalf("call split: %v", err)
	}
	defer parts.Close()
	if got := parts.String(); got != "['a', 'b', 'c']" {
		t.Errorf("split result = %s", got)
	}
}
