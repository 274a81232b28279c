package value

import "testing"

func TestObjectSetReplacesAndDetaches(t *testing.T) {
	obj := NewObject()
	a := NewNumber(1)
	obj.ObjectSet("x", a)
	if got := obj.ObjectGet("x"); got != a {
		t.Fatalf("ObjectGet(x) = %v, want %v", got, a)
	}

	b := NewNumber(2)
	obj.ObjectSet("x", b)
	if got := obj.ObjectGet("x"); got != b {
		t.Fatalf("ObjectGet(x) after replace = %v, want %v", got, b)
	}
	if a.Parent() != nil {
		t.Errorf("replaced child still has a parent")
	}
	if len(obj.Keys()) != 1 {
		t.Errorf("expected exactly one key after replace, got %v", obj.Keys())
	}
}

func TestArrayPushAndGetIsOneIndexed(t *testing.T) {
	arr := NewArray()
	arr.ArrayPush(NewNumber(10))
	arr.ArrayPush(NewNumber(20))

	if got := arr.ArrayGet(1); got.Number() != 10 {
		t.Errorf("ArrayGet(1) = %v, want 10", got.Number())
	}
	if got := arr.ArrayGet(2); got.Number() != 20 {
		t.Errorf("ArrayGet(2) = %v, want 20", got.Number())
	}
	if arr.ArrayGet(0) != nil {
		t.Errorf("ArrayGet(0) should be nil (1-indexed)")
	}
	if arr.ArrayGet(3) != nil {
		t.Errorf("ArrayGet(3) out of range should be nil")
	}
}

func TestFreeDetachesAndInvalidatesDescendants(t *testing.T) {
	root := NewObject()
	child := NewArray()
	grandchild := NewNumber(42)
	child.ArrayPush(grandchild)
	root.ObjectSet("c", child)

	child.Free()

	if Valid(child) {
		t.Errorf("child should be invalid after Free")
	}
	if Valid(grandchild) {
		t.Errorf("grandchild should be invalid after parent Free")
	}
	if root.ObjectGet("c") != nil {
		t.Errorf("root should no longer reference freed child")
	}
}

func TestCopyIsDeep(t *testing.T) {
	src := NewObject()
	src.ObjectSet("a", NewNumber(1))
	arr := NewArray()
	arr.ArrayPush(NewBool(true))
	src.ObjectSet("b", arr)

	dst := Copy(nil, src)
	if !Match(src, dst) {
		t.Fatalf("copy does not match source")
	}

	// Mutating the copy's nested array must not affect the source.
	dstArr := dst.ObjectGet("b")
	dstArr.ArrayPush(NewNull())
	if src.ObjectGet("b").Len() == dstArr.Len() {
		t.Errorf("copy is not deep: mutation leaked into source")
	}
}

func TestMatchIgnoresObjectKeyOrder(t *testing.T) {
	a := NewObject()
	a.ObjectSet("x", NewNumber(1))
	a.ObjectSet("y", NewNumber(2))

	b := NewObject()
	b.ObjectSet("y", NewNumber(2))
	b.ObjectSet("x", NewNumber(1))

	if !Match(a, b) {
		t.Errorf("Match should ignore object key insertion order")
	}
	if a.Keys()[0] != "x" || b.Keys()[0] != "y" {
		t.Errorf("Keys() should still preserve each object's own insertion order")
	}
}

func TestClearResetsPerVariant(t *testing.T) {
	n := NewNumber(7)
	n.Clear()
	if n.Number() != 0 {
		t.Errorf("Clear on number: got %v, want 0", n.Number())
	}

	s := NewString("hi")
	s.Clear()
	if s.String() != "" {
		t.Errorf("Clear on string: got %q, want empty", s.String())
	}

	arr := NewArray()
	arr.ArrayPush(NewNull())
	arr.Clear()
	if arr.Len() != 0 {
		t.Errorf("Clear on array: Len() = %d, want 0", arr.Len())
	}
}

func TestForEachAbortsOnFalse(t *testing.T) {
	arr := NewArray()
	for i := 0; i < 5; i++ {
		arr.ArrayPush(NewNumber(float64(i)))
	}
	visited := 0
	arr.ForEachArray(func(i int, v *Value) bool {
		visited++
		return i < 2
	})
	if visited != 3 {
		t.Errorf("visited = %d, want 3 (abort after index 2)", visited)
	}
}
