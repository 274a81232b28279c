package jsonpointer

import (
	"testing"

	"github.com/flowpbx/ovcore/internal/jsonio"
	"github.com/flowpbx/ovcore/internal/value"
)

func mustDecode(t *testing.T, in string) *value.Value {
	t.Helper()
	v, _, err := jsonio.Decode([]byte(in), nil)
	if err != nil {
		t.Fatalf("Decode(%q): %v", in, err)
	}
	return v
}

func TestGetEmptyPointerReturnsRoot(t *testing.T) {
	v := mustDecode(t, `{"a":1}`)
	if Get(v, "") != v {
		t.Fatalf("expected empty pointer to return root")
	}
}

func TestGetSingleSlashLooksUpEmptyKey(t *testing.T) {
	v := mustDecode(t, `{"a":1}`)
	if got := Get(v, "/"); got != nil {
		t.Fatalf("expected nil for \"/\" against object without an empty key, got %v", got)
	}
}

func TestGetObjectAndArrayTraversal(t *testing.T) {
	v := mustDecode(t, `{"a":{"b":[10,20,30]}}`)
	got := Get(v, "/a/b/1")
	if got == nil || got.Number() != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
}

func TestGetEscapedTokens(t *testing.T) {
	v := mustDecode(t, `{"a/b":{"c~d":1}}`)
	got := Get(v, "/a~1b/c~0d")
	if got == nil || got.Number() != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestGetArrayAppend(t *testing.T) {
	v := mustDecode(t, `{"arr":[1,2,3]}`)
	arr := v.ObjectGet("arr")

	got := Get(v, "/arr/-")
	if got == nil || !got.IsNull() {
		t.Fatalf("expected newly appended null child, got %v", got)
	}
	if arr.Len() != 4 {
		t.Fatalf("expected array to grow to size 4, got %d", arr.Len())
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	v := mustDecode(t, `{"a":1}`)
	if got := Get(v, "/missing"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestGetTraversalIntoScalarFails(t *testing.T) {
	v := mustDecode(t, `{"a":1}`)
	if got := Get(v, "/a/b"); got != nil {
		t.Fatalf("expected nil traversing into a scalar, got %v", got)
	}
}

func TestGetOutOfRangeArrayIndexReturnsNil(t *testing.T) {
	v := mustDecode(t, `[1,2,3]`)
	if got := Get(v, "/5"); got != nil {
		t.Fatalf("expected nil for out-of-range index, got %v", got)
	}
}
