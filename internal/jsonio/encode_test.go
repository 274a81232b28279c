package jsonio

import (
	"testing"

	"github.com/flowpbx/ovcore/internal/value"
)

func TestEncodeCalculateAgree(t *testing.T) {
	v := value.NewObject()
	v.ObjectSet("b", value.NewNumber(1))
	arr := value.NewArray()
	arr.ArrayPush(value.NewBool(true))
	arr.ArrayPush(value.NewString("x"))
	v.ObjectSet("a", arr)

	for _, cfg := range []Config{Minimal(), Default()} {
		s, err := Encode(v, cfg, nil)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		n, err := Calculate(v, cfg, nil)
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if n != len(s) {
			t.Errorf("Calculate=%d, len(Encode)=%d for %q", n, len(s), s)
		}
	}
}

func TestEncodeMinimalHasNoWhitespace(t *testing.T) {
	v := value.NewObject()
	v.ObjectSet("a", value.NewNumber(1))
	v.ObjectSet("b", value.NewBool(true))

	s, err := Encode(v, Minimal(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			t.Fatalf("minimal output contains whitespace: %q", s)
		}
	}
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	src := mustDecode(t, `{"a":1,"b":[true,1,{"x":false}]}`)

	s, err := Encode(src, Minimal(), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, n, err := Decode([]byte(s), nil)
	if err != nil {
		t.Fatalf("Decode(encoded): %v", err)
	}
	if n != len(s) {
		t.Fatalf("consumed %d of %d", n, len(s))
	}
	if !value.Match(src, got) {
		t.Fatalf("round trip mismatch: %q", s)
	}
}

func TestEncodeDefaultKeyOrderIsByteAscending(t *testing.T) {
	v := value.NewObject()
	v.ObjectSet("z", value.NewNumber(1))
	v.ObjectSet("a", value.NewNumber(2))

	s, err := Encode(v, Minimal(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"a":2,"z":1}`
	if s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}
