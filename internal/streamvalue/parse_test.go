package streamvalue

import "testing"

func TestParseCompleteScalars(t *testing.T) {
	v, n, outcome := Parse([]byte("true"))
	if outcome != Complete || n != 4 || !v.Bool() {
		t.Fatalf("got v=%v n=%d outcome=%v", v, n, outcome)
	}

	v, n, outcome = Parse([]byte(`"hi" `))
	if outcome != Complete || n != 4 || v.String() != "hi" {
		t.Fatalf("got v=%v n=%d outcome=%v", v, n, outcome)
	}
}

func TestParseCompleteObjectAndArray(t *testing.T) {
	v, n, outcome := Parse([]byte(`{"a":1,"b":[true,2]}`))
	if outcome != Complete {
		t.Fatalf("expected Complete, got %v", outcome)
	}
	if n != len(`{"a":1,"b":[true,2]}`) {
		t.Fatalf("consumed %d, want full length", n)
	}
	b := v.Get("b")
	if b == nil || len(b.Elements()) != 2 {
		t.Fatalf("expected b to be a 2-element array, got %v", b)
	}
}

func TestParseIncompleteObjectAdvancesRemainder(t *testing.T) {
	_, n, outcome := Parse([]byte(`{"a":1,`))
	if outcome != Incomplete {
		t.Fatalf("expected Incomplete, got %v", outcome)
	}
	if n == 0 {
		t.Fatalf("expected remainder to have advanced past the valid prefix")
	}
}

func TestParseIncompleteStringWaitsForClosingQuote(t *testing.T) {
	_, _, outcome := Parse([]byte(`"abc`))
	if outcome != Incomplete {
		t.Fatalf("expected Incomplete, got %v", outcome)
	}
}

func TestParseMalformedControlByteInString(t *testing.T) {
	_, _, outcome := Parse([]byte("\"a\x01b\""))
	if outcome != Malformed {
		t.Fatalf("expected Malformed, got %v", outcome)
	}
}

func TestParseDuplicateKeyIsMalformed(t *testing.T) {
	_, _, outcome := Parse([]byte(`{"a":1,"a":2}`))
	if outcome != Malformed {
		t.Fatalf("expected Malformed, got %v", outcome)
	}
}

func TestParseNumberLeadingPlus(t *testing.T) {
	v, n, outcome := Parse([]byte("+5,"))
	if outcome != Complete || n != 2 || v.Number() != 5 {
		t.Fatalf("got v=%v n=%d outcome=%v", v, n, outcome)
	}
}

func TestParseNumberPartialExponentIsIncomplete(t *testing.T) {
	for _, in := range []string{"1e", "1e-", "1e+"} {
		_, _, outcome := Parse([]byte(in))
		if outcome != Incomplete {
			t.Errorf("Parse(%q): expected Incomplete, got %v", in, outcome)
		}
	}
}

func TestParseNumberCompletesAfterExponentDigit(t *testing.T) {
	v, n, outcome := Parse([]byte("1e5,"))
	if outcome != Complete || n != 3 || v.Number() != 1e5 {
		t.Fatalf("got v=%v n=%d outcome=%v", v, n, outcome)
	}
}

func TestParseUnicodeEscape(t *testing.T) {
	v, _, outcome := Parse([]byte("\"caf\\u00e9\""))
	if outcome != Complete {
		t.Fatalf("expected Complete, got %v", outcome)
	}
	if v.String() != "café" {
		t.Fatalf("got %q, want café", v.String())
	}
}

func TestParseUTF8PayloadPassesThrough(t *testing.T) {
	v, _, outcome := Parse([]byte(`"café"`))
	if outcome != Complete {
		t.Fatalf("expected Complete, got %v", outcome)
	}
	if v.String() != "café" {
		t.Fatalf("got %q, want café", v.String())
	}
}

func TestParseMalformedLeadByte(t *testing.T) {
	_, _, outcome := Parse([]byte("@"))
	if outcome != Malformed {
		t.Fatalf("expected Malformed, got %v", outcome)
	}
}
