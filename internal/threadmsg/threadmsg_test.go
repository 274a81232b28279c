package threadmsg

import (
	"testing"

	"github.com/flowpbx/ovcore/internal/value"
)

func TestNewGenericMessage(t *testing.T) {
	payload := value.NewNumber(7)
	m := New(payload)
	if m.Kind() != Generic {
		t.Fatalf("expected Generic, got %v", m.Kind())
	}
	if m.Payload != payload {
		t.Fatalf("expected payload to round-trip")
	}
}

func TestCastRejectsForeignPointer(t *testing.T) {
	var notAMessage int
	if Cast(&notAMessage) != nil {
		t.Fatalf("expected Cast to reject a non-Message pointer")
	}
}

func TestCastAcceptsConstructedMessage(t *testing.T) {
	m := New(nil)
	if Cast(m) != m {
		t.Fatalf("expected Cast to accept a validly-constructed Message")
	}
}

func TestFreeInvalidatesPayload(t *testing.T) {
	m := New(value.NewString("x"))
	m.Free()
	if m.Payload != nil {
		t.Fatalf("expected Free to clear the payload")
	}
	if Cast(m) != nil {
		t.Fatalf("expected Cast to reject a freed message")
	}
}

func TestNewWithSocketCarriesHandle(t *testing.T) {
	m := NewWithSocket(nil, 42)
	if !m.HasSock || m.Socket != 42 {
		t.Fatalf("expected socket handle 42, got HasSock=%v Socket=%d", m.HasSock, m.Socket)
	}
}
