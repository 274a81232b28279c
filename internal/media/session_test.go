package media

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/flowpbx/ovcore/internal/codec/g711"
	"github.com/flowpbx/ovcore/internal/codecfactory"
	"github.com/flowpbx/ovcore/internal/eventloop"
	"github.com/flowpbx/ovcore/internal/rtpframe"
	"github.com/flowpbx/ovcore/internal/threadloop"
	"github.com/flowpbx/ovcore/internal/value"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func g711Params(law string) *value.Value {
	p := value.NewObject()
	p.ObjectSet("codec", value.NewString("G.711"))
	p.ObjectSet("law", value.NewString(law))
	return p
}

func sampleULawRTPPacket(t *testing.T) []byte {
	t.Helper()
	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	payload, err := g711.New(g711.ULaw).Encode(samples)
	if err != nil {
		t.Fatalf("encode fixture payload: %v", err)
	}
	raw := make([]byte, 12+len(payload))
	raw[0] = 0x80
	raw[1] = 0 // ulaw RTP payload type
	copy(raw[12:], payload)
	return raw
}

func TestSessionDecodeEncodeRoundTrip(t *testing.T) {
	loop, err := eventloop.New()
	if err != nil {
		t.Fatalf("eventloop.New: %v", err)
	}
	defer loop.Close()

	go loop.Run()
	defer loop.Stop()

	received := make(chan *rtpframe.Frame, 1)
	output := func(frame *rtpframe.Frame) {
		received <- frame
	}

	factory := codecfactory.Standard()
	tlCfg := threadloop.DefaultConfig()
	tlCfg.NumThreads = 1

	session, err := NewSession(loop, tlCfg, factory, 1, g711Params("ulaw"), g711Params("ulaw"), output, testLogger())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if !session.Ingest(sampleULawRTPPacket(t)) {
		t.Fatalf("expected Ingest to accept a well-formed RTP packet")
	}

	select {
	case frame := <-received:
		if frame.PayloadType != 0 {
			t.Errorf("got payload type %d, want 0 (ulaw)", frame.PayloadType)
		}
		if len(frame.Raw) <= 12 {
			t.Errorf("expected a non-empty re-encoded payload")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for re-encoded frame")
	}

	stats := session.Stats()
	if stats.FramesIn != 1 || stats.FramesOut != 1 {
		t.Errorf("got stats %+v, want 1 frame in and out", stats)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSessionIngestRejectsShortPacket(t *testing.T) {
	loop, err := eventloop.New()
	if err != nil {
		t.Fatalf("eventloop.New: %v", err)
	}
	defer loop.Close()

	go loop.Run()
	defer loop.Stop()

	factory := codecfactory.Standard()
	tlCfg := threadloop.DefaultConfig()
	tlCfg.NumThreads = 1

	session, err := NewSession(loop, tlCfg, factory, 1, g711Params("ulaw"), g711Params("ulaw"), nil, testLogger())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close()

	if session.Ingest([]byte{1, 2, 3}) {
		t.Fatalf("expected Ingest to reject a short packet")
	}
	if session.Stats().FramesDropped != 1 {
		t.Errorf("got %d dropped frames, want 1", session.Stats().FramesDropped)
	}
}
