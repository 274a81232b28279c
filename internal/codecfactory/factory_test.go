package codecfactory

import (
	"errors"
	"testing"

	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

type stubCodec struct{}

func (stubCodec) TypeID() string                   { return "stub" }
func (stubCodec) SampleRateHertz() int              { return codec.InternalRateHertz }
func (stubCodec) RTPPayloadType() (int, bool)       { return 0, false }
func (stubCodec) GetParameters() *value.Value       { return value.NewObject() }
func (stubCodec) Encode(s []int16) ([]byte, error)  { return nil, nil }
func (stubCodec) Decode(seq uint32, p []byte) ([]int16, error) { return nil, nil }

func TestInstallAndFind(t *testing.T) {
	f := New()
	gen := func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		return stubCodec{}, nil
	}
	if old := f.Install("stub", gen); old != nil {
		t.Fatalf("expected no previous generator")
	}
	if f.Find("stub") == nil {
		t.Fatalf("expected to find installed generator")
	}
}

func TestInstallReturnsPrevious(t *testing.T) {
	f := New()
	first := func(ssid uint32, parameters *value.Value) (codec.Codec, error) { return stubCodec{}, nil }
	second := func(ssid uint32, parameters *value.Value) (codec.Codec, error) { return stubCodec{}, nil }

	f.Install("stub", first)
	old := f.Install("stub", second)
	if old == nil {
		t.Fatalf("expected previous generator to be returned")
	}
}

func TestCreateUnknownNameReturnsNotFound(t *testing.T) {
	f := New()
	if _, err := f.Create("nope", 1, nil); !errors.Is(err, ovcerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFromJSONDispatchesOnCodecKey(t *testing.T) {
	f := New()
	f.Install("stub", func(ssid uint32, parameters *value.Value) (codec.Codec, error) {
		return stubCodec{}, nil
	})

	params := value.NewObject()
	params.ObjectSet("codec", value.NewString("stub"))

	c, err := f.CreateFromJSON(1, params)
	if err != nil {
		t.Fatalf("CreateFromJSON: %v", err)
	}
	if c.TypeID() != "stub" {
		t.Fatalf("got %q, want stub", c.TypeID())
	}
}

func TestCreateFromJSONMissingCodecKeyIsMalformed(t *testing.T) {
	f := New()
	if _, err := f.CreateFromJSON(1, value.NewObject()); !errors.Is(err, ovcerr.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestStandardRegistersAllFourCodecs(t *testing.T) {
	f := Standard()
	for _, name := range []string{"raw", "PCM16", "G.711", "Opus"} {
		if f.Find(name) == nil {
			t.Errorf("expected %q to be pre-registered", name)
		}
	}
}

func TestDefaultIsLazyAndReplaceable(t *testing.T) {
	SetDefault(nil)
	d1 := Default()
	if d1 == nil {
		t.Fatalf("expected a default factory")
	}
	custom := New()
	SetDefault(custom)
	if Default() != custom {
		t.Fatalf("expected SetDefault to replace the default factory")
	}
	SetDefault(nil)
}

func TestInstallFromSODirOnEmptyDirInstallsNothing(t *testing.T) {
	f := New()
	n, err := f.InstallFromSODir(t.TempDir())
	if err != nil {
		t.Fatalf("InstallFromSODir: %v", err)
	}
	if n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}
