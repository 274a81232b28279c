// Package codecfactory implements the codec registry (C9): a name →
// generator mapping, a lazily-created global default instance, and
// dynamic-library-backed plugin loading via Go's stdlib plugin package -
// the closest in-ecosystem analogue to the original's dlopen/dlsym
// two-symbol contract (see DESIGN.md).
package codecfactory

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sync"

	"github.com/flowpbx/ovcore/internal/codec"
	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/value"
)

// Generator builds a new codec instance for a given SSRC/SSID and JSON
// parameters.
type Generator func(ssid uint32, parameters *value.Value) (codec.Codec, error)

// entry pairs a generator with the plugin handle that installed it, if
// any - dropped and replaced whenever the name is reinstalled.
type entry struct {
	generator Generator
	plugin    *plugin.Plugin
}

// Factory is a name -> generator registry.
type Factory struct {
	mu      sync.Mutex
	entries map[string]entry
}

// New returns an empty Factory.
func New() *Factory {
	return &Factory{entries: make(map[string]entry)}
}

// Install registers generator under name, returning the previously
// installed generator (nil if none). Any dynamic-library handle
// previously owned by this name is dropped.
func (f *Factory) Install(name string, generator Generator) Generator {
	f.mu.Lock()
	defer f.mu.Unlock()

	old := f.entries[name]
	f.entries[name] = entry{generator: generator}
	return old.generator
}

// Find returns the generator installed under name, or nil if none.
func (f *Factory) Find(name string) Generator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[name].generator
}

// Create looks up name and invokes its generator with (ssid, parameters).
func (f *Factory) Create(name string, ssid uint32, parameters *value.Value) (codec.Codec, error) {
	gen := f.Find(name)
	if gen == nil {
		return nil, fmt.Errorf("codecfactory: no codec installed under %q: %w", name, ovcerr.ErrNotFound)
	}
	return gen(ssid, parameters)
}

// CreateFromJSON reads the "codec" key from parameters and dispatches to
// Create with the remaining keys intact, per spec.md §4.8's
// factory-from-JSON contract.
func (f *Factory) CreateFromJSON(ssid uint32, parameters *value.Value) (codec.Codec, error) {
	if parameters == nil {
		return nil, fmt.Errorf("codecfactory: nil parameters: %w", ovcerr.ErrInvalidArgument)
	}
	nameNode := parameters.ObjectGet("codec")
	if nameNode == nil || !nameNode.IsString() {
		return nil, fmt.Errorf("codecfactory: parameters missing string \"codec\" key: %w", ovcerr.ErrMalformedInput)
	}
	return f.Create(nameNode.String(), ssid, parameters)
}

// pluginSymbolID is the exported symbol name a plugin must provide: a
// func() string returning the codec's registry id.
const pluginSymbolID = "OvcorePluginCodecID"

// pluginSymbolCreate is the exported symbol name a plugin must provide: a
// Generator-compatible func(uint32, *value.Value) (codec.Codec, error).
const pluginSymbolCreate = "OvcorePluginCodecCreate"

// InstallFromSO opens the shared object at path, resolves its two
// exported symbols, and installs the codec under the id it reports.
// Handle ownership is tied to the registry entry: reinstalling the name
// (or a future InstallFromSO targeting it) drops this handle.
func (f *Factory) InstallFromSO(path string) (string, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return "", fmt.Errorf("codecfactory: open plugin %s: %w", path, err)
	}

	idSym, err := p.Lookup(pluginSymbolID)
	if err != nil {
		return "", fmt.Errorf("codecfactory: plugin %s missing %s: %w", path, pluginSymbolID, err)
	}
	idFn, ok := idSym.(func() string)
	if !ok {
		return "", fmt.Errorf("codecfactory: plugin %s: %s has wrong signature: %w", path, pluginSymbolID, ovcerr.ErrMalformedInput)
	}

	createSym, err := p.Lookup(pluginSymbolCreate)
	if err != nil {
		return "", fmt.Errorf("codecfactory: plugin %s missing %s: %w", path, pluginSymbolCreate, err)
	}
	createFn, ok := createSym.(func(uint32, *value.Value) (codec.Codec, error))
	if !ok {
		return "", fmt.Errorf("codecfactory: plugin %s: %s has wrong signature: %w", path, pluginSymbolCreate, ovcerr.ErrMalformedInput)
	}

	id := idFn()

	f.mu.Lock()
	f.entries[id] = entry{generator: Generator(createFn), plugin: p}
	f.mu.Unlock()

	return id, nil
}

// InstallFromSODir walks dir, attempting InstallFromSO on every regular
// file, and returns the count successfully installed. Files that aren't
// valid plugins are skipped rather than aborting the walk.
func (f *Factory) InstallFromSODir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("codecfactory: read dir %s: %w", dir, err)
	}

	installed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, err := f.InstallFromSO(filepath.Join(dir, e.Name())); err == nil {
			installed++
		}
	}
	return installed, nil
}

var (
	defaultMu  sync.Mutex
	defaultFac *Factory
)

// Default returns the process-wide default factory, lazily creating and
// pre-registering it with the standard codecs on first use.
func Default() *Factory {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFac == nil {
		defaultFac = Standard()
	}
	return defaultFac
}

// SetDefault replaces the process-wide default factory. Passing nil tears
// it down explicitly, so the next Default call builds a fresh one.
func SetDefault(f *Factory) {
	defaultMu.Lock()
	defaultFac = f
	defaultMu.Unlock()
}
