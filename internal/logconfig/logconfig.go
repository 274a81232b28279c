// Package logconfig decodes the hierarchical logging configuration
// contract from spec.md §6: a pure JSON→struct adapter. The logging
// backend itself stays an external collaborator (spec.md §1) - this
// package only parses what it would be told.
package logconfig

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowpbx/ovcore/internal/value"
)

// Defaults for file rotation, recovered from
// original_source/ov_config_log.c's compiled-in constants.
const (
	DefaultMessagesPerFile = 10000
	DefaultNumFiles        = 4
)

// FileTarget is a log sink: either a rotating file, or one of the two
// special stream values "stdout"/"stderr".
type FileTarget struct {
	Stream          string `mapstructure:"-"`
	File            string `mapstructure:"file"`
	MessagesPerFile int    `mapstructure:"messages_per_file"`
	NumFiles        int    `mapstructure:"num_files"`
}

// ModuleConfig overrides the top-level Config for one named module, and
// recursively for individual functions within it.
type ModuleConfig struct {
	Systemd   bool                    `mapstructure:"systemd"`
	File      *FileTarget             `mapstructure:"-"`
	Level     string                  `mapstructure:"level"`
	Functions map[string]ModuleConfig `mapstructure:"-"`
}

// Config is the fully decoded logging configuration.
type Config struct {
	Systemd bool                    `mapstructure:"systemd"`
	File    *FileTarget             `mapstructure:"-"`
	Format  string                  `mapstructure:"format"`
	Level   string                  `mapstructure:"level"`
	Custom  map[string]ModuleConfig `mapstructure:"-"`
}

// decodeFileTarget handles the "file" key's two shapes: the special
// stream strings "stdout"/"stderr", or an object with rotation settings.
func decodeFileTarget(node *value.Value) (*FileTarget, error) {
	if node == nil {
		return nil, nil
	}
	if node.IsString() {
		s := node.String()
		if s != "stdout" && s != "stderr" {
			return &FileTarget{File: s, MessagesPerFile: DefaultMessagesPerFile, NumFiles: DefaultNumFiles}, nil
		}
		return &FileTarget{Stream: s}, nil
	}
	if !node.IsObject() {
		return nil, fmt.Errorf("logconfig: \"file\" must be a string or object, got %s", node.Kind())
	}

	target := FileTarget{MessagesPerFile: DefaultMessagesPerFile, NumFiles: DefaultNumFiles}
	generic, err := value.ToGeneric(node)
	if err != nil {
		return nil, fmt.Errorf("logconfig: convert file target: %w", err)
	}
	if err := mapstructure.Decode(generic, &target); err != nil {
		return nil, fmt.Errorf("logconfig: decode file target: %w", err)
	}
	return &target, nil
}

func decodeModule(node *value.Value) (ModuleConfig, error) {
	var mc ModuleConfig
	if node == nil || !node.IsObject() {
		return mc, nil
	}

	generic, err := value.ToGeneric(node)
	if err != nil {
		return mc, fmt.Errorf("logconfig: convert module config: %w", err)
	}
	if err := mapstructure.Decode(generic, &mc); err != nil {
		return mc, fmt.Errorf("logconfig: decode module config: %w", err)
	}

	file, err := decodeFileTarget(node.ObjectGet("file"))
	if err != nil {
		return mc, err
	}
	mc.File = file

	if functionsNode := node.ObjectGet("functions"); functionsNode != nil && functionsNode.IsObject() {
		mc.Functions = make(map[string]ModuleConfig, functionsNode.Len())
		for _, name := range functionsNode.Keys() {
			fc, err := decodeModule(functionsNode.ObjectGet(name))
			if err != nil {
				return mc, fmt.Errorf("logconfig: function %q: %w", name, err)
			}
			mc.Functions[name] = fc
		}
	}
	return mc, nil
}

// Decode parses node into a Config. Keys absent from node inherit the
// zero value, which callers interpret as "inherit module-level or global
// settings" per spec.md §6. Unknown keys are ignored.
func Decode(node *value.Value) (Config, error) {
	var cfg Config
	if node == nil {
		return cfg, nil
	}
	if !node.IsObject() {
		return cfg, fmt.Errorf("logconfig: root must be an object, got %s", node.Kind())
	}

	generic, err := value.ToGeneric(node)
	if err != nil {
		return cfg, fmt.Errorf("logconfig: convert root: %w", err)
	}
	if err := mapstructure.Decode(generic, &cfg); err != nil {
		return cfg, fmt.Errorf("logconfig: decode root: %w", err)
	}

	file, err := decodeFileTarget(node.ObjectGet("file"))
	if err != nil {
		return cfg, err
	}
	cfg.File = file

	if customNode := node.ObjectGet("custom"); customNode != nil && customNode.IsObject() {
		cfg.Custom = make(map[string]ModuleConfig, customNode.Len())
		for _, name := range customNode.Keys() {
			mc, err := decodeModule(customNode.ObjectGet(name))
			if err != nil {
				return cfg, fmt.Errorf("logconfig: module %q: %w", name, err)
			}
			cfg.Custom[name] = mc
		}
	}
	return cfg, nil
}
