package jsonio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowpbx/ovcore/internal/value"
)

// Config is a frozen record of textual fragments used for stringification
// (spec.md §3 "Stringify-Config"): intros/outros/separators per value
// variant, plus whether indentation is emitted at all.
type Config struct {
	Indent       string // unit of indentation, repeated per depth level
	ItemSep      string // between array/object elements (after the comma)
	KeyValueSep  string // between a key and its value
	Newline      string // emitted after '{'/'[' and before each item, when Indented
	Indented     bool
	TopIntro     string
	TopOutro     string
}

// Minimal produces no whitespace at all.
func Minimal() Config {
	return Config{
		Indent:      "",
		ItemSep:     "",
		KeyValueSep: ":",
		Newline:     "",
		Indented:    false,
	}
}

// Default produces tab-indented, newline-separated output.
func Default() Config {
	return Config{
		Indent:      "\t",
		ItemSep:     "",
		KeyValueSep: ":",
		Newline:     "\n",
		Indented:    true,
	}
}

// KeyOrder orders an object's keys for emission. Default (nil) is
// byte-ascending.
type KeyOrder func(keys []string) []string

func defaultKeyOrder(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	// value.Value.SortedKeys already sorts; here we just need a stable
	// ascending sort over an arbitrary key slice.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Encode stringifies v per cfg into a new string. If order is nil,
// object keys are emitted byte-ascending.
func Encode(v *value.Value, cfg Config, order KeyOrder) (string, error) {
	var sb strings.Builder
	if order == nil {
		order = defaultKeyOrder
	}
	if err := encodeInto(&sb, v, cfg, order, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Calculate computes exactly the length Encode would produce for the same
// (v, cfg, order) without materialising the string. Encode and Calculate
// MUST agree (spec.md §4.3, §8); they share the same recursive traversal
// logic below to guarantee it.
func Calculate(v *value.Value, cfg Config, order KeyOrder) (int, error) {
	if order == nil {
		order = defaultKeyOrder
	}
	var counter lengthCounter
	if err := encodeInto(&counter, v, cfg, order, 0); err != nil {
		return 0, err
	}
	return counter.n, nil
}

// writer is the minimal surface both strings.Builder and lengthCounter
// satisfy, so Encode and Calculate run the identical traversal.
type writer interface {
	WriteString(s string) (int, error)
}

type lengthCounter struct{ n int }

func (c *lengthCounter) WriteString(s string) (int, error) {
	c.n += len(s)
	return len(s), nil
}

func encodeInto(w writer, v *value.Value, cfg Config, order KeyOrder, depth int) error {
	if v == nil {
		w.WriteString("null")
		return nil
	}

	switch v.Kind() {
	case value.Null:
		w.WriteString("null")
	case value.True:
		w.WriteString("true")
	case value.False:
		w.WriteString("false")
	case value.Number:
		w.WriteString(formatNumber(v.Number()))
	case value.String:
		w.WriteString(quoteString(v.String()))
	case value.Array:
		return encodeArray(w, v, cfg, order, depth)
	case value.Object:
		return encodeObject(w, v, cfg, order, depth)
	default:
		return fmt.Errorf("jsonio: cannot encode value of kind %v", v.Kind())
	}
	return nil
}

func indentOf(cfg Config, depth int) string {
	if !cfg.Indented {
		return ""
	}
	return strings.Repeat(cfg.Indent, depth)
}

func encodeArray(w writer, v *value.Value, cfg Config, order KeyOrder, depth int) error {
	elems := v.Elements()
	if len(elems) == 0 {
		w.WriteString("[]")
		return nil
	}

	w.WriteString("[")
	w.WriteString(cfg.Newline)
	for i, child := range elems {
		w.WriteString(indentOf(cfg, depth+1))
		if err := encodeInto(w, child, cfg, order, depth+1); err != nil {
			return err
		}
		if i != len(elems)-1 {
			w.WriteString(",")
			w.WriteString(cfg.ItemSep)
			w.WriteString(cfg.Newline)
		}
	}
	w.WriteString(cfg.Newline)
	w.WriteString(indentOf(cfg, depth))
	w.WriteString("]")
	return nil
}

func encodeObject(w writer, v *value.Value, cfg Config, order KeyOrder, depth int) error {
	keys := order(v.Keys())
	if len(keys) == 0 {
		w.WriteString("{}")
		return nil
	}

	w.WriteString("{")
	w.WriteString(cfg.Newline)
	for i, key := range keys {
		w.WriteString(indentOf(cfg, depth+1))
		w.WriteString(quoteString(key))
		w.WriteString(cfg.KeyValueSep)
		if cfg.Indented {
			w.WriteString(" ")
		}
		if err := encodeInto(w, v.ObjectGet(key), cfg, order, depth+1); err != nil {
			return err
		}
		if i != len(keys)-1 {
			w.WriteString(",")
			w.WriteString(cfg.ItemSep)
			w.WriteString(cfg.Newline)
		}
	}
	w.WriteString(cfg.Newline)
	w.WriteString(indentOf(cfg, depth))
	w.WriteString("}")
	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
