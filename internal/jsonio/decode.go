// Package jsonio implements the JSON parser and encoder (C3): a decoder
// that parses one value from the front of a buffer and reports the bytes
// it consumed (a truncated value is an error, not a request for more
// input), a depth-aware pretty-print encoder, and a
// length calculator that by design agrees with the encoder byte-for-byte
// (spec.md §4.3, §8).
package jsonio

import (
	"fmt"
	"strconv"

	"github.com/flowpbx/ovcore/internal/ovcerr"
	"github.com/flowpbx/ovcore/internal/utf8"
	"github.com/flowpbx/ovcore/internal/value"
)

type decoder struct {
	buf []byte
	pos int
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.buf) && isSpace(d.buf[d.pos]) {
		d.pos++
	}
}

func (d *decoder) peek() (byte, bool) {
	if d.pos >= len(d.buf) {
		return 0, false
	}
	return d.buf[d.pos], true
}

// Decode parses exactly one JSON value from the front of buf.
//
// If reuse is non-nil and already of the parsed variant, it is cleared
// and reused as the destination node; if reuse is non-nil but of a
// different variant, Decode returns ovcerr.ErrStateMismatch and leaves
// reuse untouched. If reuse is nil, a new node is allocated.
//
// On success it returns the resulting node and the number of bytes
// consumed from buf (which may be less than len(buf): trailing bytes are
// the caller's concern, e.g. whitespace-then-more-input in a streaming
// transport).
func Decode(buf []byte, reuse *value.Value) (*value.Value, int, error) {
	d := &decoder{buf: buf}
	d.skipSpace()

	b, ok := d.peek()
	if !ok {
		return nil, 0, fmt.Errorf("jsonio: empty input: %w", ovcerr.ErrMalformedInput)
	}

	var kind value.Kind
	switch {
	case b == '{':
		kind = value.Object
	case b == '[':
		kind = value.Array
	case b == '"':
		kind = value.String
	case b == 'n':
		kind = value.Null
	case b == 't':
		kind = value.True
	case b == 'f':
		kind = value.False
	case b == '-' || (b >= '0' && b <= '9'):
		kind = value.Number
	default:
		return nil, 0, fmt.Errorf("jsonio: unexpected byte %q at %d: %w", b, d.pos, ovcerr.ErrMalformedInput)
	}

	if reuse != nil {
		if reuse.Kind() != kind {
			return nil, 0, fmt.Errorf("jsonio: reuse node is %s, parsed value is %s: %w", reuse.Kind(), kind, ovcerr.ErrStateMismatch)
		}
		reuse.Clear()
	}

	var out *value.Value
	var err error

	switch kind {
	case value.Object:
		out, err = d.decodeObject(reuse)
	case value.Array:
		out, err = d.decodeArray(reuse)
	case value.String:
		out, err = d.decodeString(reuse)
	case value.Null:
		out, err = d.decodeLiteral("null", value.NewNull, reuse)
	case value.True:
		out, err = d.decodeLiteral("true", func() *value.Value { return value.NewBool(true) }, reuse)
	case value.False:
		out, err = d.decodeLiteral("false", func() *value.Value { return value.NewBool(false) }, reuse)
	case value.Number:
		out, err = d.decodeNumber(reuse)
	}

	if err != nil {
		return nil, 0, err
	}
	return out, d.pos, nil
}

func (d *decoder) decodeLiteral(lit string, fresh func() *value.Value, reuse *value.Value) (*value.Value, error) {
	if d.pos+len(lit) > len(d.buf) || string(d.buf[d.pos:d.pos+len(lit)]) != lit {
		return nil, fmt.Errorf("jsonio: expected %q at %d: %w", lit, d.pos, ovcerr.ErrMalformedInput)
	}
	d.pos += len(lit)
	if reuse != nil {
		return reuse, nil
	}
	return fresh(), nil
}

func (d *decoder) decodeObject(reuse *value.Value) (*value.Value, error) {
	out := reuse
	if out == nil {
		out = value.NewObject()
	}

	d.pos++ // consume '{'
	d.skipSpace()

	if b, ok := d.peek(); ok && b == '}' {
		d.pos++
		return out, nil
	}

	for {
		d.skipSpace()
		b, ok := d.peek()
		if !ok || b != '"' {
			return nil, fmt.Errorf("jsonio: expected string key at %d: %w", d.pos, ovcerr.ErrMalformedInput)
		}
		key, err := d.scanString()
		if err != nil {
			return nil, err
		}

		d.skipSpace()
		b, ok = d.peek()
		if !ok || b != ':' {
			return nil, fmt.Errorf("jsonio: expected ':' at %d: %w", d.pos, ovcerr.ErrMalformedInput)
		}
		d.pos++
		d.skipSpace()

		if out.ObjectGet(key) != nil {
			return nil, fmt.Errorf("jsonio: duplicate key %q at %d: %w", key, d.pos, ovcerr.ErrMalformedInput)
		}

		child, n, err := Decode(d.buf[d.pos:], nil)
		if err != nil {
			return nil, err
		}
		d.pos += n
		out.ObjectSet(key, child)

		d.skipSpace()
		b, ok = d.peek()
		if !ok {
			return nil, fmt.Errorf("jsonio: unterminated object: %w", ovcerr.ErrMalformedInput)
		}
		if b == ',' {
			d.pos++
			continue
		}
		if b == '}' {
			d.pos++
			return out, nil
		}
		return nil, fmt.Errorf("jsonio: expected ',' or '}' at %d: %w", d.pos, ovcerr.ErrMalformedInput)
	}
}

func (d *decoder) decodeArray(reuse *value.Value) (*value.Value, error) {
	out := reuse
	if out == nil {
		out = value.NewArray()
	}

	d.pos++ // consume '['
	d.skipSpace()

	if b, ok := d.peek(); ok && b == ']' {
		d.pos++
		return out, nil
	}

	for {
		d.skipSpace()
		child, n, err := Decode(d.buf[d.pos:], nil)
		if err != nil {
			return nil, err
		}
		d.pos += n
		out.ArrayPush(child)

		d.skipSpace()
		b, ok := d.peek()
		if !ok {
			return nil, fmt.Errorf("jsonio: unterminated array: %w", ovcerr.ErrMalformedInput)
		}
		if b == ',' {
			d.pos++
			continue
		}
		if b == ']' {
			d.pos++
			return out, nil
		}
		return nil, fmt.Errorf("jsonio: expected ',' or ']' at %d: %w", d.pos, ovcerr.ErrMalformedInput)
	}
}

func (d *decoder) decodeString(reuse *value.Value) (*value.Value, error) {
	s, err := d.scanString()
	if err != nil {
		return nil, err
	}
	if reuse != nil {
		reuse.SetString(s)
		return reuse, nil
	}
	return value.NewString(s), nil
}

// scanString consumes a quoted string literal (including the surrounding
// quotes) and returns its unescaped contents.
func (d *decoder) scanString() (string, error) {
	start := d.pos
	d.pos++ // consume opening quote

	var out []byte
	for {
		if d.pos >= len(d.buf) {
			return "", fmt.Errorf("jsonio: unterminated string starting at %d: %w", start, ovcerr.ErrMalformedInput)
		}
		b := d.buf[d.pos]

		if b < 0x20 {
			return "", fmt.Errorf("jsonio: unescaped control byte %#x at %d: %w", b, d.pos, ovcerr.ErrMalformedInput)
		}

		if b == '"' {
			d.pos++
			if !utf8.Validate(out) {
				return "", fmt.Errorf("jsonio: string payload is not valid UTF-8: %w", ovcerr.ErrMalformedInput)
			}
			return string(out), nil
		}

		if b == '\\' {
			d.pos++
			if d.pos >= len(d.buf) {
				return "", fmt.Errorf("jsonio: dangling escape at %d: %w", d.pos, ovcerr.ErrMalformedInput)
			}
			esc := d.buf[d.pos]
			switch esc {
			case '"':
				out = append(out, '"')
				d.pos++
			case '\\':
				out = append(out, '\\')
				d.pos++
			case '/':
				out = append(out, '/')
				d.pos++
			case 'b':
				out = append(out, '\b')
				d.pos++
			case 'f':
				out = append(out, '\f')
				d.pos++
			case 'n':
				out = append(out, '\n')
				d.pos++
			case 'r':
				out = append(out, '\r')
				d.pos++
			case 't':
				out = append(out, '\t')
				d.pos++
			case 'u':
				d.pos++
				cp, err := d.scanUnicodeEscape()
				if err != nil {
					return "", err
				}
				enc, err := utf8.EncodeCodePoint(cp)
				if err != nil {
					return "", fmt.Errorf("jsonio: invalid \\u escape at %d: %w", d.pos, ovcerr.ErrMalformedInput)
				}
				out = append(out, enc...)
			default:
				return "", fmt.Errorf("jsonio: invalid escape %q at %d: %w", esc, d.pos, ovcerr.ErrMalformedInput)
			}
			continue
		}

		out = append(out, b)
		d.pos++
	}
}

func (d *decoder) scanUnicodeEscape() (rune, error) {
	if d.pos+4 > len(d.buf) {
		return 0, fmt.Errorf("jsonio: truncated \\u escape at %d: %w", d.pos, ovcerr.ErrMalformedInput)
	}
	hex := string(d.buf[d.pos : d.pos+4])
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("jsonio: invalid \\u escape %q at %d: %w", hex, d.pos, ovcerr.ErrMalformedInput)
	}
	d.pos += 4
	return rune(n), nil
}

func isStructuralOrSpace(b byte) bool {
	switch b {
	case ',', '}', ']', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (d *decoder) decodeNumber(reuse *value.Value) (*value.Value, error) {
	start := d.pos

	if b, ok := d.peek(); ok && b == '-' {
		d.pos++
	}

	intStart := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == intStart {
		return nil, fmt.Errorf("jsonio: number with no integer part at %d: %w", start, ovcerr.ErrMalformedInput)
	}

	if b, ok := d.peek(); ok && b == '.' {
		d.pos++
		fracStart := d.pos
		for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
			d.pos++
		}
		if d.pos == fracStart {
			return nil, fmt.Errorf("jsonio: bare '.' with no fractional digits at %d: %w", start, ovcerr.ErrMalformedInput)
		}
	}

	if b, ok := d.peek(); ok && (b == 'e' || b == 'E') {
		d.pos++
		if b, ok := d.peek(); ok && (b == '+' || b == '-') {
			d.pos++
		}
		expStart := d.pos
		for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
			d.pos++
		}
		if d.pos == expStart {
			return nil, fmt.Errorf("jsonio: malformed exponent at %d: %w", start, ovcerr.ErrMalformedInput)
		}
	}

	if d.pos < len(d.buf) && !isStructuralOrSpace(d.buf[d.pos]) {
		return nil, fmt.Errorf("jsonio: trailing garbage after number at %d: %w", d.pos, ovcerr.ErrMalformedInput)
	}

	n, err := strconv.ParseFloat(string(d.buf[start:d.pos]), 64)
	if err != nil {
		return nil, fmt.Errorf("jsonio: invalid number %q: %w", d.buf[start:d.pos], ovcerr.ErrMalformedInput)
	}

	if reuse != nil {
		reuse.SetNumber(n)
		return reuse, nil
	}
	return value.NewNumber(n), nil
}
