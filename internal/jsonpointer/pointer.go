// Package jsonpointer implements RFC 6901 JSON Pointer traversal over the
// C2 value tree (spec.md §4.4).
package jsonpointer

import (
	"strconv"
	"strings"

	"github.com/flowpbx/ovcore/internal/value"
)

// Get resolves pointer against root and returns the node it refers to, or
// nil if the path does not resolve (traversal into a non-container, or a
// missing key/index).
//
// An empty pointer returns root. A pointer consisting only of "/" returns
// nil: the single empty reference token means "look up key \"\"", which
// is absent unless explicitly set (spec.md §4.4, §9 Open Question (b) -
// this surprising behaviour is preserved intentionally, not a bug).
//
// The array pseudo-token "-" appends a new null child to the target array
// and returns it.
func Get(root *value.Value, pointer string) *value.Value {
	if pointer == "" {
		return root
	}
	if pointer[0] != '/' {
		return nil
	}

	current := root
	for _, rawToken := range strings.Split(pointer, "/")[1:] {
		token := unescape(rawToken)
		current = step(current, token)
		if current == nil {
			return nil
		}
	}
	return current
}

func unescape(token string) string {
	// Order matters: ~1 -> / must be applied before ~0 -> ~, per RFC 6901.
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

func step(current *value.Value, token string) *value.Value {
	if current == nil {
		return nil
	}

	switch current.Kind() {
	case value.Object:
		return current.ObjectGet(token)

	case value.Array:
		if token == "-" {
			child := value.NewNull()
			if !current.ArrayPush(child) {
				return nil
			}
			return child
		}
		idx, err := parseArrayIndex(token)
		if err != nil {
			return nil
		}
		// ArrayGet is 1-indexed internally; pointer indices are 0-indexed.
		return current.ArrayGet(idx + 1)

	default:
		return nil
	}
}

// parseArrayIndex accepts decimal digits only (leading zeros permitted),
// matching spec.md §4.4.
func parseArrayIndex(token string) (int, error) {
	if token == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	n, err := strconv.ParseUint(token, 10, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
