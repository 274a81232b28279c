package value

// ToGeneric converts v into the generic map[string]any/[]any/scalar shape
// that libraries such as mapstructure expect as a decode source. This is
// the one place this tree crosses into Go's untyped any world; config
// adapters (internal/vadconfig, internal/logconfig) are the callers.
func ToGeneric(v *Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.kind {
	case Null:
		return nil, nil
	case True:
		return true, nil
	case False:
		return false, nil
	case Number:
		return v.num, nil
	case String:
		return v.str, nil
	case Array:
		out := make([]any, len(v.arr))
		for i, c := range v.arr {
			g, err := ToGeneric(c)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case Object:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			g, err := ToGeneric(v.obj[k])
			if err != nil {
				return nil, err
			}
			out[k] = g
		}
		return out, nil
	default:
		return nil, nil
	}
}
