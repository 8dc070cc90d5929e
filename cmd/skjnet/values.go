package main

import (
	"fmt"

	"github.com/vic/skjnet/pkg/codec"
)

// fromJSON converts a value produced by encoding/json into the host shape
// the codec expects for ty.
func fromJSON(ty codec.Type, v any) (any, error) {
	mismatch := func() error {
		return fmt.Errorf("value %v does not fit %s", v, ty)
	}
	switch ty.Kind {
	case codec.KindUnit:
		if m, ok := v.(map[string]any); ok && len(m) == 0 {
			return struct{}{}, nil
		}
		if v == nil {
			return struct{}{}, nil
		}
		return nil, mismatch()
	case codec.KindBool:
		return v, nil
	case codec.KindByte, codec.KindNum:
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return nil, mismatch()
		}
		if ty.Kind == codec.KindByte {
			if f < 0 || f > 255 {
				return nil, mismatch()
			}
			return byte(f), nil
		}
		return int(f), nil
	case codec.KindBytes:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch()
		}
		return []byte(s), nil
	case codec.KindProd:
		xs, ok := v.([]any)
		if !ok || len(xs) != 2 {
			return nil, mismatch()
		}
		a, err := fromJSON(ty.Args[0], xs[0])
		if err != nil {
			return nil, err
		}
		b, err := fromJSON(ty.Args[1], xs[1])
		if err != nil {
			return nil, err
		}
		return codec.Tuple{Fst: a, Snd: b}, nil
	case codec.KindSum:
		m, ok := v.(map[string]any)
		if !ok || len(m) != 1 {
			return nil, mismatch()
		}
		if x, ok := m["left"]; ok {
			a, err := fromJSON(ty.Args[0], x)
			return codec.Either{Value: a}, err
		}
		if x, ok := m["right"]; ok {
			b, err := fromJSON(ty.Args[1], x)
			return codec.Either{Right: true, Value: b}, err
		}
		return nil, mismatch()
	case codec.KindMaybe:
		if v == nil {
			return codec.Option{}, nil
		}
		x, err := fromJSON(ty.Args[0], v)
		return codec.Option{Some: true, Value: x}, err
	case codec.KindList:
		xs, ok := v.([]any)
		if !ok {
			return nil, mismatch()
		}
		out := make([]any, len(xs))
		for i, x := range xs {
			y, err := fromJSON(ty.Args[0], x)
			if err != nil {
				return nil, err
			}
			out[i] = y
		}
		return out, nil
	}
	return nil, mismatch()
}

// toJSON is the inverse of fromJSON on decoded values.
func toJSON(ty codec.Type, v any) any {
	switch ty.Kind {
	case codec.KindUnit:
		return map[string]any{}
	case codec.KindBytes:
		return string(v.([]byte))
	case codec.KindProd:
		p := v.(codec.Tuple)
		return []any{toJSON(ty.Args[0], p.Fst), toJSON(ty.Args[1], p.Snd)}
	case codec.KindSum:
		e := v.(codec.Either)
		if e.Right {
			return map[string]any{"right": toJSON(ty.Args[1], e.Value)}
		}
		return map[string]any{"left": toJSON(ty.Args[0], e.Value)}
	case codec.KindMaybe:
		o := v.(codec.Option)
		if !o.Some {
			return nil
		}
		return toJSON(ty.Args[0], o.Value)
	case codec.KindList:
		xs := v.([]any)
		out := make([]any, len(xs))
		for i, x := range xs {
			out[i] = toJSON(ty.Args[0], x)
		}
		return out
	}
	return v
}
