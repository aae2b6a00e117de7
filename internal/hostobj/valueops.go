package hostobj

import (
	"fmt"
	"strconv"

	"ecmavm/internal/value"
)

func (s *Store) ToBoolean(v value.Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull():
		return false
	case v.IsBool():
		return v.AsBool()
	case v.IsInt():
		return v.AsInt() != 0
	case v.IsFloat():
		f := v.AsFloat()
		return f != 0 && f == f
	case v.IsString():
		return v.AsString() != ""
	default:
		return true
	}
}

func (s *Store) ToNumber(v value.Value) (float64, error) {
	switch {
	case v.IsInt():
		return float64(v.AsInt()), nil
	case v.IsFloat():
		return v.AsFloat(), nil
	case v.IsBool():
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case v.IsNull():
		return 0, nil
	case v.IsUndefined():
		return nan(), nil
	case v.IsString():
		s := v.AsString()
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nan(), nil
		}
		return f, nil
	default:
		return nan(), nil
	}
}

func nan() float64 {
	var z float64
	return z / z
}

func (s *Store) ToString(v value.Value) (string, error) {
	switch {
	case v.IsString():
		return v.AsString(), nil
	case v.IsUndefined():
		return "undefined", nil
	case v.IsNull():
		return "null", nil
	case v.IsBool():
		if v.AsBool() {
			return "true", nil
		}
		return "false", nil
	case v.IsInt():
		return fmt.Sprintf("%d", v.AsInt()), nil
	case v.IsFloat():
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64), nil
	case v.IsObject():
		if a, ok := asArray(v); ok {
			out := ""
			for i, e := range a.Elements {
				if i > 0 {
					out += ","
				}
				if !e.IsArrayHole() && !e.IsUndefined() && !e.IsNull() {
					es, _ := s.ToString(e)
					out += es
				}
			}
			return out, nil
		}
		return "[object Object]", nil
	default:
		return "", nil
	}
}

func (s *Store) ToPropertyKey(v value.Value) (value.Value, error) {
	if v.IsString() || v.IsSymbol() {
		return v, nil
	}
	str, err := s.ToString(v)
	if err != nil {
		return value.Value{}, err
	}
	return value.MakeString(str), nil
}

func (s *Store) TypeOf(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "object"
	case v.IsBool():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsString():
		return "string"
	case v.IsSymbol():
		return "symbol"
	case v.IsObject():
		if s.IsCallable(v) {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

// StrictEquals implements === : same type, no coercion, NaN never equals
// itself, pointer/const identity for non-numeric reference types.
func (s *Store) StrictEquals(a, b value.Value) bool {
	if a.IsNumber() && b.IsNumber() {
		af, _ := s.ToNumber(a)
		bf, _ := s.ToNumber(b)
		return af == bf
	}
	if a.IsString() && b.IsString() {
		return a.AsString() == b.AsString()
	}
	return value.Same(a, b)
}

// AbstractEquals implements == : numeric/string cross-coercion, null ==
// undefined, booleans coerce to number first.
func (s *Store) AbstractEquals(a, b value.Value) (bool, error) {
	if a.IsNullOrUndefined() && b.IsNullOrUndefined() {
		return true, nil
	}
	if a.IsNullOrUndefined() != b.IsNullOrUndefined() {
		return false, nil
	}
	if (a.IsNumber() && b.IsNumber()) || (a.IsString() && b.IsString()) {
		return s.StrictEquals(a, b), nil
	}
	if a.IsBool() {
		af, _ := s.ToNumber(a)
		return s.AbstractEquals(value.MakeNumber(af), b)
	}
	if b.IsBool() {
		bf, _ := s.ToNumber(b)
		return s.AbstractEquals(a, value.MakeNumber(bf))
	}
	if a.IsNumber() && b.IsString() {
		bf, _ := s.ToNumber(b)
		return s.AbstractEquals(a, value.MakeNumber(bf))
	}
	if a.IsString() && b.IsNumber() {
		af, _ := s.ToNumber(a)
		return s.AbstractEquals(value.MakeNumber(af), b)
	}
	return value.Same(a, b), nil
}

func (s *Store) InstanceOf(v, ctor value.Value) (bool, error) {
	fn, ok := objAsFunction(ctor)
	if !ok {
		return false, notCallable
	}
	if !v.IsObject() {
		return false, nil
	}
	proto := fn.Prototype
	cur := s.GetPrototype(v)
	for cur.IsObject() {
		if value.Same(cur, proto) {
			return true, nil
		}
		cur = s.GetPrototype(cur)
	}
	return false, nil
}
