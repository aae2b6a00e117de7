package vm

import (
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// GetValue implements get_value(object, property).
//
//  1. Fast path: object is a fast array, property is a small non-negative
//     int, index in range, and the slot isn't a hole.
//  2. Otherwise coerce property to a property name and fall back to the
//     object collaborator's general property get.
//  3. undefined/null bases raise TypeError.
//  4. Any other base is coerced to a property-name base first.
func (m *Machine) GetValue(object, property value.Value) (value.Value, error) {
	if object.IsObject() {
		if property.IsInt() && property.AsInt() >= 0 {
			if v, hole, ok := m.Objects.FastArrayGet(object, int(property.AsInt())); ok && !hole {
				return v, nil
			}
		}
		name, err := m.Values.ToPropertyKey(property)
		if err != nil {
			return value.Value{}, err
		}
		return m.cachedGetProperty(object, name)
	}

	if object.IsNullOrUndefined() {
		kind := "null"
		if object.IsUndefined() {
			kind = "undefined"
		}
		propStr, _ := m.Values.ToString(property)
		return value.Value{}, vmerr.TypeError("cannot read property '%s' of %s", propStr, kind)
	}

	boxed, err := m.coerceToObjectBase(object)
	if err != nil {
		return value.Value{}, err
	}
	name, err := m.Values.ToPropertyKey(property)
	if err != nil {
		return value.Value{}, err
	}
	return m.cachedGetProperty(boxed, name)
}

// SetValue implements set_value(base, property, value, strict). A
// non-object, non-nullish base is boxed and the property write proceeds
// against the box, which is then dropped (so the write is not visible
// through the primitive). The box is not marked non-extensible. A lexical
// environment base instead performs set_mutable_binding.
func (m *Machine) SetValue(base, property, v value.Value, strict bool) error {
	defer base.Free()
	defer property.Free()

	if base.IsObject() {
		if env, ok := base.AsObject().(interface {
			SetMutableBinding(string, value.Value) error
		}); ok {
			name, err := m.Values.ToString(property)
			if err != nil {
				return err
			}
			return env.SetMutableBinding(name, v)
		}
	}

	if base.IsNullOrUndefined() {
		kind := "null"
		if base.IsUndefined() {
			kind = "undefined"
		}
		propStr, _ := m.Values.ToString(property)
		return vmerr.TypeError("cannot set property '%s' of %s", propStr, kind)
	}

	target := base
	if !base.IsObject() {
		boxed, err := m.coerceToObjectBase(base)
		if err != nil {
			return err
		}
		target = boxed
	}

	name, err := m.Values.ToPropertyKey(property)
	if err != nil {
		return err
	}
	return m.setProperty(target, name, v, strict)
}

// coerceToObjectBase boxes a primitive (number, string, symbol, boolean)
// into a temporary object so property lookups on primitives (e.g.
// "abc".length) resolve through the usual object path.
func (m *Machine) coerceToObjectBase(v value.Value) (value.Value, error) {
	box := m.Objects.NewPlainObject()
	switch {
	case v.IsString():
		if err := m.Objects.SetProperty(box, value.MakeString("__primitive__"), v, false); err != nil {
			return value.Value{}, err
		}
		if n, ok := utf16Len(v.AsString()); ok {
			if err := m.Objects.SetProperty(box, value.MakeString("length"), value.MakeInt32(int64(n)), false); err != nil {
				return value.Value{}, err
			}
		}
	default:
		if err := m.Objects.SetProperty(box, value.MakeString("__primitive__"), v, false); err != nil {
			return value.Value{}, err
		}
	}
	return box, nil
}

func utf16Len(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n, true
}
