package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execCompare implements the comparison family. Integer/integer pairs
// compare by raw-word order instead of converting through float64.
func (m *Machine) execCompare(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	b := f.PopValue()
	a := f.PopValue()

	switch op {
	case bytecode.OpStrictEqual:
		return value.MakeBool(m.Values.StrictEquals(a, b)), unwindResult{}, nil
	case bytecode.OpStrictNotEqual:
		return value.MakeBool(!m.Values.StrictEquals(a, b)), unwindResult{}, nil
	case bytecode.OpEqual:
		eq, err := m.Values.AbstractEquals(a, b)
		return value.MakeBool(eq), unwindResult{}, err
	case bytecode.OpNotEqual:
		eq, err := m.Values.AbstractEquals(a, b)
		return value.MakeBool(!eq), unwindResult{}, err
	case bytecode.OpInstanceof:
		res, err := m.Values.InstanceOf(a, b)
		return value.MakeBool(res), unwindResult{}, err
	case bytecode.OpIn:
		name, err := m.Values.ToPropertyKey(a)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		has, err := m.Objects.HasProperty(b, name)
		return value.MakeBool(has), unwindResult{}, err
	}

	if a.IsInt() && b.IsInt() {
		c := value.RawCompare(a, b)
		return value.MakeBool(relOp(op, c)), unwindResult{}, nil
	}

	af, aerr := m.Values.ToNumber(a)
	bf, berr := m.Values.ToNumber(b)
	if aerr != nil {
		return value.Value{}, unwindResult{}, aerr
	}
	if berr != nil {
		return value.Value{}, unwindResult{}, berr
	}
	c := 0
	switch {
	case af < bf:
		c = -1
	case af > bf:
		c = 1
	}
	if af != af || bf != bf { // NaN
		return value.FalseValue, unwindResult{}, nil
	}
	return value.MakeBool(relOp(op, c)), unwindResult{}, nil
}

func relOp(op bytecode.OpCode, c int) bool {
	switch op {
	case bytecode.OpLess:
		return c < 0
	case bytecode.OpGreater:
		return c > 0
	case bytecode.OpLessEqual:
		return c <= 0
	default: // OpGreaterEqual
		return c >= 0
	}
}
