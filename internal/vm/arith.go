package vm

import (
	"math"

	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execArith implements ADD, SUB, MUL, DIV, MOD, EXP with integer fast
// paths and overflow promotion to boxed float. MUL's fast path is guarded
// by value.MultiplyMax to avoid overflowing the host int32 multiply;
// MOD's fast path excludes integer remainders that would actually be
// -0.0 (zero remainder with a negative dividend), which must follow the
// float path to produce the correctly-signed zero.
func (m *Machine) execArith(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	b := f.PopValue()
	a := f.PopValue()

	if op == bytecode.OpAdd && (a.IsString() || b.IsString()) {
		as, err := m.Values.ToString(a)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		bs, err := m.Values.ToString(b)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		return value.MakeString(as + bs), unwindResult{}, nil
	}

	if a.IsInt() && b.IsInt() {
		ai, bi := int64(a.AsInt()), int64(b.AsInt())
		switch op {
		case bytecode.OpAdd:
			return value.MakeInt32(ai + bi), unwindResult{}, nil
		case bytecode.OpSub:
			return value.MakeInt32(ai - bi), unwindResult{}, nil
		case bytecode.OpMul:
			if abs(ai) <= value.MultiplyMax && abs(bi) <= value.MultiplyMax {
				return value.MakeInt32(ai * bi), unwindResult{}, nil
			}
		case bytecode.OpMod:
			if bi != 0 && !(ai%bi == 0 && ai < 0) {
				return value.MakeInt32(ai % bi), unwindResult{}, nil
			}
		}
	}

	af, err := m.Values.ToNumber(a)
	if err != nil {
		return value.Value{}, unwindResult{}, err
	}
	bf, err := m.Values.ToNumber(b)
	if err != nil {
		return value.Value{}, unwindResult{}, err
	}

	switch op {
	case bytecode.OpAdd:
		return value.MakeNumber(af + bf), unwindResult{}, nil
	case bytecode.OpSub:
		return value.MakeNumber(af - bf), unwindResult{}, nil
	case bytecode.OpMul:
		return value.MakeNumber(af * bf), unwindResult{}, nil
	case bytecode.OpDiv:
		return value.MakeNumber(af / bf), unwindResult{}, nil
	case bytecode.OpMod:
		return value.MakeNumber(math.Mod(af, bf)), unwindResult{}, nil
	default: // OpExp
		return value.MakeNumber(math.Pow(af, bf)), unwindResult{}, nil
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// execBitwise implements the bitwise family: two tagged ints take a
// raw-word path that preserves the tag, anything else goes through the
// full number-to-int32 bitwise-logic conversion.
func (m *Machine) execBitwise(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	if op == bytecode.OpBitNot {
		a := f.PopValue()
		if a.IsInt() {
			return value.MakeInt(^a.AsInt()), unwindResult{}, nil
		}
		n, err := m.Values.ToNumber(a)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		return value.MakeInt(^int32(int64(n))), unwindResult{}, nil
	}

	b := f.PopValue()
	a := f.PopValue()
	if a.IsInt() && b.IsInt() {
		ai, bi := a.AsInt(), b.AsInt()
		switch op {
		case bytecode.OpBitOr:
			return value.MakeInt(ai | bi), unwindResult{}, nil
		case bytecode.OpBitXor:
			return value.MakeInt(ai ^ bi), unwindResult{}, nil
		case bytecode.OpBitAnd:
			return value.MakeInt(ai & bi), unwindResult{}, nil
		case bytecode.OpLeftShift:
			return value.MakeInt(ai << (uint32(bi) & 31)), unwindResult{}, nil
		case bytecode.OpRightShift:
			return value.MakeInt(ai >> (uint32(bi) & 31)), unwindResult{}, nil
		case bytecode.OpUnsRightShift:
			return value.MakeInt32(int64(uint32(ai) >> (uint32(bi) & 31))), unwindResult{}, nil
		}
	}

	af, err := m.Values.ToNumber(a)
	if err != nil {
		return value.Value{}, unwindResult{}, err
	}
	bf, err := m.Values.ToNumber(b)
	if err != nil {
		return value.Value{}, unwindResult{}, err
	}
	ai, bi := int32(int64(af)), int32(int64(bf))
	switch op {
	case bytecode.OpBitOr:
		return value.MakeInt(ai | bi), unwindResult{}, nil
	case bytecode.OpBitXor:
		return value.MakeInt(ai ^ bi), unwindResult{}, nil
	case bytecode.OpBitAnd:
		return value.MakeInt(ai & bi), unwindResult{}, nil
	case bytecode.OpLeftShift:
		return value.MakeInt(ai << (uint32(bi) & 31)), unwindResult{}, nil
	case bytecode.OpRightShift:
		return value.MakeInt(ai >> (uint32(bi) & 31)), unwindResult{}, nil
	default: // OpUnsRightShift
		return value.MakeInt32(int64(uint32(ai) >> (uint32(bi) & 31))), unwindResult{}, nil
	}
}

// execUnary implements PLUS, MINUS, NOT, VOID, TYPEOF.
func (m *Machine) execUnary(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	v := f.PopValue()
	switch op {
	case bytecode.OpPlus:
		n, err := m.Values.ToNumber(v)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		return value.MakeNumber(n), unwindResult{}, nil
	case bytecode.OpMinus:
		if v.IsInt() {
			return value.MakeInt32(-int64(v.AsInt())), unwindResult{}, nil
		}
		n, err := m.Values.ToNumber(v)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		return value.MakeNumber(-n), unwindResult{}, nil
	case bytecode.OpNot:
		return value.MakeBool(!m.Values.ToBoolean(v)), unwindResult{}, nil
	case bytecode.OpVoid:
		return value.UndefinedValue, unwindResult{}, nil
	default: // OpTypeof
		return value.MakeString(m.Values.TypeOf(v)), unwindResult{}, nil
	}
}

// execIncrDecr implements the pre/post increment/decrement family for an
// already-resolved numeric operand on the stack; PUSH/PUT_BLOCK routing
// of the pre- vs post- value is the caller's (compiler's) responsibility
// via which opcode variant and put-disposition it selects - this handler
// always returns the new value, and INCR/DECR's identifier/property
// variants are split at the decode-table operand-shape level rather than
// here.
func (m *Machine) execIncrDecr(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	v := f.PopValue()
	var n float64
	var err error
	if v.IsInt() {
		n = float64(v.AsInt())
	} else {
		n, err = m.Values.ToNumber(v)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
	}
	if op == bytecode.OpIncr {
		return value.MakeNumber(n + 1), unwindResult{}, nil
	}
	return value.MakeNumber(n - 1), unwindResult{}, nil
}
