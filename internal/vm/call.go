package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execCall implements CALL/CALL_PROP/CONSTRUCT/SPREAD_*/TYPE_OF. On
// exception, call returns the error and runInner turns it into a pending
// throw, so call's failure path goes through the same context-stack
// search every other exception uses.
func (m *Machine) execCall(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpCall, bytecode.OpCallProp:
		argc := int(f.Reader.ReadByte())
		args := popArgs(f, argc)
		var this value.Value
		if op == bytecode.OpCallProp {
			this = f.PopValue()
		} else {
			this = value.UndefinedValue
		}
		callee := f.PopValue()
		result, err := m.PerformCall(callee, this, args)
		return result, unwindResult{}, err

	case bytecode.OpConstruct:
		argc := int(f.Reader.ReadByte())
		args := popArgs(f, argc)
		callee := f.PopValue()
		result, err := m.PerformConstruct(callee, args)
		return result, unwindResult{}, err

	case bytecode.OpSpreadNew, bytecode.OpSpreadCall, bytecode.OpSpreadCallProp, bytecode.OpSpreadSuperCall:
		arr := f.PopValue()
		n, _ := m.Objects.FastArrayLen(arr)
		args := make([]value.Value, n)
		for i := 0; i < n; i++ {
			v, _, _ := m.Objects.FastArrayGet(arr, i)
			args[i] = v
		}
		var this value.Value = value.UndefinedValue
		if op == bytecode.OpSpreadCallProp {
			this = f.PopValue()
		}
		callee := f.PopValue()
		if op == bytecode.OpSpreadNew {
			result, err := m.PerformConstruct(callee, args)
			return result, unwindResult{}, err
		}
		result, err := m.PerformCall(callee, this, args)
		return result, unwindResult{}, err

	default: // OpTypeOf (alias opcode retained for the disassembler)
		return value.MakeString(m.Values.TypeOf(f.PopValue())), unwindResult{}, nil
	}
}

func popArgs(f *frame.Frame, n int) []value.Value {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.PopValue()
	}
	return args
}
