package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execControlFlow implements JUMP and the BRANCH_IF_* family.
// BRANCH_IF_LOGICAL_{TRUE,FALSE} implement short-circuit && / ||: the
// operand stays on the stack when the branch is taken so the surrounding
// expression sees it as the result.
func (m *Machine) execControlFlow(f *frame.Frame, op bytecode.OpCode, start, offset int) (value.Value, unwindResult, error) {
	target := start + offset

	switch op {
	case bytecode.OpJump:
		f.Reader.Cursor = target
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpBranchIfTrue:
		if m.Values.ToBoolean(f.PopValue()) {
			f.Reader.Cursor = target
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpBranchIfFalse:
		if !m.Values.ToBoolean(f.PopValue()) {
			f.Reader.Cursor = target
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpBranchIfLogicalTrue:
		if m.Values.ToBoolean(f.PeekValue(0)) {
			f.Reader.Cursor = target
		} else {
			f.PopValue()
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpBranchIfLogicalFalse:
		if !m.Values.ToBoolean(f.PeekValue(0)) {
			f.Reader.Cursor = target
		} else {
			f.PopValue()
		}
		return value.Value{}, unwindResult{}, nil

	default: // OpBranchIfStrictEqual
		b := f.PopValue()
		a := f.PopValue()
		if m.Values.StrictEquals(a, b) {
			f.Reader.Cursor = target
		}
		return value.Value{}, unwindResult{}, nil
	}
}

// execReturn implements the RETURN family: plain RETURN pops the operand
// stack's top value, RETURN_WITH_BLOCK uses the accumulated block_result
// (the eval-expression-statement accumulator), RETURN_WITH_LITERAL
// returns a constant without touching the stack, and RETURN_PROMISE pops
// the result value and returns a fresh plain object from the object
// collaborator in its place. No promise is created and the popped value
// is not stored in the returned object; this package has no Promise
// concept of its own.
func (m *Machine) execReturn(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	var ret value.Value
	switch op {
	case bytecode.OpReturnWithBlock:
		ret = f.BlockResult
		if ret == (value.Value{}) {
			ret = value.UndefinedValue
		}
	case bytecode.OpReturnWithLiteral:
		idx := f.Reader.ReadLiteralIndex()
		ret = f.Unit.Literals[idx]
	case bytecode.OpReturnPromise:
		ret = f.PopValue()
		ret = m.Objects.NewPlainObject()
	default: // OpReturn, OpExtReturn
		if f.StackTop > f.Unit.RegisterEnd {
			ret = f.PopValue()
		} else {
			ret = value.UndefinedValue
		}
	}
	return value.Value{}, unwindResult{kind: pendingReturn, ret: ret}, nil
}
