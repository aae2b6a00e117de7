package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execTryCatch implements the try/catch/finally opcode family. TRY pushes
// a TRY context pointing at the catch entry, plus an optional finally
// entry carried in HasFinally/FinallyTarget; CATCH is reached as a forward
// jump and is a no-op placeholder target (the unwind path is what
// actually promotes a TRY record when an exception enters it); FINALLY
// arms a still-fresh context as FINALLY_JUMP, unless findFinally already
// armed it as FINALLY_RETURN/FINALLY_THROW/FINALLY_JUMP on the way in;
// CONTEXT_END pops a context and, for an armed FINALLY_* record, re-emits
// its carried return/throw/jump so the outer loop's unwind continues
// outward through any further enclosing finally; THROW raises a pending
// exception to be routed by the outer loop.
func (m *Machine) execTryCatch(f *frame.Frame, op bytecode.OpCode, start, offset int) (value.Value, unwindResult, error) {
	target := start + offset

	switch op {
	case bytecode.OpTry:
		ctx := frame.Context{
			Kind:   frame.KindTry,
			Target: target,
		}
		if f.Reader.ReadByte() != 0 {
			ctx.HasFinally = true
			foffset := f.Reader.ReadBranchOffset(2)
			ctx.FinallyTarget = start + foffset
		}
		f.PushContext(ctx)
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpCatch:
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpFinally:
		// Only arm the top context here when it is still fresh, i.e. the
		// try/catch body completed normally and fell straight through into
		// the finally. A context already armed by findFinally's redirect
		// (KindFinallyReturn/Throw/Jump, cursor already pointed here with
		// PendingResult set) must not be clobbered.
		if ctx := f.TopContext(); ctx != nil && (ctx.Kind == frame.KindTry || ctx.Kind == frame.KindCatch) {
			ctx.Kind = frame.KindFinallyJump
			ctx.Target = target
			ctx.ProtectedStart = 0
			ctx.ProtectedEnd = 1 << 30
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpContextEnd:
		ctx := f.PopContext()
		switch ctx.Kind {
		case frame.KindFinallyReturn:
			m.contextAbort(f, ctx)
			return value.Value{}, unwindResult{kind: pendingReturn, ret: ctx.PendingResult}, nil
		case frame.KindFinallyThrow:
			m.contextAbort(f, ctx)
			return value.Value{}, unwindResult{kind: pendingThrow, thrown: ctx.PendingResult}, nil
		case frame.KindFinallyJump:
			f.Reader.Cursor = ctx.Target
			m.contextAbort(f, ctx)
		default:
			m.contextAbort(f, ctx)
		}
		return value.Value{}, unwindResult{}, nil

	default: // OpThrow
		v := f.PopValue()
		return value.Value{}, unwindResult{kind: pendingThrow, thrown: v}, nil
	}
}
