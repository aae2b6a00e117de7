package vm

import (
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// pendingKind classifies what execute's outer loop is unwinding for.
type pendingKind uint8

const (
	pendingNone pendingKind = iota
	pendingThrow
	pendingReturn
	pendingJump
	// pendingSuspend carries a generator CREATE_GENERATOR/YIELD result
	// straight back to execute's caller regardless of context depth: a
	// suspend is not a completion, so unlike pendingReturn it must never
	// run an enclosing try's finally block. The context stack is left
	// exactly as it was; resuming re-enters runInner with it intact.
	pendingSuspend
)

// contextAbort releases the resources of a single context record: its
// owned lexical environment (if HasLexEnv), its iterator (if
// CloseIterator), and its collection buffer. Errors from iterator_close
// during an abort are swallowed since intervening contexts are aborted
// unconditionally while climbing to a handler.
func (m *Machine) contextAbort(f *frame.Frame, ctx frame.Context) {
	if ctx.HasLexEnv {
		f.LexEnv = ctx.SavedLexEnv
	}
	if ctx.CloseIterator && !ctx.Iterator.IsUndefined() {
		_ = m.Iterators.IteratorClose(ctx.Iterator)
	}
	ctx.Collection = nil
}

// finallyOutcome is findFinally's three-way result: no context claimed the
// pending completion, a context claims it directly (the caller still has
// to push the carried value and reposition the cursor), or findFinally
// already redirected execution into a guarding finally block itself (the
// caller has nothing left to do).
type finallyOutcome uint8

const (
	finallyNoMatch finallyOutcome = iota
	finallyMatch
	finallyRedirected
)

// armFinally promotes a fresh (or catch-placeholder) context into the
// armed Kind that carries u's payload into its finally block, and points
// the context at that block's entry.
func armFinally(ctx *frame.Context, u unwindResult) {
	switch u.kind {
	case pendingReturn:
		ctx.Kind = frame.KindFinallyReturn
		ctx.PendingResult = u.ret
	case pendingThrow:
		ctx.Kind = frame.KindFinallyThrow
		ctx.PendingResult = u.thrown
	case pendingJump:
		ctx.Kind = frame.KindFinallyJump
		ctx.Target = u.target
	}
}

// findFinally walks f's context stack downward from the top looking for a
// context that can receive control for u's pending completion, aborting
// every context it passes over along the way.
//
// A throw reaching a still-fresh KindTry context routes to its catch entry
// (real or, for a bare try/finally, a synthetic rethrow) and leaves a
// KindCatch placeholder behind so a later CONTEXT_END - and any guarding
// finally - still has a context to act on. A second throw from inside
// that catch body can no longer re-enter the same catch, so it is
// redirected straight into the finally instead. A return or break/continue
// reaching a still-fresh KindTry/KindCatch context with a finally attached
// is redirected into that finally the same way, its payload parked in
// PendingResult (or Target, for a jump) until CONTEXT_END re-emits it once
// the finally body completes. Reaching a protected-range match on an
// already-armed KindFinallyJump (a break/continue executing inside the
// finally body itself, aimed back into the loop it guards) is the one case
// left exactly as it always worked.
func (m *Machine) findFinally(f *frame.Frame, u unwindResult) (frame.Context, finallyOutcome) {
	for len(f.Contexts) > 0 {
		ctx := f.PopContext()

		switch u.kind {
		case pendingThrow:
			switch ctx.Kind {
			case frame.KindTry:
				placeholder := ctx
				placeholder.Kind = frame.KindCatch
				f.PushContext(placeholder)
				return ctx, finallyMatch
			case frame.KindCatch:
				if ctx.HasFinally {
					armFinally(&ctx, u)
					f.Reader.Cursor = ctx.FinallyTarget
					f.PushContext(ctx)
					return frame.Context{}, finallyRedirected
				}
			}

		case pendingReturn, pendingJump:
			if u.kind == pendingJump && ctx.Kind == frame.KindFinallyJump &&
				u.target >= ctx.ProtectedStart && u.target < ctx.ProtectedEnd {
				return ctx, finallyMatch
			}
			if (ctx.Kind == frame.KindTry || ctx.Kind == frame.KindCatch) && ctx.HasFinally {
				armFinally(&ctx, u)
				f.Reader.Cursor = ctx.FinallyTarget
				f.PushContext(ctx)
				return frame.Context{}, finallyRedirected
			}
		}

		m.contextAbort(f, ctx)
	}
	return frame.Context{}, finallyNoMatch
}

// unwindResult is what the outer loop in execute does with a pending
// throw/return/jump once a single opcode handler signals one.
type unwindResult struct {
	kind   pendingKind
	thrown value.Value
	ret    value.Value
	target int
	abort  bool
}

// handleUnwind implements the unwind dance: draining the operand stack to
// the correct boundary, then either returning to the caller of dispatch
// (context_depth == 0), redirecting into a reachable finally, routing a
// pending exception into its catch, or - if aborting - unwinding every
// remaining context and returning ERROR.
func (m *Machine) handleUnwind(f *frame.Frame, u unwindResult) (value.Value, bool, error) {
	if u.kind == pendingThrow {
		f.StackTop = f.OperandBoundary()
	} else {
		f.StackTop = f.Unit.RegisterEnd
	}

	if len(f.Contexts) == 0 {
		f.BlockResult = value.Value{}
		switch u.kind {
		case pendingThrow:
			return value.Value{}, true, errThrown{u.thrown}
		case pendingReturn:
			return u.ret, true, nil
		default:
			return value.Value{}, true, nil
		}
	}

	if u.abort {
		for len(f.Contexts) > 0 {
			m.contextAbort(f, f.PopContext())
		}
		return value.ErrorValue, true, nil
	}

	ctx, outcome := m.findFinally(f, u)
	switch outcome {
	case finallyRedirected:
		return value.Value{}, false, nil

	case finallyMatch:
		switch u.kind {
		case pendingReturn:
			f.PushValue(u.ret)
		case pendingThrow:
			f.PushValue(u.thrown)
		}
		f.Reader.Cursor = ctx.Target
		return value.Value{}, false, nil

	default: // finallyNoMatch
		switch u.kind {
		case pendingReturn:
			return u.ret, true, nil
		case pendingJump:
			f.Reader.Cursor = u.target
			return value.Value{}, false, nil
		default: // pendingThrow
			return value.Value{}, true, errThrown{u.thrown}
		}
	}
}

// errThrown wraps a script-level thrown Value so it can travel through Go's
// error channel back to whatever embedder called Run.
type errThrown struct {
	Value value.Value
}

func (e errThrown) Error() string { return "uncaught exception" }

// ThrownValue recovers the script-level value behind an uncaught-exception
// error from Run/RunUnit, for an embedder (or test) that needs the actual
// thrown value rather than just the Go error text.
func ThrownValue(err error) (value.Value, bool) {
	t, ok := err.(errThrown)
	if !ok {
		return value.Value{}, false
	}
	return t.Value, true
}
