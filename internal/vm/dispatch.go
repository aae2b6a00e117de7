package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/collection"
	"ecmavm/internal/frame"
	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// execute is the outer loop: it drives dispatch's inner decode-execute
// loop and, whenever a step signals a pending throw/return/jump, performs
// the unwind-and-continue dance of §4.I before resuming decoding.
func (m *Machine) execute(f *frame.Frame) (value.Value, error) {
	for {
		ret, u, done, err := m.runInner(f)
		if err != nil {
			return value.Value{}, err
		}
		if done {
			return ret, nil
		}
		result, stop, uerr := m.handleUnwind(f, u)
		if stop {
			return result, uerr
		}
		// handleUnwind repositioned f.Reader.Cursor; fall through and keep
		// decoding from there.
	}
}

// runInner decodes and executes opcodes until either the frame returns
// normally (done=true, ret holds the value) or a condition needs the
// outer loop's unwind handling (done=false, u describes it).
func (m *Machine) runInner(f *frame.Frame) (ret value.Value, u unwindResult, done bool, err error) {
	for {
		if f.Reader.AtEnd() {
			return value.UndefinedValue, unwindResult{}, true, nil
		}

		start := f.Reader.Cursor
		op := f.Reader.ReadOpCode()
		if op == bytecode.OpExtError {
			return value.Value{}, unwindResult{kind: pendingThrow, thrown: f.PopValue()}, false, nil
		}

		entry, ok := bytecode.Lookup(op)
		if !ok {
			return value.Value{}, unwindResult{}, false, vmerr.TypeError("unknown opcode at offset %d", start)
		}

		if m.Debug && m.DebugHook != nil {
			if !m.DebugHook(m, f, start, f.Unit.GetDebugInfo(start)) {
				continue
			}
		}

		var branchOffset int
		if entry.Shape == bytecode.ShapeBranch {
			branchOffset = f.Reader.ReadBranchOffset(2)
		}

		if entry.Aux&bytecode.AuxBackwardBranch != 0 && branchOffset < 0 && m.StepCallback != nil {
			m.stepCounter++
			if m.StepFrequency > 0 && m.stepCounter >= m.StepFrequency {
				m.stepCounter = 0
				if thrown := m.StepCallback(m); !thrown.IsUndefined() {
					real := thrown
					if thrown.IsError() {
						real = f.PopValue()
					}
					m.abort = true
					return value.Value{}, unwindResult{kind: pendingThrow, thrown: real, abort: true}, false, nil
				}
			}
		}

		result, pend, gerr := m.execGroup(f, op, entry, start, branchOffset)
		if gerr != nil {
			return value.Value{}, unwindResult{kind: pendingThrow, thrown: m.errToValue(gerr)}, false, nil
		}
		if pend.kind == pendingSuspend {
			return pend.ret, unwindResult{}, true, nil
		}
		if pend.kind == pendingReturn {
			if f.ContextDepth == 0 {
				return pend.ret, unwindResult{}, true, nil
			}
			return value.Value{}, pend, false, nil
		}
		if pend.kind != pendingNone {
			return value.Value{}, pend, false, nil
		}

		switch entry.Put {
		case PutStack:
			f.PushValue(result)
		case PutBlock:
			f.BlockResult = result
		}
	}
}

func (m *Machine) errToValue(err error) value.Value {
	if ne, ok := err.(*vmerr.NativeError); ok {
		return m.RaiseNative(ne)
	}
	return m.Errors.NewError(string(vmerr.CommonErrorKind), err.Error())
}

// execGroup runs the semantic handler for one decode-table group. It
// returns either a result value to be routed per Put, or an unwindResult
// describing a pending return/jump that must go through the outer loop,
// or an error to be converted into a pending throw.
func (m *Machine) execGroup(f *frame.Frame, op bytecode.OpCode, entry bytecode.DecodeEntry, start, branchOffset int) (value.Value, unwindResult, error) {
	switch entry.Group {
	case bytecode.GroupPush:
		return m.execPush(f, op), unwindResult{}, nil

	case bytecode.GroupIdent:
		return m.execIdent(f, op)

	case bytecode.GroupBinding:
		return m.execBinding(f, op)

	case bytecode.GroupObjectLiteral:
		return m.execObjectLiteral(f, op)

	case bytecode.GroupArith:
		return m.execArith(f, op)

	case bytecode.GroupBitwise:
		return m.execBitwise(f, op)

	case bytecode.GroupUnary:
		return m.execUnary(f, op)

	case bytecode.GroupCompare:
		return m.execCompare(f, op)

	case bytecode.GroupIncrDecr:
		return m.execIncrDecr(f, op)

	case bytecode.GroupProperty:
		return m.execProperty(f, op)

	case bytecode.GroupControlFlow:
		return m.execControlFlow(f, op, start, branchOffset)

	case bytecode.GroupScope:
		return m.execScope(f, op)

	case bytecode.GroupIteration:
		return m.execIteration(f, op, start, branchOffset)

	case bytecode.GroupTryCatch:
		return m.execTryCatch(f, op, start, branchOffset)

	case bytecode.GroupSuperClass:
		return m.execSuperClass(f, op)

	case bytecode.GroupIteratorDestructure:
		return m.execIteratorDestructure(f, op)

	case bytecode.GroupCall:
		return m.execCall(f, op)

	case bytecode.GroupReturn:
		return m.execReturn(f, op)

	case bytecode.GroupGenerator:
		return m.execGenerator(f, op)

	case bytecode.GroupSpread:
		return m.execSpread(f, op)

	case bytecode.GroupMisc:
		return m.execMisc(f, op)

	case bytecode.GroupModule:
		return m.execModule(f, op)
	}
	return value.Value{}, unwindResult{}, vmerr.TypeError("unhandled opcode group")
}

func (m *Machine) execPush(f *frame.Frame, op bytecode.OpCode) value.Value {
	switch op {
	case bytecode.OpPushUndefined:
		return value.UndefinedValue
	case bytecode.OpPushNull:
		return value.NullValue
	case bytecode.OpPushTrue:
		return value.TrueValue
	case bytecode.OpPushFalse:
		return value.FalseValue
	case bytecode.OpPushThis:
		return f.This
	case bytecode.OpPush0, bytecode.OpPushLit0:
		return value.MakeInt(0)
	case bytecode.OpPushPosByte:
		return value.MakeInt(int32(f.Reader.ReadByte()))
	case bytecode.OpPushNegByte:
		return value.MakeInt(-int32(f.Reader.ReadByte()))
	case bytecode.OpPushLitPosByte:
		idx := f.Reader.ReadLiteralIndex()
		return f.Unit.Literals[idx]
	case bytecode.OpPushLitNegByte:
		idx := f.Reader.ReadLiteralIndex()
		return f.Unit.Literals[idx]
	case bytecode.OpPushObject:
		return m.Objects.NewPlainObject()
	case bytecode.OpPushArray:
		return m.Objects.NewFastArray(nil)
	case bytecode.OpPushElision, bytecode.OpPushArrayHole:
		return value.ArrayHoleValue
	case bytecode.OpPushSpreadElement:
		return value.SpreadElementValue
	case bytecode.OpPushNewTarget:
		return f.NewTarget
	case bytecode.OpPushNamedFuncExpr:
		// idx is a sub-function reference (see CompiledCodeUnit.SubUnits):
		// a named function expression gets its own private declarative
		// environment binding its own name immutably to itself, chained
		// in front of the enclosing scope, so the body can recurse
		// through that name even where the expression itself is
		// otherwise unbound (an anonymous IIFE-style assignment, say).
		idx := f.Reader.ReadLiteralIndex()
		sub := f.Unit.SubUnits[idx-f.Unit.ConstLitEnd]
		env := lexenv.NewDeclarative(f.LexEnv, false)
		closure := *f
		closure.LexEnv = env
		fn := m.Objects.NewFunction(sub, sub.Name, &closure)
		env.CreateBinding(sub.Name, false, false, true)
		env.InitBinding(sub.Name, fn)
		return fn
	default: // OpPush, OpPushTwo, OpPushThree: literal-index push
		idx := f.Reader.ReadLiteralIndex()
		return f.Unit.Literals[idx]
	}
}

func (m *Machine) execIdent(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	idx := f.Reader.ReadLiteralIndex()
	name := f.Unit.Literals[idx].AsString()

	env, ok := lexenv.Resolve(f.LexEnv, name)
	if !ok {
		if op == bytecode.OpTypeofIdent {
			return value.MakeString("undefined"), unwindResult{}, nil
		}
		return value.Value{}, unwindResult{}, vmerr.ReferenceError("%s is not defined", name)
	}
	v, _ := env.GetMutableBinding(name)
	if v.IsUninitialized() {
		return value.Value{}, unwindResult{}, vmerr.ReferenceError("cannot access '%s' before initialization", name)
	}
	if op == bytecode.OpTypeofIdent {
		return value.MakeString(m.Values.TypeOf(v)), unwindResult{}, nil
	}
	return v, unwindResult{}, nil
}

func (m *Machine) execBinding(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	idx := f.Reader.ReadLiteralIndex()
	name := f.Unit.Literals[idx].AsString()

	switch op {
	case bytecode.OpCreateBinding:
		kind := f.Reader.ReadByte()
		switch kind {
		case 0: // var
			f.LexEnv.CreateBinding(name, true, true, false)
		case 1: // let
			f.LexEnv.CreateBinding(name, true, true, true)
		default: // const
			f.LexEnv.CreateBinding(name, false, true, true)
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpInitBinding:
		v := f.PopValue()
		f.LexEnv.InitBinding(name, v)
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpAssignLetConst:
		v := f.PopValue()
		f.LexEnv.InitBinding(name, v)
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpCheckVar, bytecode.OpCheckLet:
		if f.LexEnv.HasBinding(name) {
			return value.Value{}, unwindResult{}, vmerr.SyntaxError("identifier '%s' has already been declared", name)
		}
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpThrowConstError:
		return value.Value{}, unwindResult{}, vmerr.TypeError("assignment to constant variable '%s'", name)

	default: // VAR_EVAL / EXT_VAR_EVAL
		target := lexenv.NearestNonBlock(f.LexEnv)
		if !target.HasBinding(name) {
			target.CreateBinding(name, true, false, false)
		}
		return value.Value{}, unwindResult{}, nil
	}
}

func (m *Machine) execObjectLiteral(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	v := f.PopValue()
	key := f.PopValue()
	obj := f.PeekValue(0)
	switch op {
	case bytecode.OpSetProto:
		return value.Value{}, unwindResult{}, m.Objects.SetPrototype(obj, v)
	default:
		name, err := m.Values.ToPropertyKey(key)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		return value.Value{}, unwindResult{}, m.setProperty(obj, name, v, false)
	}
}

func (m *Machine) execMisc(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpPop:
		f.PopValue()
	case bytecode.OpDup:
		f.PushValue(f.PeekValue(0))
	case bytecode.OpPrint:
		_ = f.PopValue()
	}
	return value.Value{}, unwindResult{}, nil
}

func (m *Machine) execModule(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	f.Reader.ReadLiteralIndex()
	return value.Value{}, unwindResult{}, nil
}

func (m *Machine) execScope(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpBlockCreateContext:
		f.Reader.ReadLiteralIndex()
		saved := f.LexEnv
		f.LexEnv = lexenv.NewDeclarative(saved, true)
		f.PushContext(frame.Context{Kind: frame.KindBlock, HasLexEnv: true, SavedLexEnv: saved})
	case bytecode.OpWith:
		f.Reader.ReadLiteralIndex()
		obj := f.PopValue()
		binding, _ := obj.AsObject().(lexenv.ObjectBinding)
		saved := f.LexEnv
		f.LexEnv = lexenv.NewObjectBound(saved, binding)
		f.PushContext(frame.Context{Kind: frame.KindWith, HasLexEnv: true, SavedLexEnv: saved})
	case bytecode.OpCloneContext:
		f.Reader.ReadLiteralIndex()
		f.LexEnv = f.LexEnv.Clone(true)
	}
	return value.Value{}, unwindResult{}, nil
}

func (m *Machine) execGenerator(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpCreateGenerator:
		// Packages the frame, at its very first instruction, into a
		// suspended executable object: the body has not run at all yet.
		// RunUnit notices f.Suspended on the way out and wraps f in a
		// Generator instead of handing back this UNDEFINED.
		f.Suspended = true
		return value.Value{}, unwindResult{kind: pendingSuspend, ret: value.UndefinedValue}, nil
	case bytecode.OpYield:
		v := f.PopValue()
		f.Suspended = true
		return value.Value{}, unwindResult{kind: pendingSuspend, ret: v}, nil
	default: // AWAIT: no-op hint under direct execution
		return f.PeekValue(0), unwindResult{}, nil
	}
}

func (m *Machine) execSpread(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	n := int(f.Reader.ReadByte())
	items := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		items[i] = f.PopValue()
	}
	c := collection.FromSlice(items)
	arr := m.Objects.NewFastArray(c.Slice())
	c.Destroy()
	return arr, unwindResult{}, nil
}
