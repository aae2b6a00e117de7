package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// execSuperClass implements the super/class family. this-binding
// one-shot initialization is tracked on the frame itself rather than in a
// per-context record, since at most one constructor's super() call is
// ever live per frame.
func (m *Machine) execSuperClass(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpSuperCall:
		argc := int(f.Reader.ReadByte())
		args := popArgs(f, argc)
		superCtor := f.PopValue()
		already := !f.This.IsUninitialized()
		result, err := m.PerformSuperCall(superCtor, f.NewTarget, args, already)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		f.This = result
		f.LexEnv.InitBinding("this", result)
		return result, unwindResult{}, nil

	case bytecode.OpPushSuperConstructor:
		// GetSuperConstructor (ECMA-262 9.2.1): the active function's own
		// [[Prototype]]. f.This is uninitialized at this point - that is
		// the entire reason super() exists - so it is NewTarget (the
		// derived constructor itself) whose [[Prototype]] InitClass wired
		// to the superclass constructor at class-definition time.
		return m.Objects.GetPrototype(f.NewTarget), unwindResult{}, nil

	case bytecode.OpPushClassEnvironment:
		f.LexEnv = f.LexEnv.Clone(false)
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpInitClass:
		// Stack: ..., superclassOrUndefined, ctor. Wires ctor's own
		// [[Prototype]] to the superclass constructor (so a later
		// PUSH_SUPER_CONSTRUCTOR in ctor's body resolves correctly) and
		// ctor.prototype's [[Prototype]] to the superclass's .prototype
		// (so instances inherit its methods), mirroring "class B extends
		// A": B.__proto__ === A, B.prototype.__proto__ === A.prototype. A
		// plain (non-derived) class leaves both links at their defaults.
		ctor := f.PopValue()
		super := f.PopValue()
		if !super.IsUndefined() {
			if err := m.Objects.SetPrototype(ctor, super); err != nil {
				return value.Value{}, unwindResult{}, err
			}
			ctorProto, err := m.Objects.GetProperty(ctor, value.MakeString("prototype"))
			if err != nil {
				return value.Value{}, unwindResult{}, err
			}
			superProto, err := m.Objects.GetProperty(super, value.MakeString("prototype"))
			if err != nil {
				return value.Value{}, unwindResult{}, err
			}
			if err := m.Objects.SetPrototype(ctorProto, superProto); err != nil {
				return value.Value{}, unwindResult{}, err
			}
		}
		return ctor, unwindResult{}, nil

	case bytecode.OpFinalizeClass:
		return f.PopValue(), unwindResult{}, nil

	case bytecode.OpPushImplicitCtor:
		return m.Objects.NewFunction(nil, "", f), unwindResult{}, nil

	case bytecode.OpSuperReference:
		idx := f.Reader.ReadLiteralIndex()
		name := f.Unit.Literals[idx]
		proto := m.Objects.GetPrototype(f.This)
		v, err := m.GetValue(proto, name)
		return v, unwindResult{}, err

	default: // OpResolveLexicalThis
		if f.This.IsUninitialized() {
			return value.Value{}, unwindResult{}, vmerr.ReferenceError("must call super constructor before accessing 'this'")
		}
		return f.This, unwindResult{}, nil
	}
}
