package vm

import (
	"ecmavm/internal/collection"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// PerformCall decodes a call site already popped off the operand stack
// (callee, optional receiver, and argc values) and invokes it. dispatch's
// CALL group handler recurses through Machine.execute for bytecode
// functions via the ObjectOps.Call collaborator, which itself calls back
// into RunUnit for a function's CompiledCodeUnit; Go's growable goroutine
// stacks make this direct recursion safe, so unlike a C host this package
// does not need the cursor-rewrite trampoline back to a driver loop -
// the call happens inline and its result (or error) comes straight back
// to the instruction that issued it.
func (m *Machine) PerformCall(callee, this value.Value, args []value.Value) (value.Value, error) {
	if !m.Objects.IsCallable(callee) {
		return value.Value{}, vmerr.TypeError("value is not a function")
	}
	return m.Objects.Call(callee, this, args)
}

// PerformConstruct implements construct: function_construct(func,
// new_target=func, args, n), validating that func is itself a
// constructor.
func (m *Machine) PerformConstruct(callee value.Value, args []value.Value) (value.Value, error) {
	if !m.Objects.IsConstructor(callee) {
		return value.Value{}, vmerr.TypeError("value is not a constructor")
	}
	return m.Objects.Construct(callee, callee, args)
}

// PerformSuperCall implements super_call. alreadyInitialized guards the one-shot
// this-binding initialization: a second super() call in the same
// constructor raises ReferenceError instead of re-running construction.
func (m *Machine) PerformSuperCall(superCtor, newTarget value.Value, args []value.Value, alreadyInitialized bool) (value.Value, error) {
	if alreadyInitialized {
		return value.Value{}, vmerr.ReferenceError("super() may only be called once")
	}
	if !m.Objects.IsConstructor(superCtor) {
		return value.Value{}, vmerr.TypeError("super constructor is not a constructor")
	}
	target := newTarget
	if target.IsUndefined() {
		target = superCtor
	}
	result, err := m.Objects.Construct(superCtor, target, args)
	if err != nil {
		return value.Value{}, err
	}
	proto := m.Objects.GetPrototype(target)
	if err := m.Objects.SetPrototype(result, proto); err != nil {
		return value.Value{}, err
	}
	return result, nil
}

// GatherSpread materializes values into a Collection, which the caller
// destroys when done with it. The SPREAD_* opcode handlers build their
// argument lists without it.
func GatherSpread(values []value.Value) *collection.Collection {
	return collection.FromSlice(values)
}
