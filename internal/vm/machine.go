package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// StepCallback is the cooperative cancellation hook consulted every
// `frequency` backward branches. A non-undefined return value is thrown at the
// current instruction; ERROR unwraps to the real pending error.
type StepCallback func(m *Machine) value.Value

// Machine holds everything shared across frames of one execution context:
// the collaborator set, the global environment, and the cooperative-stop
// configuration. One Machine serves one logical thread of execution; a
// suspended generator frame holds no goroutine of its own, just a live
// *frame.Frame resumed by a later call to execute (see generator.go).
type Machine struct {
	Collaborators

	Global *lexenv.Environment

	StepCallback  StepCallback
	StepFrequency uint32
	stepCounter   uint32
	abort         bool

	cache *lookupCache

	Debug     bool
	DebugHook func(m *Machine, f *frame.Frame, ip int, d bytecode.DebugInfo) bool
}

// New constructs a Machine wired to the given collaborators and global
// environment.
func New(collab Collaborators, global *lexenv.Environment) *Machine {
	return &Machine{Collaborators: collab, Global: global, cache: newLookupCache()}
}

// Run builds the root frame for unit and drives it to completion. An
// exception that escapes every handler comes back as an error from which
// ThrownValue recovers the thrown script Value (native errors raised by
// opcode handlers are first converted to script Values via ErrorOps); an
// unknown opcode comes back as a *vmerr.NativeError.
func (m *Machine) Run(unit *bytecode.CompiledCodeUnit, args []value.Value) (value.Value, error) {
	f := frame.New(unit, nil)
	f.InitExec(args, nil)
	f.LexEnv = lexenv.NewDeclarative(m.Global, false)
	f.This = value.UndefinedValue
	return m.execute(f)
}

// RaiseNative converts a *vmerr.NativeError into a thrown script Value
// via the ErrorOps collaborator, so it can flow through the ordinary
// context-stack unwind path like any other throw.
func (m *Machine) RaiseNative(e *vmerr.NativeError) value.Value {
	return m.Errors.NewError(string(e.Kind), e.Message)
}

// RunUnit builds a frame for a called function's code unit and executes
// it, chaining its lexical environment to the captured closure frame (or
// to the global environment for a top-level function). It satisfies
// hostobj.Runner so the object store's Function can recurse back into
// the dispatcher without hostobj importing vm.
func (m *Machine) RunUnit(unit *bytecode.CompiledCodeUnit, closure *frame.Frame, this value.Value, newTarget value.Value, args []value.Value) (value.Value, error) {
	f := frame.New(unit, closure)
	outer := m.Global
	if closure != nil {
		outer = closure.LexEnv
	}
	f.InitExec(args, func(rest []value.Value) value.Value {
		return m.Objects.NewFastArray(rest)
	})
	f.LexEnv = lexenv.NewDeclarative(outer, false)
	f.This = this
	f.NewTarget = newTarget

	ret, err := m.execute(f)
	if err != nil {
		return value.Value{}, err
	}
	if unit.Flags.Has(bytecode.FlagGenerator) && f.Suspended {
		return m.Objects.NewGenerator(&machineResumer{m: m, f: f}), nil
	}
	return ret, nil
}
