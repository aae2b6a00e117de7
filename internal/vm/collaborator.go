// Package vm implements the Frame Context runtime: value accessors,
// call/construct/super dispatch, the main decode-execute loop, and
// exception unwinding. Object storage, garbage collection, and the
// built-in library are external collaborators reached only through the
// interfaces in this file.
package vm

import (
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// ObjectOps is the object-storage collaborator: property get/set with
// the prototype chain, fast-array access, and the constructs needed for
// call/construct (callability, constructibility, class wiring).
type ObjectOps interface {
	NewPlainObject() value.Value
	NewFastArray(elems []value.Value) value.Value

	// FastArrayGet/Set return ok=false when obj isn't a fast array, idx is
	// out of range, or a Proxy trap must run instead - callers fall back
	// to GetProperty/SetProperty in that case.
	FastArrayGet(obj value.Value, idx int) (v value.Value, hole bool, ok bool)
	FastArraySet(obj value.Value, idx int, v value.Value) (ok bool)
	FastArrayLen(obj value.Value) (int, bool)

	GetProperty(obj value.Value, name value.Value) (value.Value, error)
	SetProperty(obj value.Value, name value.Value, v value.Value, strict bool) error
	DeleteProperty(obj value.Value, name value.Value) (bool, error)
	HasProperty(obj value.Value, name value.Value) (bool, error)

	SetPrototype(obj value.Value, proto value.Value) error
	GetPrototype(obj value.Value) value.Value

	IsCallable(v value.Value) bool
	IsConstructor(v value.Value) bool

	// Call/Construct invoke a function value; callee bytecode functions
	// recurse into dispatch through the VM they were created with, native
	// functions run directly. newTarget is value.UndefinedValue for an
	// ordinary call.
	Call(callee, this value.Value, args []value.Value) (value.Value, error)
	Construct(callee, newTarget value.Value, args []value.Value) (value.Value, error)

	// NewFunction builds a constructible bytecode function value; used for
	// every function-valued opcode, including PUSH_NAMED_FUNC_EXPR, which
	// additionally wraps the result in a private declarative environment
	// binding the expression's own name to it.
	NewFunction(unit interface{}, name string, closure *frame.Frame) value.Value

	// NewGenerator wraps a suspended frame's resumer in the object layer's
	// iterator-result surface (next/throw/return), returned by RunUnit in
	// place of UNDEFINED when a generator unit's CREATE_GENERATOR suspends.
	NewGenerator(r GeneratorResumer) value.Value
}

// GeneratorResumer is the suspended-frame handle RunUnit hands to the
// object layer so it can build a Generator's next/throw/return methods
// without reaching into frame or dispatch internals itself. One call to
// execute() backs each of Resume/Throw/Return; none of them involve a
// goroutine or channel handoff, since a suspended frame already carries
// every piece of state (cursor, operand stack, context stack, lexical
// environment) that would otherwise need a live Go call stack to survive.
type GeneratorResumer interface {
	Resume(arg value.Value) (v value.Value, done bool, err error)
	Throw(arg value.Value) (v value.Value, done bool, err error)
	Return(arg value.Value) (v value.Value, done bool, err error)
}

// IteratorOps is the iteration-protocol collaborator used by FOR_OF and
// spread.
type IteratorOps interface {
	GetIterator(v value.Value) (value.Value, error)
	IteratorStep(iter value.Value) (value.Value, bool, error) // value, done, error
	IteratorClose(iter value.Value) error
	EnumerableKeys(obj value.Value) ([]value.Value, error) // for-in snapshot
}

// ValueOps is the abstract-operations collaborator: coercions and the
// comparison algorithms the spec leaves as named operations.
type ValueOps interface {
	ToString(v value.Value) (string, error)
	ToNumber(v value.Value) (float64, error)
	ToPropertyKey(v value.Value) (value.Value, error)
	ToBoolean(v value.Value) bool
	TypeOf(v value.Value) string
	AbstractEquals(a, b value.Value) (bool, error)
	StrictEquals(a, b value.Value) bool
	InstanceOf(v, ctor value.Value) (bool, error)
}

// ErrorOps lets the VM raise native errors as thrown Values without
// knowing how error objects are constructed.
type ErrorOps interface {
	NewError(kind string, message string) value.Value
	AsNativeMessage(v value.Value) (kind, message string, ok bool)
}

// Collaborators bundles the four interfaces a Machine is constructed
// with; tests and embedders supply one implementation (internal/hostobj
// provides the default).
type Collaborators struct {
	Objects   ObjectOps
	Iterators IteratorOps
	Values    ValueOps
	Errors    ErrorOps
}
