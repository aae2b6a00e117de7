package vm_test

import (
	"errors"
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/value"
	"ecmavm/internal/vm"
	"ecmavm/internal/vmconfig"
	"ecmavm/internal/vmerr"
)

func TestDoubleSuperCallRaisesReferenceError(t *testing.T) {
	m := vmconfig.Build()

	// The one-shot guard lives entirely in the alreadyInitialized flag
	// PerformSuperCall receives; a bogus superCtor is fine since the
	// second call's guard fires before any constructor-validity check.
	ctor := value.UndefinedValue

	_, err := m.PerformSuperCall(ctor, value.UndefinedValue, nil, true)
	if err == nil {
		t.Fatalf("expected a second super() call to raise ReferenceError, got nil")
	}
	var nerr *vmerr.NativeError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected a *vmerr.NativeError, got %T: %v", err, err)
	}
	if nerr.Kind != vmerr.ReferenceErrorKind {
		t.Fatalf("error kind = %s, want %s", nerr.Kind, vmerr.ReferenceErrorKind)
	}
}

// TestDoubleSuperCallViaBytecodeRaisesReferenceError covers scenario 7
// end to end through real dispatch: class A{}; class B extends A {
// constructor() { super(); super() } }; new B() must raise
// ReferenceError on the second super() call, not the first.
//
// B's own [[Prototype]] is wired to A directly (what INIT_CLASS would
// have done for "class B extends A") rather than re-deriving class
// construction bytecode, so the test stays focused on the opcodes that
// actually matter here: PUSH_SUPER_CONSTRUCTOR and SUPER_CALL.
func TestDoubleSuperCallViaBytecodeRaisesReferenceError(t *testing.T) {
	m := vmconfig.Build()

	aUnit := asm.New("A")
	aUnit.Registers(0, 0)
	aUnit.Op(bytecode.OpReturn)
	aCtor := m.Objects.NewFunction(aUnit.Unit(), "A", nil)

	bUnit := asm.New("B")
	bUnit.Registers(0, 0)
	bUnit.Op(bytecode.OpPushSuperConstructor)
	bUnit.Op(bytecode.OpSuperCall).Byte(0)
	bUnit.Op(bytecode.OpPop)
	bUnit.Op(bytecode.OpPushSuperConstructor)
	bUnit.Op(bytecode.OpSuperCall).Byte(0)
	bUnit.Op(bytecode.OpPop)
	bUnit.Op(bytecode.OpReturn)

	bCtor := m.Objects.NewFunction(bUnit.Unit(), "B", nil)
	if err := m.Objects.SetPrototype(bCtor, aCtor); err != nil {
		t.Fatalf("wiring B's prototype to A: %v", err)
	}

	_, err := m.RunUnit(bUnit.Unit(), nil, value.UninitializedValue, bCtor, nil)
	if err == nil {
		t.Fatalf("expected new B() to raise ReferenceError, got nil")
	}
	thrown, ok := vm.ThrownValue(err)
	if !ok {
		t.Fatalf("expected an uncaught thrown value, got %T: %v", err, err)
	}
	kind, _, ok := m.Errors.AsNativeMessage(thrown)
	if !ok {
		t.Fatalf("thrown value has no native error shape: %#v", thrown)
	}
	if kind != string(vmerr.ReferenceErrorKind) {
		t.Fatalf("thrown error kind = %s, want %s", kind, vmerr.ReferenceErrorKind)
	}
}
