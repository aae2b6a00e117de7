package vm_test

import (
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/vmconfig"
)

// TestCatchValueSurvivesFinally covers scenario 4: a value computed in a
// catch block survives an unrelated finally block running after it.
// try{throw 42}catch(e){e+1}finally{"done"} evaluates to 43, not to
// anything the finally block itself produces.
func TestCatchValueSurvivesFinally(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)

	b.Lit(bytecode.OpCreateBinding, "result").Byte(0)
	b.Lit(bytecode.OpPush, 0)
	b.Lit(bytecode.OpInitBinding, "result")

	catchSite, finallySite, opcodePos := b.TryFinally()
	b.Lit(bytecode.OpPush, 42)
	b.Branch(bytecode.OpThrow)

	b.Patch(catchSite)
	b.Branch(bytecode.OpCatch)
	b.Lit(bytecode.OpCreateBinding, "e").Byte(1)
	b.Lit(bytecode.OpInitBinding, "e")
	b.Lit(bytecode.OpIdentReference, "e")
	b.Lit(bytecode.OpPush, 1)
	b.Op(bytecode.OpAdd)
	b.Lit(bytecode.OpAssignLetConst, "result")

	finallyStart := b.Label()
	b.PatchAt(finallySite, opcodePos, finallyStart)
	finallyOpSite := b.Branch(bytecode.OpFinally)
	b.Lit(bytecode.OpPush, "done")
	b.Op(bytecode.OpPop)
	b.Branch(bytecode.OpContextEnd)

	b.Patch(finallyOpSite)
	b.Lit(bytecode.OpIdentReference, "result")
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 43 {
		t.Fatalf("got %#v, want INT 43", ret)
	}
}

// TestFinallyReturnOverridesTryReturn covers scenario 5:
// function f(){try{return 1}finally{return 2}} f() evaluates to 2 - the
// finally's own return replaces the one still pending from the try body.
func TestFinallyReturnOverridesTryReturn(t *testing.T) {
	b := asm.New("f")
	b.Registers(0, 0)

	catchSite, finallySite, opcodePos := b.TryFinally()
	b.Lit(bytecode.OpPush, 1)
	b.Op(bytecode.OpReturn)

	// Never reached in this trace (the try body always returns before
	// throwing); points harmlessly at the finally entry.
	finallyStart := b.Label()
	b.Patch(catchSite)
	b.PatchAt(finallySite, opcodePos, finallyStart)

	b.Branch(bytecode.OpFinally)
	b.Lit(bytecode.OpPush, 2)
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 2 {
		t.Fatalf("got %#v, want INT 2", ret)
	}
}

// TestNestedFinallyPropagatesInSourceOrder covers invariant 8: a throw
// inside a try whose matching catch lies inside an enclosing finally
// propagates through the inner finally before the outer catch runs, and
// the outer finally runs last. Each stage appends its own digit to
// "order" (order = order*10 + n), so the final returned value spells out
// the exact sequence stages actually ran in: 123.
func TestNestedFinallyPropagatesInSourceOrder(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)

	b.Lit(bytecode.OpCreateBinding, "order").Byte(0)
	b.Lit(bytecode.OpPush, 0)
	b.Lit(bytecode.OpInitBinding, "order")

	outerCatchSite, outerFinallySite, outerOpcodePos := b.TryFinally()

	// Inner try/finally with no catch of its own: a throw reaching it is
	// routed through a synthetic catch that just rethrows, so the finally
	// still runs before the throw keeps propagating outward.
	innerCatchSite, innerFinallySite, innerOpcodePos := b.TryFinally()
	b.Lit(bytecode.OpPush, 99)
	b.Branch(bytecode.OpThrow)

	b.Patch(innerCatchSite)
	b.Branch(bytecode.OpCatch)
	b.Branch(bytecode.OpThrow)

	innerFinallyStart := b.Label()
	b.PatchAt(innerFinallySite, innerOpcodePos, innerFinallyStart)
	b.Branch(bytecode.OpFinally)
	appendDigit(b, "order", 1)
	b.Branch(bytecode.OpContextEnd)

	b.Patch(outerCatchSite)
	b.Branch(bytecode.OpCatch)
	b.Lit(bytecode.OpCreateBinding, "e").Byte(1)
	b.Lit(bytecode.OpInitBinding, "e")
	appendDigit(b, "order", 2)

	outerFinallyStart := b.Label()
	b.PatchAt(outerFinallySite, outerOpcodePos, outerFinallyStart)
	finallyOpSite := b.Branch(bytecode.OpFinally)
	appendDigit(b, "order", 3)
	b.Branch(bytecode.OpContextEnd)

	b.Patch(finallyOpSite)
	b.Lit(bytecode.OpIdentReference, "order")
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 123 {
		t.Fatalf("got %#v, want INT 123 (inner finally, then outer catch, then outer finally)", ret)
	}
}

// appendDigit emits `name = name*10 + digit`, reusing ASSIGN_LET_CONST as
// this opcode set's only "write variable by name" instruction.
func appendDigit(b *asm.Builder, name string, digit int) {
	b.Lit(bytecode.OpIdentReference, name)
	b.Lit(bytecode.OpPush, 10)
	b.Op(bytecode.OpMul)
	b.Lit(bytecode.OpPush, digit)
	b.Op(bytecode.OpAdd)
	b.Lit(bytecode.OpAssignLetConst, name)
}
