package vm_test

import (
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/vmconfig"
)

// TestArithReturnsInt covers scenario 1 from the testable-properties
// table: two small integer literals added together stay INT-tagged
// rather than promoting to float.
func TestArithReturnsInt(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)
	b.Lit(bytecode.OpPush, 1)
	b.Lit(bytecode.OpPush, 2)
	b.Op(bytecode.OpAdd)
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 3 {
		t.Fatalf("got %#v, want INT 3", ret)
	}
}

// TestTypeofUnboundIdentifier covers invariant 7: typeof on an unbound
// name resolves to the string "undefined" instead of raising a
// ReferenceError.
func TestTypeofUnboundIdentifier(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)
	b.Lit(bytecode.OpTypeofIdent, "neverDeclared")
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsString() || ret.AsString() != "undefined" {
		t.Fatalf("got %#v, want string \"undefined\"", ret)
	}
}

// TestStrictEqualInt covers invariant 4: STRICT_EQUAL on two INT operands
// is raw-word equality, with no float promotion in between.
func TestStrictEqualInt(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)
	b.Lit(bytecode.OpPush, 7)
	b.Lit(bytecode.OpPush, 7)
	b.Op(bytecode.OpStrictEqual)
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsBool() || !ret.AsBool() {
		t.Fatalf("got %#v, want true", ret)
	}
}

// TestBranchIfFalseSkipsBlock exercises a forward branch built with the
// assembler's two-pass backpatching, the same Branch/Patch pattern a
// real compiler's "if" statement would emit.
func TestBranchIfFalseSkipsBlock(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)
	b.Op(bytecode.OpPushFalse)
	site := b.Branch(bytecode.OpBranchIfFalse)
	b.Lit(bytecode.OpPush, 111) // skipped
	b.Op(bytecode.OpReturn)
	b.Patch(site)
	b.Lit(bytecode.OpPush, 222)
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 222 {
		t.Fatalf("got %#v, want INT 222", ret)
	}
}
