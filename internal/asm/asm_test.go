package asm

import (
	"testing"

	"ecmavm/internal/bytecode"
)

func TestForwardBranchOffsetTargetsPatchPoint(t *testing.T) {
	b := New("test")
	b.Op(bytecode.OpPushFalse)
	site := b.Branch(bytecode.OpBranchIfFalse)
	b.Lit(bytecode.OpPush, 1)
	b.Patch(site)
	b.Lit(bytecode.OpPush, 2)

	code := b.Unit().Code
	// code layout: [PUSH_FALSE][BRANCH_IF_FALSE][off_lo][off_hi][PUSH][idx][PUSH][idx]
	opcodePos := 1
	offset := int(int16(uint16(code[2]) | uint16(code[3])<<8))
	target := opcodePos + offset
	patchPoint := 4 + 2 // PUSH opcode + literal index byte emitted between Branch and Patch
	if target != patchPoint {
		t.Fatalf("branch target = %d, want %d (code=%v)", target, patchPoint, code)
	}
}

func TestBackwardBranchTargetsLabel(t *testing.T) {
	b := New("loop")
	label := b.Label()
	b.Lit(bytecode.OpPush, 1)
	b.BranchTo(bytecode.OpJump, label)

	code := b.Unit().Code
	jumpOpcodePos := len(code) - 3
	offset := int(int16(uint16(code[jumpOpcodePos+1]) | uint16(code[jumpOpcodePos+2])<<8))
	target := jumpOpcodePos + offset
	if target != label {
		t.Fatalf("backward branch target = %d, want label %d (code=%v)", target, label, code)
	}
}

func TestToValueUnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected toValue to panic on an unsupported literal type")
		}
	}()
	toValue(struct{}{})
}
