package vm_test

import (
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/value"
	"ecmavm/internal/vmconfig"
)

// TestForLoopAccumulatesSum covers scenario 2:
// var n=0; for (var i=0;i<5;i++) n+=i; n evaluates to 10. ASSIGN_LET_CONST
// doubles as this opcode set's only "write a named variable" instruction,
// so it backs both the loop counter's increment and the accumulator's
// compound addition.
func TestForLoopAccumulatesSum(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)

	b.Lit(bytecode.OpCreateBinding, "n").Byte(0)
	b.Lit(bytecode.OpPush, 0)
	b.Lit(bytecode.OpInitBinding, "n")

	b.Lit(bytecode.OpCreateBinding, "i").Byte(0)
	b.Lit(bytecode.OpPush, 0)
	b.Lit(bytecode.OpInitBinding, "i")

	condLabel := b.Label()
	b.Lit(bytecode.OpIdentReference, "i")
	b.Lit(bytecode.OpPush, 5)
	b.Op(bytecode.OpLess)
	exitSite := b.Branch(bytecode.OpBranchIfFalse)

	b.Lit(bytecode.OpIdentReference, "n")
	b.Lit(bytecode.OpIdentReference, "i")
	b.Op(bytecode.OpAdd)
	b.Lit(bytecode.OpAssignLetConst, "n")

	b.Lit(bytecode.OpIdentReference, "i")
	b.Lit(bytecode.OpPush, 1)
	b.Op(bytecode.OpAdd)
	b.Lit(bytecode.OpAssignLetConst, "i")

	b.BranchTo(bytecode.OpJump, condLabel)
	b.Patch(exitSite)

	b.Lit(bytecode.OpIdentReference, "n")
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	ret, err := m.Run(b.Unit(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 10 {
		t.Fatalf("got %#v, want INT 10", ret)
	}
}

// TestIntArithMatchesFloatArith covers invariant 3: INT-tagged integer
// arithmetic produces the same observable value as boxed-float
// arithmetic for the same operands, within [INTEGER_NUMBER_MIN,
// INTEGER_NUMBER_MAX]. 37*41 is run once with both operands INT-tagged
// (taking execArith's raw-word fast path) and once with both forced into
// boxed floats via value.MakeFloat (taking the ToNumber/float64 path);
// both must observe 1517.
func TestIntArithMatchesFloatArith(t *testing.T) {
	m := vmconfig.Build()

	intB := asm.New("int")
	intB.Registers(0, 0)
	intB.Lit(bytecode.OpPush, 37)
	intB.Lit(bytecode.OpPush, 41)
	intB.Op(bytecode.OpMul)
	intB.Op(bytecode.OpReturn)

	intRet, err := m.Run(intB.Unit(), nil)
	if err != nil {
		t.Fatalf("int run: %v", err)
	}
	if !intRet.IsInt() {
		t.Fatalf("int path result %#v is not INT-tagged", intRet)
	}

	floatB := asm.New("float")
	floatB.Registers(0, 0)
	floatB.Lit(bytecode.OpPush, value.MakeFloat(37))
	floatB.Lit(bytecode.OpPush, value.MakeFloat(41))
	floatB.Op(bytecode.OpMul)
	floatB.Op(bytecode.OpReturn)

	floatRet, err := m.Run(floatB.Unit(), nil)
	if err != nil {
		t.Fatalf("float run: %v", err)
	}

	observed := func(v value.Value) float64 {
		if v.IsInt() {
			return float64(v.AsInt())
		}
		return v.AsFloat()
	}
	if observed(intRet) != 1517 || observed(floatRet) != 1517 {
		t.Fatalf("int path = %v, float path = %v, want both 1517", observed(intRet), observed(floatRet))
	}
}
