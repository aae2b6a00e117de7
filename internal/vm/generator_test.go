package vm_test

import (
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/value"
	"ecmavm/internal/vmconfig"
)

// TestGeneratorYieldSequence covers scenario 6: a two-yield generator
// whose first two next() calls report done=false with the yielded
// values and whose third call reports done=true, all without running
// the frame on a separate goroutine.
func TestGeneratorYieldSequence(t *testing.T) {
	b := asm.New("gen")
	b.Registers(0, 0)
	b.Flags(bytecode.FlagGenerator)
	b.Op(bytecode.OpCreateGenerator)
	b.Lit(bytecode.OpPush, 1)
	b.Op(bytecode.OpYield)
	b.Op(bytecode.OpPop)
	b.Lit(bytecode.OpPush, 2)
	b.Op(bytecode.OpYield)
	b.Op(bytecode.OpPop)
	b.Op(bytecode.OpReturn)

	m := vmconfig.Build()
	genVal, err := m.RunUnit(b.Unit(), nil, value.UndefinedValue, value.UndefinedValue, nil)
	if err != nil {
		t.Fatalf("RunUnit: %v", err)
	}
	if !genVal.IsObject() {
		t.Fatalf("expected a generator object, got %#v", genVal)
	}

	next, err := m.Objects.GetProperty(genVal, value.MakeString("next"))
	if err != nil {
		t.Fatalf("get next: %v", err)
	}

	step := func() (value.Value, bool) {
		res, err := m.Objects.Call(next, genVal, nil)
		if err != nil {
			t.Fatalf("call next: %v", err)
		}
		v, err := m.Objects.GetProperty(res, value.MakeString("value"))
		if err != nil {
			t.Fatalf("get value: %v", err)
		}
		d, err := m.Objects.GetProperty(res, value.MakeString("done"))
		if err != nil {
			t.Fatalf("get done: %v", err)
		}
		return v, d.AsBool()
	}

	v1, done1 := step()
	if done1 || !v1.IsInt() || v1.AsInt() != 1 {
		t.Fatalf("first next() = (%#v, %v), want (1, false)", v1, done1)
	}
	v2, done2 := step()
	if done2 || !v2.IsInt() || v2.AsInt() != 2 {
		t.Fatalf("second next() = (%#v, %v), want (2, false)", v2, done2)
	}
	_, done3 := step()
	if !done3 {
		t.Fatalf("third next() done = false, want true")
	}
}
