package bytecode_test

import (
	"bytes"
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	b := asm.New("add")
	b.Registers(0, 0)
	b.Flags(bytecode.FlagStrictMode)
	b.Lit(bytecode.OpPush, 1)
	b.Lit(bytecode.OpPush, 2)
	b.Op(bytecode.OpAdd)
	b.Op(bytecode.OpReturn)
	unit := b.Unit()

	encoded := bytecode.Marshal(unit)
	got, err := bytecode.Unmarshal(encoded)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Name != unit.Name {
		t.Errorf("name = %q, want %q", got.Name, unit.Name)
	}
	if got.Flags != unit.Flags {
		t.Errorf("flags = %v, want %v", got.Flags, unit.Flags)
	}
	if !bytes.Equal(got.Code, unit.Code) {
		t.Errorf("code = %v, want %v", got.Code, unit.Code)
	}
	if len(got.Literals) != len(unit.Literals) {
		t.Fatalf("literal count = %d, want %d", len(got.Literals), len(unit.Literals))
	}
	for i, lit := range unit.Literals {
		if !lit.IsInt() || !got.Literals[i].IsInt() {
			t.Fatalf("literal %d not an int on one side", i)
		}
		if lit.AsInt() != got.Literals[i].AsInt() {
			t.Errorf("literal %d = %d, want %d", i, got.Literals[i].AsInt(), lit.AsInt())
		}
	}
}

func TestMarshalUnmarshalWithSubUnits(t *testing.T) {
	inner := asm.New("inner")
	inner.Registers(0, 0)
	inner.Lit(bytecode.OpPush, 9)
	inner.Op(bytecode.OpReturn)

	outer := asm.New("outer")
	outer.Registers(0, 0)
	outer.AddSubUnit(inner.Unit())
	outer.Op(bytecode.OpPushUndefined)
	outer.Op(bytecode.OpReturn)

	encoded := bytecode.Marshal(outer.Unit())
	got, err := bytecode.Unmarshal(encoded)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.SubUnits) != 1 {
		t.Fatalf("sub-unit count = %d, want 1", len(got.SubUnits))
	}
	if got.SubUnits[0].Name != "inner" {
		t.Errorf("sub-unit name = %q, want %q", got.SubUnits[0].Name, "inner")
	}
}

func TestUnmarshalRejectsTruncatedHeader(t *testing.T) {
	if _, err := bytecode.Unmarshal([]byte{0, 0, 0, 1, 'x'}); err == nil {
		t.Fatalf("expected an error decoding a truncated header")
	}
}
