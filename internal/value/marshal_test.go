package value

import "testing"

func TestMarshalLiteralRoundTrip(t *testing.T) {
	cases := []Value{
		MakeInt(42),
		MakeInt(-7),
		MakeFloat(3.25),
		MakeString("hello"),
		MakeString(""),
		MakeConst(Undefined),
		MakeConst(Null),
	}
	for _, v := range cases {
		b, err := MarshalLiteral(v)
		if err != nil {
			t.Fatalf("marshal %#v: %v", v, err)
		}
		got, n, err := UnmarshalLiteral(b)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if n != len(b) {
			t.Fatalf("consumed %d bytes, want %d", n, len(b))
		}
		if !literalsEqual(got, v) {
			t.Fatalf("round-tripped %#v, want %#v", got, v)
		}
	}
}

// literalsEqual compares by content rather than identity: MarshalLiteral
// round-trips always allocate a fresh heap cell, so Same (pointer
// identity) never holds for strings/floats even when the round trip was
// perfectly faithful.
func literalsEqual(a, b Value) bool {
	switch {
	case a.IsInt() && b.IsInt():
		return a.AsInt() == b.AsInt()
	case a.IsFloat() && b.IsFloat():
		return a.AsFloat() == b.AsFloat()
	case a.IsString() && b.IsString():
		return a.AsString() == b.AsString()
	case a.tag == TagConst && b.tag == TagConst:
		return a.i == b.i
	default:
		return false
	}
}

func TestMarshalLiteralRejectsObjects(t *testing.T) {
	if _, err := MarshalLiteral(MakeObject(nil)); err == nil {
		t.Fatalf("expected an error marshaling an object literal")
	}
}

func TestUnmarshalLiteralTruncated(t *testing.T) {
	if _, _, err := UnmarshalLiteral([]byte{wireInt, 1, 2}); err == nil {
		t.Fatalf("expected an error decoding a truncated int literal")
	}
	if _, _, err := UnmarshalLiteral(nil); err == nil {
		t.Fatalf("expected an error decoding an empty buffer")
	}
}
