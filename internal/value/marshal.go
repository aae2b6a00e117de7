package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// literal tags for MarshalLiteral/UnmarshalLiteral, distinct from Tag
// since the wire form needs to distinguish int/float/string/const (bools
// travel as consts) where the in-memory Value only distinguishes
// int/const/pointer.
const (
	wireInt byte = iota
	wireFloat
	wireString
	wireConst
)

// MarshalLiteral encodes a literal-table entry for the bytecode cache's
// on-disk unit format (internal/cache, cmd/ecmavm's .ecb reader/writer).
// Only the value kinds that can appear in a compiled unit's literal table
// are supported; anything else is a programmer error, not a runtime one.
func MarshalLiteral(v Value) ([]byte, error) {
	switch {
	case v.IsInt():
		buf := make([]byte, 5)
		buf[0] = wireInt
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.AsInt()))
		return buf, nil
	case v.IsFloat():
		buf := make([]byte, 9)
		buf[0] = wireFloat
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.AsFloat()))
		return buf, nil
	case v.IsString():
		s := v.AsString()
		buf := make([]byte, 5+len(s))
		buf[0] = wireString
		binary.LittleEndian.PutUint32(buf[1:5], uint32(len(s)))
		copy(buf[5:], s)
		return buf, nil
	case v.tag == TagConst:
		buf := make([]byte, 5)
		buf[0] = wireConst
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.i))
		return buf, nil
	default:
		return nil, fmt.Errorf("value: cannot marshal literal of kind %v", v.tag)
	}
}

// UnmarshalLiteral decodes one MarshalLiteral-encoded entry and returns
// the number of bytes consumed.
func UnmarshalLiteral(b []byte) (Value, int, error) {
	if len(b) == 0 {
		return Value{}, 0, fmt.Errorf("value: empty literal buffer")
	}
	switch b[0] {
	case wireInt:
		if len(b) < 5 {
			return Value{}, 0, fmt.Errorf("value: truncated int literal")
		}
		return MakeInt(int32(binary.LittleEndian.Uint32(b[1:5]))), 5, nil
	case wireFloat:
		if len(b) < 9 {
			return Value{}, 0, fmt.Errorf("value: truncated float literal")
		}
		bits := binary.LittleEndian.Uint64(b[1:9])
		return MakeFloat(math.Float64frombits(bits)), 9, nil
	case wireString:
		if len(b) < 5 {
			return Value{}, 0, fmt.Errorf("value: truncated string literal header")
		}
		n := int(binary.LittleEndian.Uint32(b[1:5]))
		if len(b) < 5+n {
			return Value{}, 0, fmt.Errorf("value: truncated string literal body")
		}
		return MakeString(string(b[5 : 5+n])), 5 + n, nil
	case wireConst:
		if len(b) < 5 {
			return Value{}, 0, fmt.Errorf("value: truncated const literal")
		}
		return MakeConst(ConstID(binary.LittleEndian.Uint32(b[1:5]))), 5, nil
	default:
		return Value{}, 0, fmt.Errorf("value: unknown literal tag %d", b[0])
	}
}
