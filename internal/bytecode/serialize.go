package bytecode

import (
	"encoding/binary"
	"fmt"

	"ecmavm/internal/value"
)

// Marshal encodes a CompiledCodeUnit into the .ecb wire format cmd/ecmavm
// and internal/cache both read and write: a flat header of the unit's
// region boundaries, the literal table, the raw code stream, and any
// nested sub-units recursively. Debug info is dropped - it is
// re-derivable from source and not needed to execute a cached unit.
func Marshal(u *CompiledCodeUnit) []byte {
	var out []byte
	out = appendString(out, u.Name)
	out = appendUint16(out, uint16(u.Flags))
	out = appendUint16(out, uint16(u.Encoding))
	out = appendUint32(out, uint32(u.ArgumentEnd))
	out = appendUint32(out, uint32(u.RegisterEnd))
	out = appendUint32(out, uint32(u.IdentEnd))
	out = appendUint32(out, uint32(u.ConstLitEnd))
	out = appendUint32(out, uint32(u.LiteralEnd))
	out = appendUint32(out, uint32(u.StackLimit))

	out = appendUint32(out, uint32(len(u.Literals)))
	for _, lit := range u.Literals {
		b, err := value.MarshalLiteral(lit)
		if err != nil {
			// Sub-function/regexp slots in the literal table aren't
			// plain values; store a zero-length marker and let the
			// reader skip it (the VM resolves those through SubUnits).
			out = appendUint32(out, 0)
			continue
		}
		out = appendUint32(out, uint32(len(b)))
		out = append(out, b...)
	}

	out = appendUint32(out, uint32(len(u.Code)))
	out = append(out, u.Code...)

	out = appendUint32(out, uint32(len(u.SubUnits)))
	for _, sub := range u.SubUnits {
		encoded := Marshal(sub)
		out = appendUint32(out, uint32(len(encoded)))
		out = append(out, encoded...)
	}
	return out
}

// Unmarshal decodes a unit produced by Marshal.
func Unmarshal(b []byte) (*CompiledCodeUnit, error) {
	u, _, err := unmarshalAt(b)
	return u, err
}

func unmarshalAt(b []byte) (*CompiledCodeUnit, int, error) {
	u := &CompiledCodeUnit{}
	pos := 0

	name, n, err := readString(b[pos:])
	if err != nil {
		return nil, 0, err
	}
	u.Name = name
	pos += n

	if len(b) < pos+8+4*7 {
		return nil, 0, fmt.Errorf("bytecode: truncated unit header")
	}
	u.Flags = Flags(binary.LittleEndian.Uint16(b[pos:]))
	pos += 2
	u.Encoding = LiteralEncoding(binary.LittleEndian.Uint16(b[pos:]))
	pos += 2
	u.ArgumentEnd = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.RegisterEnd = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.IdentEnd = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.ConstLitEnd = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.LiteralEnd = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.StackLimit = int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4

	litCount := int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.Literals = make([]value.Value, litCount)
	for i := 0; i < litCount; i++ {
		ln := int(binary.LittleEndian.Uint32(b[pos:]))
		pos += 4
		if ln == 0 {
			u.Literals[i] = value.UndefinedValue
			continue
		}
		lit, consumed, err := value.UnmarshalLiteral(b[pos : pos+ln])
		if err != nil {
			return nil, 0, err
		}
		_ = consumed
		u.Literals[i] = lit
		pos += ln
	}

	codeLen := int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.Code = append([]byte(nil), b[pos:pos+codeLen]...)
	pos += codeLen

	subCount := int(binary.LittleEndian.Uint32(b[pos:]))
	pos += 4
	u.SubUnits = make([]*CompiledCodeUnit, subCount)
	for i := 0; i < subCount; i++ {
		subLen := int(binary.LittleEndian.Uint32(b[pos:]))
		pos += 4
		sub, _, err := unmarshalAt(b[pos : pos+subLen])
		if err != nil {
			return nil, 0, err
		}
		u.SubUnits[i] = sub
		pos += subLen
	}

	return u, pos, nil
}

func appendUint16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendString(b []byte, s string) []byte {
	b = appendUint32(b, uint32(len(s)))
	return append(b, s...)
}

func readString(b []byte) (string, int, error) {
	if len(b) < 4 {
		return "", 0, fmt.Errorf("bytecode: truncated string length")
	}
	n := int(binary.LittleEndian.Uint32(b))
	if len(b) < 4+n {
		return "", 0, fmt.Errorf("bytecode: truncated string body")
	}
	return string(b[4 : 4+n]), 4 + n, nil
}
