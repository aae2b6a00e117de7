// Package asm is a hand-assembler for CompiledCodeUnits, used only by
// tests: there is no parser/compiler in scope (spec.md's Non-goals
// exclude parsing), so every test that wants to run real bytecode builds
// its unit with this package instead, mirroring the teacher's own
// vm_test.go/vm_bugfixes_test.go style of assembling minimal chunks by
// hand before there was a compiler to lean on.
package asm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/value"
)

// Builder accumulates opcodes and literals into a CompiledCodeUnit.
// Label/Patch let a test emit a forward branch before the jump target is
// known, the same two-pass approach a real compiler's backpatcher uses.
type Builder struct {
	unit *bytecode.CompiledCodeUnit
}

func New(name string) *Builder {
	u := bytecode.NewCompiledCodeUnit(name)
	return &Builder{unit: u}
}

// Registers reserves argEnd parameter slots and regEnd total registers.
func (b *Builder) Registers(argEnd, regEnd int) *Builder {
	b.unit.ArgumentEnd = argEnd
	b.unit.RegisterEnd = regEnd
	b.unit.StackLimit = regEnd + 64
	return b
}

func (b *Builder) Flags(f bytecode.Flags) *Builder {
	b.unit.Flags = f
	return b
}

// Op emits a bare opcode with no operand.
func (b *Builder) Op(op bytecode.OpCode) *Builder {
	b.unit.WriteOp(op)
	return b
}

// Byte emits a raw operand byte following the previous opcode (register
// indices, argument counts, small immediates).
func (b *Builder) Byte(v byte) *Builder {
	b.unit.WriteByte(v)
	return b
}

// Lit adds v to the literal table and emits op with the resulting
// literal index (PUSH, PUSH_LIT_POS_BYTE, CREATE_BINDING's name operand,
// ...).
func (b *Builder) Lit(op bytecode.OpCode, v interface{}) *Builder {
	idx := b.unit.AddLiteral(toValue(v))
	b.unit.WriteOp(op)
	b.unit.WriteLiteralIndex(idx)
	return b
}

// LitIndex emits op followed by a literal-table reference to an index
// already added via AddLiteral (used when the same literal backs more
// than one instruction, e.g. a variable name read then written).
func (b *Builder) LitIndex(op bytecode.OpCode, idx int) *Builder {
	b.unit.WriteOp(op)
	b.unit.WriteLiteralIndex(idx)
	return b
}

// AddLiteral exposes the underlying unit's literal table for callers
// that need the index before emitting (e.g. building a closure's
// SubUnits table).
func (b *Builder) AddLiteral(v interface{}) int {
	return b.unit.AddLiteral(toValue(v))
}

func (b *Builder) AddSubUnit(sub *bytecode.CompiledCodeUnit) int {
	return b.unit.AddSubUnit(sub)
}

// Label marks the current code offset for a backward branch.
func (b *Builder) Label() int {
	return len(b.unit.Code)
}

// Branch emits op followed by a placeholder 2-byte offset and returns the
// byte offset of the placeholder for a later Patch call.
func (b *Builder) Branch(op bytecode.OpCode) (site int) {
	b.unit.WriteOp(op)
	site = len(b.unit.Code)
	b.unit.WriteBranchOffset(2, 0)
	return site
}

// BranchTo emits a branch to an already-known target (a backward jump to
// a Label()'d offset).
func (b *Builder) BranchTo(op bytecode.OpCode, target int) *Builder {
	site := len(b.unit.Code) + 1
	b.unit.WriteOp(op)
	b.unit.WriteBranchOffset(2, branchOffsetFor(site, target))
	return b
}

// Patch fixes up a forward branch emitted by Branch once its target
// (the current code offset) is known.
func (b *Builder) Patch(site int) *Builder {
	return b.PatchAt(site, site-1, len(b.unit.Code))
}

// PatchAt fixes up a forward branch placeholder at site whose owning
// opcode sits at opcodePos, for the rarer branch that isn't immediately
// preceded by its own opcode byte the way Branch's placeholders always
// are (OP_TRY's finally-offset placeholder, emitted by TryFinally, comes
// after the catch-offset placeholder and a flag byte instead).
func (b *Builder) PatchAt(site, opcodePos, target int) *Builder {
	offset := target - opcodePos
	b.unit.Code[site] = byte(offset & 0xFF)
	b.unit.Code[site+1] = byte((offset >> 8) & 0xFF)
	return b
}

// Try emits OP_TRY with no finally clause: a catch-offset placeholder
// (patched with Patch, same as any other Branch) followed by a zero
// hasFinally flag byte.
func (b *Builder) Try() (catchSite int) {
	b.unit.WriteOp(bytecode.OpTry)
	catchSite = len(b.unit.Code)
	b.unit.WriteBranchOffset(2, 0)
	b.unit.WriteByte(0)
	return catchSite
}

// TryFinally emits OP_TRY with its finally extension: the usual
// catch-offset placeholder, a nonzero hasFinally flag byte, and a second
// forward-branch placeholder for the finally entry. catchSite patches
// with Patch as usual; finallySite needs PatchAt(finallySite, opcodePos,
// target) since it isn't preceded by its own opcode byte.
func (b *Builder) TryFinally() (catchSite, finallySite, opcodePos int) {
	opcodePos = len(b.unit.Code)
	b.unit.WriteOp(bytecode.OpTry)
	catchSite = len(b.unit.Code)
	b.unit.WriteBranchOffset(2, 0)
	b.unit.WriteByte(1)
	finallySite = len(b.unit.Code)
	b.unit.WriteBranchOffset(2, 0)
	return catchSite, finallySite, opcodePos
}

// branchOffsetFor computes the signed offset the dispatch loop expects:
// it adds the offset to the opcode's OWN byte position (one before
// site, which points at the first placeholder byte), not to the
// position after the placeholder - see execControlFlow's `start +
// offset`.
func branchOffsetFor(site, target int) int {
	return target - (site - 1)
}

// Unit finishes assembly and returns the built CompiledCodeUnit.
func (b *Builder) Unit() *bytecode.CompiledCodeUnit {
	return b.unit
}

// toValue converts a plain Go literal into the tagged Value a test wants
// in the unit's literal table; it covers every kind a hand-assembled test
// chunk needs (numbers, strings, bools), not the full literal space a
// real compiler's constant pool would carry (regexps, template cookies).
func toValue(v interface{}) value.Value {
	switch t := v.(type) {
	case value.Value:
		return t
	case int:
		return value.MakeInt32(int64(t))
	case int32:
		return value.MakeInt(t)
	case int64:
		return value.MakeInt32(t)
	case float64:
		return value.MakeNumber(t)
	case string:
		return value.MakeString(t)
	case bool:
		return value.MakeBool(t)
	case nil:
		return value.UndefinedValue
	default:
		panic("asm: unsupported literal type")
	}
}
