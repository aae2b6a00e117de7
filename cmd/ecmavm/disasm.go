package main

import (
	"fmt"
	"os"
	"strings"

	"ecmavm/internal/bytecode"
)

// disasmCommand pretty-prints a unit's decoded instruction stream,
// recursing into nested function units the same way a compiler's own
// --dump-bytecode flag would.
func disasmCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ecmavm disasm <file.ecb>")
	}
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	unit, err := bytecode.Unmarshal(blob)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	printUnit(unit, 0)
	return nil
}

func printUnit(u *bytecode.CompiledCodeUnit, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%sunit %q (regs=%d args=%d flags=%04x)\n", indent, u.Name, u.RegisterEnd, u.ArgumentEnd, u.Flags)

	r := bytecode.NewReader(u.Code, u.Encoding)
	for !r.AtEnd() {
		start := r.Cursor
		op := r.ReadOpCode()
		operand := disasmOperand(r, op, start, u)
		fmt.Printf("%s  %4d %-24s%s\n", indent, start, op, operand)
	}

	for i, sub := range u.SubUnits {
		fmt.Printf("%s-- sub-unit %d --\n", indent, i)
		printUnit(sub, depth+1)
	}
}

// disasmOperand reads exactly the bytes the dispatch loop itself would
// consume for op, opcode by opcode. The decode table's Shape field
// isn't a reliable guide here: several opcodes sharing one Shape (the
// Push family, the super/class family) consume different operand
// shapes in practice (a literal index for some members, a raw byte or
// nothing at all for others), with the real decision made inside each
// group's handler rather than by the table. A generic shape-driven
// reader would desync the byte stream the moment it met one of those
// opcodes, so this mirrors the handlers directly instead.
func disasmOperand(r *bytecode.Reader, op bytecode.OpCode, start int, u *bytecode.CompiledCodeUnit) string {
	switch op {
	// Push family: most read a literal index, a few read a raw byte, the
	// rest read nothing.
	case bytecode.OpPush, bytecode.OpPushTwo, bytecode.OpPushThree,
		bytecode.OpPushLitPosByte, bytecode.OpPushLitNegByte, bytecode.OpPushNamedFuncExpr:
		return literalOperandString(r.ReadLiteralIndex(), u)
	case bytecode.OpPushPosByte:
		return fmt.Sprintf("%d", r.ReadByte())
	case bytecode.OpPushNegByte:
		return fmt.Sprintf("-%d", r.ReadByte())

	// Identifiers and bindings: always a name literal; CREATE_BINDING
	// follows with one more byte selecting var/let/const.
	case bytecode.OpIdentReference, bytecode.OpTypeofIdent,
		bytecode.OpInitBinding, bytecode.OpCheckVar, bytecode.OpCheckLet,
		bytecode.OpAssignLetConst, bytecode.OpThrowConstError, bytecode.OpVarEval, bytecode.OpExtVarEval:
		return literalOperandString(r.ReadLiteralIndex(), u)
	case bytecode.OpCreateBinding:
		name := literalOperandString(r.ReadLiteralIndex(), u)
		kind := r.ReadByte()
		return fmt.Sprintf("%s kind=%d", name, kind)

	// Property access: one reserved literal-index slot ahead of the op's
	// own stack operands.
	case bytecode.OpPropGet, bytecode.OpPropReference, bytecode.OpPropDelete, bytecode.OpDelete:
		return fmt.Sprintf("site=%d", r.ReadLiteralIndex())

	// Scope: a literal-index name (block label / with-object hint).
	case bytecode.OpBlockCreateContext, bytecode.OpWith, bytecode.OpCloneContext:
		return literalOperandString(r.ReadLiteralIndex(), u)

	// Calls/construct/super-call: a raw argument count byte.
	case bytecode.OpCall, bytecode.OpCallProp, bytecode.OpConstruct, bytecode.OpSuperCall:
		return fmt.Sprintf("argc=%d", r.ReadByte())
	// Spread variants take their argument count off the stack at
	// runtime; nothing to decode here.
	case bytecode.OpSpreadNew, bytecode.OpSpreadCall, bytecode.OpSpreadCallProp, bytecode.OpSpreadSuperCall:
		return ""

	case bytecode.OpSuperReference:
		return literalOperandString(r.ReadLiteralIndex(), u)

	case bytecode.OpSpreadArguments:
		return fmt.Sprintf("n=%d", r.ReadByte())

	case bytecode.OpImport, bytecode.OpExport:
		return literalOperandString(r.ReadLiteralIndex(), u)

	// Every branch-shaped opcode reads a 2-byte signed offset relative
	// to its own opcode position (see execControlFlow's `start + offset`).
	case bytecode.OpJump, bytecode.OpBranchIfTrue, bytecode.OpBranchIfFalse,
		bytecode.OpBranchIfLogicalTrue, bytecode.OpBranchIfLogicalFalse, bytecode.OpBranchIfStrictEqual,
		bytecode.OpForInCreateContext, bytecode.OpForInGetNext, bytecode.OpForInHasNext,
		bytecode.OpForOfCreateContext, bytecode.OpForOfGetNext, bytecode.OpForOfHasNext,
		bytecode.OpCatch, bytecode.OpFinally, bytecode.OpContextEnd, bytecode.OpThrow:
		off := r.ReadBranchOffset(2)
		return fmt.Sprintf("-> %d", start+off)

	// OP_TRY carries its own extension past the generic catch-offset
	// branch: a hasFinally flag byte and, when set, a second branch
	// offset for the finally entry, anchored on OP_TRY's own opcode
	// position like every other branch (see execTryCatch).
	case bytecode.OpTry:
		catchOff := r.ReadBranchOffset(2)
		s := fmt.Sprintf("catch-> %d", start+catchOff)
		if r.ReadByte() != 0 {
			finallyOff := r.ReadBranchOffset(2)
			s += fmt.Sprintf(" finally-> %d", start+finallyOff)
		}
		return s

	default:
		return ""
	}
}

func literalOperandString(idx int, u *bytecode.CompiledCodeUnit) string {
	if idx < 0 || idx >= len(u.Literals) {
		return fmt.Sprintf("#%d", idx)
	}
	v := u.Literals[idx]
	switch {
	case v.IsString():
		return fmt.Sprintf("#%d %q", idx, v.AsString())
	case v.IsInt():
		return fmt.Sprintf("#%d %d", idx, v.AsInt())
	case v.IsFloat():
		return fmt.Sprintf("#%d %g", idx, v.AsFloat())
	default:
		return fmt.Sprintf("#%d", idx)
	}
}
