package bytecode

// OperandShape describes where an instruction's operands live, read by
// the dispatcher before the opcode group handler runs.
type OperandShape uint8

const (
	ShapeNone OperandShape = iota
	ShapeStack
	ShapeStackStack
	ShapeLiteral
	ShapeLiteralLiteral
	ShapeStackLiteral
	ShapeThisLiteral
	ShapeBranch
)

// PutDisposition says how a group handler's result is routed back into
// the frame once the handler returns.
type PutDisposition uint8

const (
	PutNone PutDisposition = iota
	PutStack
	PutBlock
	PutIdent
	PutReference
)

// Group names the semantic handler a decode-table entry routes to; many
// opcodes that differ only in their literal encoding or argument count
// share one group.
type Group uint8

const (
	GroupPush Group = iota
	GroupIdent
	GroupBinding
	GroupObjectLiteral
	GroupArith
	GroupBitwise
	GroupUnary
	GroupCompare
	GroupIncrDecr
	GroupProperty
	GroupControlFlow
	GroupScope
	GroupIteration
	GroupTryCatch
	GroupSuperClass
	GroupIteratorDestructure
	GroupCall
	GroupReturn
	GroupGenerator
	GroupSpread
	GroupMisc
	GroupModule
)

// AuxFlags are auxiliary bits a group handler or the dispatcher loop
// consults without needing a full group switch.
type AuxFlags uint8

const (
	AuxNone           AuxFlags = 0
	AuxBackwardBranch AuxFlags = 1 << iota
	AuxNonStatic
)

// DecodeEntry is one row of the flat decode table.
type DecodeEntry struct {
	Shape OperandShape
	Group Group
	Put   PutDisposition
	Aux   AuxFlags
}

// decodeTable is keyed by the one-byte OpCode; every opcode, including
// the families grouped as "extended", has its entry in this single map.
// extendedBase is not used as an index into it.
var decodeTable = buildDecodeTable()

const extendedBase = 256

func entry(shape OperandShape, group Group, put PutDisposition, aux AuxFlags) DecodeEntry {
	return DecodeEntry{Shape: shape, Group: group, Put: put, Aux: aux}
}

func buildDecodeTable() map[OpCode]DecodeEntry {
	t := make(map[OpCode]DecodeEntry, 160)

	push := []OpCode{
		OpPush, OpPushTwo, OpPushThree, OpPushUndefined, OpPushNull, OpPushTrue, OpPushFalse,
		OpPushThis, OpPush0, OpPushPosByte, OpPushNegByte, OpPushLit0, OpPushLitPosByte,
		OpPushLitNegByte, OpPushObject, OpPushArray, OpPushElision, OpPushArrayHole,
		OpPushSpreadElement, OpPushNewTarget, OpPushNamedFuncExpr,
	}
	for _, op := range push {
		t[op] = entry(ShapeLiteral, GroupPush, PutStack, AuxNone)
	}

	t[OpIdentReference] = entry(ShapeLiteral, GroupIdent, PutStack, AuxNone)
	t[OpTypeofIdent] = entry(ShapeLiteral, GroupIdent, PutStack, AuxNone)

	binding := []OpCode{OpCreateBinding, OpInitBinding, OpCheckVar, OpCheckLet,
		OpAssignLetConst, OpThrowConstError, OpVarEval, OpExtVarEval}
	for _, op := range binding {
		t[op] = entry(ShapeLiteralLiteral, GroupBinding, PutNone, AuxNone)
	}

	objLit := []OpCode{OpSetProperty, OpSetGetter, OpSetSetter, OpSetProto, OpSetComputedProperty}
	for _, op := range objLit {
		t[op] = entry(ShapeStackStack, GroupObjectLiteral, PutNone, AuxNone)
	}

	arith := []OpCode{OpAdd, OpSub, OpMul, OpDiv, OpMod, OpExp}
	for _, op := range arith {
		t[op] = entry(ShapeStackStack, GroupArith, PutStack, AuxNone)
	}

	bitwise := []OpCode{OpBitOr, OpBitXor, OpBitAnd, OpLeftShift, OpRightShift, OpUnsRightShift, OpBitNot}
	for _, op := range bitwise {
		t[op] = entry(ShapeStackStack, GroupBitwise, PutStack, AuxNone)
	}

	unary := []OpCode{OpPlus, OpMinus, OpNot, OpVoid, OpTypeof}
	for _, op := range unary {
		t[op] = entry(ShapeStack, GroupUnary, PutStack, AuxNone)
	}

	compare := []OpCode{OpLess, OpGreater, OpLessEqual, OpGreaterEqual, OpEqual, OpNotEqual,
		OpStrictEqual, OpStrictNotEqual, OpIn, OpInstanceof}
	for _, op := range compare {
		t[op] = entry(ShapeStackStack, GroupCompare, PutStack, AuxNone)
	}

	t[OpIncr] = entry(ShapeStack, GroupIncrDecr, PutStack, AuxNone)
	t[OpDecr] = entry(ShapeStack, GroupIncrDecr, PutStack, AuxNone)

	property := []OpCode{OpPropGet, OpPropReference, OpPropDelete, OpDelete}
	for _, op := range property {
		t[op] = entry(ShapeStackLiteral, GroupProperty, PutStack, AuxNone)
	}

	t[OpJump] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxNone)
	t[OpBranchIfTrue] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxNone)
	t[OpBranchIfFalse] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxNone)
	t[OpBranchIfLogicalTrue] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxNone)
	t[OpBranchIfLogicalFalse] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxNone)
	t[OpBranchIfStrictEqual] = entry(ShapeBranch, GroupControlFlow, PutNone, AuxBackwardBranch)

	scope := []OpCode{OpBlockCreateContext, OpWith, OpCloneContext}
	for _, op := range scope {
		t[op] = entry(ShapeLiteral, GroupScope, PutNone, AuxNone)
	}

	iteration := []OpCode{OpForInCreateContext, OpForInGetNext, OpForInHasNext,
		OpForOfCreateContext, OpForOfGetNext, OpForOfHasNext}
	for _, op := range iteration {
		t[op] = entry(ShapeBranch, GroupIteration, PutNone, AuxNone)
	}

	tryCatch := []OpCode{OpTry, OpCatch, OpFinally, OpContextEnd, OpThrow}
	for _, op := range tryCatch {
		t[op] = entry(ShapeBranch, GroupTryCatch, PutNone, AuxNone)
	}

	superClass := []OpCode{OpSuperCall, OpPushSuperConstructor,
		OpPushClassEnvironment, OpInitClass, OpFinalizeClass, OpPushImplicitCtor,
		OpSuperReference, OpResolveLexicalThis}
	for _, op := range superClass {
		t[op] = entry(ShapeLiteral, GroupSuperClass, PutStack, AuxNone)
	}

	iterDestructure := []OpCode{OpGetIterator, OpIteratorStep, OpIteratorStep1, OpIteratorStep2,
		OpIteratorStep3, OpIteratorClose, OpDefaultInitializer, OpRestInitializer,
		OpInitializerPushProp, OpRequireObjectCoercible}
	for _, op := range iterDestructure {
		t[op] = entry(ShapeStack, GroupIteratorDestructure, PutStack, AuxNone)
	}

	call := []OpCode{OpCall, OpCallProp, OpConstruct, OpSpreadNew, OpSpreadCall,
		OpSpreadCallProp, OpSpreadSuperCall, OpTypeOf}
	for _, op := range call {
		t[op] = entry(ShapeLiteral, GroupCall, PutStack, AuxNone)
	}

	ret := []OpCode{OpReturn, OpReturnWithBlock, OpReturnWithLiteral, OpExtReturn, OpReturnPromise}
	for _, op := range ret {
		t[op] = entry(ShapeStack, GroupReturn, PutNone, AuxNone)
	}

	gen := []OpCode{OpCreateGenerator, OpYield, OpAwait}
	for _, op := range gen {
		t[op] = entry(ShapeStack, GroupGenerator, PutStack, AuxNone)
	}

	t[OpSpreadArguments] = entry(ShapeStack, GroupSpread, PutStack, AuxNone)

	misc := []OpCode{OpPop, OpDup, OpPrint}
	for _, op := range misc {
		t[op] = entry(ShapeStack, GroupMisc, PutNone, AuxNone)
	}

	module := []OpCode{OpImport, OpExport}
	for _, op := range module {
		t[op] = entry(ShapeLiteral, GroupModule, PutNone, AuxNone)
	}

	return t
}

// Lookup returns the decode entry for an opcode and whether one exists.
// There is no separate extended region to select: the extended grouping
// is a logical partition of group semantics, not a separate array, since
// this VM's opcode space fits in one byte once the EXT_* synthetic
// markers are excluded from it.
func Lookup(op OpCode) (DecodeEntry, bool) {
	e, ok := decodeTable[op]
	return e, ok
}
