package bytecode

// OpCode is the primary byte of an instruction. EXT_OPCODE signals that a
// second byte selects a member of the extended region, keeping the common
// instructions within the dense one-byte space.
type OpCode byte

const (
	// Constants & pushes
	OpPush OpCode = iota
	OpPushTwo
	OpPushThree
	OpPushUndefined
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushThis
	OpPush0
	OpPushPosByte
	OpPushNegByte
	OpPushLit0
	OpPushLitPosByte
	OpPushLitNegByte
	OpPushObject
	OpPushArray
	OpPushElision
	OpPushArrayHole
	OpPushSpreadElement
	OpPushNewTarget
	OpPushNamedFuncExpr

	// Identifiers
	OpIdentReference
	OpTypeofIdent

	// Bindings
	OpCreateBinding
	OpInitBinding
	OpCheckVar
	OpCheckLet
	OpAssignLetConst
	OpThrowConstError
	OpVarEval
	OpExtVarEval

	// Object literal
	OpSetProperty
	OpSetGetter
	OpSetSetter
	OpSetProto
	OpSetComputedProperty

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp

	// Bitwise
	OpBitOr
	OpBitXor
	OpBitAnd
	OpLeftShift
	OpRightShift
	OpUnsRightShift
	OpBitNot

	// Unary & logical
	OpPlus
	OpMinus
	OpNot
	OpVoid
	OpTypeof

	// Comparison
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpStrictEqual
	OpStrictNotEqual
	OpIn
	OpInstanceof

	// Pre/post incr/decr
	OpIncr
	OpDecr

	// Property access
	OpPropGet
	OpPropReference
	OpPropDelete
	OpDelete

	// Control flow
	OpJump
	OpBranchIfTrue
	OpBranchIfFalse
	OpBranchIfLogicalTrue
	OpBranchIfLogicalFalse
	OpBranchIfStrictEqual

	// Blocks & scopes
	OpBlockCreateContext
	OpWith
	OpCloneContext

	// Iteration
	OpForInCreateContext
	OpForInGetNext
	OpForInHasNext
	OpForOfCreateContext
	OpForOfGetNext
	OpForOfHasNext

	// Try/catch/finally
	OpTry
	OpCatch
	OpFinally
	OpContextEnd
	OpThrow

	// Super / class
	OpSuperCall
	OpSpreadSuperCall
	OpPushSuperConstructor
	OpPushClassEnvironment
	OpInitClass
	OpFinalizeClass
	OpPushImplicitCtor
	OpSuperReference
	OpResolveLexicalThis

	// Iterator / rest / destructuring
	OpGetIterator
	OpIteratorStep
	OpIteratorStep1
	OpIteratorStep2
	OpIteratorStep3
	OpIteratorClose
	OpDefaultInitializer
	OpRestInitializer
	OpInitializerPushProp
	OpRequireObjectCoercible

	// Calls
	OpCall
	OpCallProp
	OpConstruct
	OpSpreadNew
	OpSpreadCall
	OpSpreadCallProp
	OpTypeOf

	// Return family
	OpReturn
	OpReturnWithBlock
	OpReturnWithLiteral
	OpExtReturn
	OpReturnPromise

	// Generators / async
	OpCreateGenerator
	OpYield
	OpAwait

	// Spread args
	OpSpreadArguments

	// Misc stack / print (retained from the teacher's simpler chunk layout,
	// used by the disassembler and by tests that don't need full object
	// semantics)
	OpPop
	OpDup
	OpPrint

	// Modules
	OpImport
	OpExport

	// Extended-region marker. When the primary byte equals OpExtOpcode the
	// decoder reads one more byte selecting an entry from the extended
	// decode table region (see decode.go).
	OpExtOpcode

	// Synthetic error continuation, written into a frame's cursor by call/
	// construct/spread/super_call on an exception so the next dispatch
	// step enters the ordinary error path.
	OpExtError
)

// opcodeNames backs the disassembler; kept in opcode declaration order.
var opcodeNames = [...]string{
	"PUSH", "PUSH_TWO", "PUSH_THREE", "PUSH_UNDEFINED", "PUSH_NULL", "PUSH_TRUE", "PUSH_FALSE",
	"PUSH_THIS", "PUSH_0", "PUSH_POS_BYTE", "PUSH_NEG_BYTE", "PUSH_LIT_0", "PUSH_LIT_POS_BYTE",
	"PUSH_LIT_NEG_BYTE", "PUSH_OBJECT", "PUSH_ARRAY", "PUSH_ELISION", "PUSH_ARRAY_HOLE",
	"PUSH_SPREAD_ELEMENT", "PUSH_NEW_TARGET", "PUSH_NAMED_FUNC_EXPR",
	"IDENT_REFERENCE", "TYPEOF_IDENT",
	"CREATE_BINDING", "INIT_BINDING", "CHECK_VAR", "CHECK_LET", "ASSIGN_LET_CONST",
	"THROW_CONST_ERROR", "VAR_EVAL", "EXT_VAR_EVAL",
	"SET_PROPERTY", "SET_GETTER", "SET_SETTER", "SET__PROTO__", "SET_COMPUTED_PROPERTY",
	"ADD", "SUB", "MUL", "DIV", "MOD", "EXP",
	"BIT_OR", "BIT_XOR", "BIT_AND", "LEFT_SHIFT", "RIGHT_SHIFT", "UNS_RIGHT_SHIFT", "BIT_NOT",
	"PLUS", "MINUS", "NOT", "VOID", "TYPEOF",
	"LESS", "GREATER", "LESS_EQUAL", "GREATER_EQUAL", "EQUAL", "NOT_EQUAL",
	"STRICT_EQUAL", "STRICT_NOT_EQUAL", "IN", "INSTANCEOF",
	"INCR", "DECR",
	"PROP_GET", "PROP_REFERENCE", "PROP_DELETE", "DELETE",
	"JUMP", "BRANCH_IF_TRUE", "BRANCH_IF_FALSE", "BRANCH_IF_LOGICAL_TRUE",
	"BRANCH_IF_LOGICAL_FALSE", "BRANCH_IF_STRICT_EQUAL",
	"BLOCK_CREATE_CONTEXT", "WITH", "CLONE_CONTEXT",
	"FOR_IN_CREATE_CONTEXT", "FOR_IN_GET_NEXT", "FOR_IN_HAS_NEXT",
	"FOR_OF_CREATE_CONTEXT", "FOR_OF_GET_NEXT", "FOR_OF_HAS_NEXT",
	"TRY", "CATCH", "FINALLY", "CONTEXT_END", "THROW",
	"SUPER_CALL", "SPREAD_SUPER_CALL", "PUSH_SUPER_CONSTRUCTOR", "PUSH_CLASS_ENVIRONMENT",
	"INIT_CLASS", "FINALIZE_CLASS", "PUSH_IMPLICIT_CTOR", "SUPER_REFERENCE", "RESOLVE_LEXICAL_THIS",
	"GET_ITERATOR", "ITERATOR_STEP", "ITERATOR_STEP_1", "ITERATOR_STEP_2", "ITERATOR_STEP_3",
	"ITERATOR_CLOSE", "DEFAULT_INITIALIZER", "REST_INITIALIZER", "INITIALIZER_PUSH_PROP",
	"REQUIRE_OBJECT_COERCIBLE",
	"CALL", "CALL_PROP", "CONSTRUCT", "SPREAD_NEW", "SPREAD_CALL", "SPREAD_CALL_PROP", "TYPE_OF",
	"RETURN", "RETURN_WITH_BLOCK", "RETURN_WITH_LITERAL", "EXT_RETURN", "RETURN_PROMISE",
	"CREATE_GENERATOR", "YIELD", "AWAIT",
	"SPREAD_ARGUMENTS",
	"POP", "DUP", "PRINT",
	"IMPORT", "EXPORT",
	"EXT_OPCODE", "EXT_ERROR",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}
