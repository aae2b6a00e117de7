// Package value implements the tagged value representation every VM
// component passes around: direct integers, a small set of canonical
// singletons, and compressed pointers to heap cells.
package value

import "sync/atomic"

// Tag is the low-bit discriminator of a Value.
type Tag uint8

const (
	TagInt Tag = iota
	TagConst
	TagPointer
)

// ConstID enumerates the canonical singleton values.
type ConstID int32

const (
	Undefined ConstID = iota
	Null
	True
	False
	Empty
	ErrorSentinel
	ArrayHole
	Uninitialized
	RegisterRef
	SpreadElement
	ReleaseLexEnv
)

// Integer range a direct int Value can hold without promotion to a boxed
// float, matching the spec's 28-to-30-bit payload.
const (
	IntegerNumberMin = -(1 << 29)
	IntegerNumberMax = (1 << 29) - 1
	MultiplyMax      = 1 << 14 // guards the MUL fast path against overflow
)

// Value is the uniform 32-bit-equivalent word. Go's GC owns the heap, so
// the pointer case carries a real *HeapCell instead of a compressed
// offset; copy/free are kept as API-compatible refcount bookkeeping for
// collaborators that want deterministic teardown (iterator close, proxy
// revocation) even though nothing here is ever actually freed early.
type Value struct {
	tag  Tag
	i    int32
	heap *HeapCell
}

// HeapKind discriminates the subtype of a heap cell.
type HeapKind uint8

const (
	HeapFloat HeapKind = iota
	HeapString
	HeapSymbol
	HeapObject
)

// Object is the opaque marker implemented by every heap-resident object
// subtype (fast array, function, bound function, lexical environment,
// proxy, regexp, ...). Concrete behavior lives behind the ObjectOps
// collaborator; this package only stores and tags the pointer.
type Object interface {
	ObjectKind() string
}

// HeapCell is the pointed-to storage for boxed floats, strings, symbols,
// and objects.
type HeapCell struct {
	Kind   HeapKind
	Float  float64
	Str    string
	Sym    *Symbol
	Obj    Object
	refs   int32
}

// Symbol is a unique, possibly-described, non-string property key.
type Symbol struct {
	Description string
}

func direct(tag Tag, i int32) Value { return Value{tag: tag, i: i} }

func MakeConst(id ConstID) Value { return direct(TagConst, int32(id)) }

var (
	UndefinedValue     = MakeConst(Undefined)
	NullValue          = MakeConst(Null)
	TrueValue          = MakeConst(True)
	FalseValue         = MakeConst(False)
	EmptyValue         = MakeConst(Empty)
	ErrorValue         = MakeConst(ErrorSentinel)
	ArrayHoleValue     = MakeConst(ArrayHole)
	UninitializedValue = MakeConst(Uninitialized)
	RegisterRefValue   = MakeConst(RegisterRef)
	SpreadElementValue = MakeConst(SpreadElement)
	ReleaseLexEnvValue = MakeConst(ReleaseLexEnv)
)

// MakeInt builds a direct integer, clamping into range is the caller's
// responsibility; MakeInt32 below promotes automatically.
func MakeInt(n int32) Value { return direct(TagInt, n) }

// MakeInt32 promotes to a boxed float on overflow of the direct range.
func MakeInt32(n int64) Value {
	if n >= IntegerNumberMin && n <= IntegerNumberMax {
		return MakeInt(int32(n))
	}
	return MakeFloat(float64(n))
}

// MakeNumber promotes to a boxed float whenever the value is not a clean
// direct-representable integer.
func MakeNumber(f float64) Value {
	if i := int64(f); float64(i) == f && i >= IntegerNumberMin && i <= IntegerNumberMax {
		return MakeInt(int32(i))
	}
	return MakeFloat(f)
}

func MakeFloat(f float64) Value {
	return fromCell(&HeapCell{Kind: HeapFloat, Float: f, refs: 1})
}

func MakeString(s string) Value {
	return fromCell(&HeapCell{Kind: HeapString, Str: s, refs: 1})
}

func MakeSymbol(description string) Value {
	return fromCell(&HeapCell{Kind: HeapSymbol, Sym: &Symbol{Description: description}, refs: 1})
}

func MakeObject(obj Object) Value {
	return fromCell(&HeapCell{Kind: HeapObject, Obj: obj, refs: 1})
}

func MakeBool(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

func fromCell(c *HeapCell) Value {
	return Value{tag: TagPointer, heap: c}
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsInt() bool     { return v.tag == TagInt }
func (v Value) IsConst(id ConstID) bool {
	return v.tag == TagConst && ConstID(v.i) == id
}
func (v Value) IsUndefined() bool { return v.IsConst(Undefined) }
func (v Value) IsNull() bool      { return v.IsConst(Null) }
func (v Value) IsError() bool     { return v.IsConst(ErrorSentinel) }
func (v Value) IsUninitialized() bool { return v.IsConst(Uninitialized) }
func (v Value) IsArrayHole() bool     { return v.IsConst(ArrayHole) }
func (v Value) IsNullOrUndefined() bool { return v.IsNull() || v.IsUndefined() }

func (v Value) IsBool() bool {
	return v.IsConst(True) || v.IsConst(False)
}

func (v Value) IsPointer() bool { return v.tag == TagPointer }

func (v Value) heapKind(k HeapKind) bool {
	return v.tag == TagPointer && v.heap.Kind == k
}

func (v Value) IsFloat() bool  { return v.heapKind(HeapFloat) }
func (v Value) IsString() bool { return v.heapKind(HeapString) }
func (v Value) IsSymbol() bool { return v.heapKind(HeapSymbol) }
func (v Value) IsObject() bool { return v.heapKind(HeapObject) }

// IsNumber is true for both direct ints and boxed floats.
func (v Value) IsNumber() bool { return v.IsInt() || v.IsFloat() }

// IsPropName is true for the value kinds valid as an object property key:
// strings and symbols (integers are coerced to string elsewhere).
func (v Value) IsPropName() bool { return v.IsString() || v.IsSymbol() }

func (v Value) AsInt() int32 {
	return v.i
}

func (v Value) AsFloat() float64 {
	if v.IsInt() {
		return float64(v.i)
	}
	return v.heap.Float
}

func (v Value) AsString() string {
	return v.heap.Str
}

func (v Value) AsSymbol() *Symbol {
	return v.heap.Sym
}

func (v Value) AsObject() Object {
	return v.heap.Obj
}

func (v Value) AsBool() bool {
	return v.IsConst(True)
}

// RawCompare compares the raw tag/int word of two direct values, valid
// only when both sides are IsInt(); used by the dispatcher's integer fast
// paths instead of converting through float64.
func RawCompare(a, b Value) int {
	switch {
	case a.i < b.i:
		return -1
	case a.i > b.i:
		return 1
	default:
		return 0
	}
}

// Copy increments the refcount of a pointer value; a no-op for direct
// values. Kept for API fidelity with collaborators that track cell
// lifetime explicitly (iterator handles, proxy targets).
func (v Value) Copy() Value {
	if v.tag == TagPointer {
		atomic.AddInt32(&v.heap.refs, 1)
	}
	return v
}

// Free decrements the refcount of a pointer value; a no-op for direct
// values. Go's GC reclaims the cell once all refs (real and tracked) are
// gone, so reaching zero here is advisory, not a trigger for an explicit
// destructor.
func (v Value) Free() {
	if v.tag == TagPointer {
		atomic.AddInt32(&v.heap.refs, -1)
	}
}

// FastCopy/FastFree skip the refcount bump entirely when the value is
// direct, matching the spec's fast_copy/fast_free which test the tag once
// and fall through for non-pointer values.
func (v Value) FastCopy() Value {
	if v.tag != TagPointer {
		return v
	}
	return v.Copy()
}

func (v Value) FastFree() {
	if v.tag != TagPointer {
		return
	}
	v.Free()
}

// Same reports pointer/const identity (===  for non-numeric same-type
// comparisons that don't need the full abstract-equality algorithm).
func Same(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagInt, TagConst:
		return a.i == b.i
	default:
		return a.heap == b.heap
	}
}
