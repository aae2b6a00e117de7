package hostobj

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
)

// Native is a Go-implemented function body, used for built-ins installed
// by the embedder.
type Native func(this value.Value, args []value.Value) (value.Value, error)

// Function is either a bytecode function (Unit set) or a native function
// (Native set). Closure is the lexical environment the function captures;
// a fresh declarative environment is created per call chained to it.
type Function struct {
	Name          string
	Unit          *bytecode.CompiledCodeUnit
	Closure       *frame.Frame
	Native        Native
	Constructible bool
	Prototype     value.Value

	// HeadProto is the function object's own [[Prototype]] - what
	// GetPrototype/SetPrototype operate on for a Function value. A
	// derived class's constructor has this set to its superclass
	// constructor by InitClass; it is unrelated to Prototype above,
	// which seeds new instances' prototype chain instead.
	HeadProto value.Value

	props map[string]*PropertyDescriptor
}

func (f *Function) ObjectKind() string { return "Function" }

func (f *Function) getOwnProp(key string) (value.Value, bool) {
	switch key {
	case "name":
		return value.MakeString(f.Name), true
	case "length":
		if f.Unit != nil {
			return value.MakeInt32(int64(f.Unit.ArgumentEnd)), true
		}
		return value.MakeInt(0), true
	case "prototype":
		if f.Constructible {
			return f.Prototype, true
		}
	}
	if f.props == nil {
		return value.Value{}, false
	}
	d, ok := f.props[key]
	if !ok {
		return value.Value{}, false
	}
	return d.Value, true
}

func objAsFunction(v value.Value) (*Function, bool) {
	if !v.IsObject() {
		return nil, false
	}
	fn, ok := v.AsObject().(*Function)
	return fn, ok
}

// Call invokes callee (native or bytecode) with the given this-binding
// and arguments, satisfying ObjectOps.Call.
func (s *Store) Call(callee, this value.Value, args []value.Value) (value.Value, error) {
	fn, ok := objAsFunction(callee)
	if !ok {
		return value.Value{}, callNonFunctionErr()
	}
	if fn.Native != nil {
		return fn.Native(this, args)
	}
	if s.Runner == nil {
		return value.Value{}, notRunnable
	}
	return s.Runner.RunUnit(fn.Unit, fn.Closure, this, value.UndefinedValue, args)
}

// Construct builds a fresh plain object (or lets a bytecode constructor
// replace it via an explicit return), wires its prototype from
// newTarget.prototype, and invokes the constructor body with that object
// bound to this.
func (s *Store) Construct(callee, newTarget value.Value, args []value.Value) (value.Value, error) {
	fn, ok := objAsFunction(callee)
	if !ok {
		return value.Value{}, callNonFunctionErr()
	}
	inst := s.NewPlainObject()
	if ntFn, ok := objAsFunction(newTarget); ok && !ntFn.Prototype.IsUndefined() {
		_ = s.SetPrototype(inst, ntFn.Prototype)
	} else if !fn.Prototype.IsUndefined() {
		_ = s.SetPrototype(inst, fn.Prototype)
	}
	if fn.Native != nil {
		return fn.Native(inst, args)
	}
	if s.Runner == nil {
		return value.Value{}, notRunnable
	}
	result, err := s.Runner.RunUnit(fn.Unit, fn.Closure, inst, newTarget, args)
	if err != nil {
		return value.Value{}, err
	}
	if result.IsObject() {
		return result, nil
	}
	return inst, nil
}

func callNonFunctionErr() error {
	return notCallable
}

var notCallable = &callError{"value is not a function"}
var notRunnable = &callError{"function store has no bound runner"}

type callError struct{ msg string }

func (e *callError) Error() string { return e.msg }

// NewNativeFunction wraps a Go function as a callable Value, used by the
// embedder to install built-ins into the global environment.
func NewNativeFunction(name string, arity int, fn Native) value.Value {
	f := &Function{Name: name, Native: fn, HeadProto: value.NullValue, props: make(map[string]*PropertyDescriptor)}
	f.props["length"] = &PropertyDescriptor{Value: value.MakeInt(int32(arity))}
	return value.MakeObject(f)
}

// GlobalObjectBinding adapts the global Object into lexenv.ObjectBinding
// so it can back the root object-bound environment.
type GlobalObjectBinding struct {
	Store *Store
	Obj   value.Value
}

func (g *GlobalObjectBinding) GetProperty(name string) (value.Value, bool) {
	v, err := g.Store.GetProperty(g.Obj, value.MakeString(name))
	if err != nil {
		return value.Value{}, false
	}
	has, _ := g.Store.HasProperty(g.Obj, value.MakeString(name))
	return v, has
}

func (g *GlobalObjectBinding) SetProperty(name string, v value.Value) error {
	return g.Store.SetProperty(g.Obj, value.MakeString(name), v, false)
}

func (g *GlobalObjectBinding) HasProperty(name string) bool {
	has, _ := g.Store.HasProperty(g.Obj, value.MakeString(name))
	return has
}

var _ lexenv.ObjectBinding = (*GlobalObjectBinding)(nil)
