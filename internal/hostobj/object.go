// Package hostobj is the default concrete implementation of the VM's
// object-storage, iteration, and abstract-operations collaborators: a
// prototype-chain property store, fast arrays, native and bytecode
// functions, and Proxy get/set traps.
package hostobj

import (
	"fmt"
	"sort"
	"sync"

	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

// PropertyDescriptor is one slot in an Object's property map.
type PropertyDescriptor struct {
	Value        value.Value
	Get          value.Value
	Set          value.Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// Object is the general-purpose heap object every non-array, non-function
// value.Value of kind HeapObject wraps, unless it is a *Array, *Function,
// or *Proxy.
type Object struct {
	mu         sync.RWMutex
	props      map[string]*PropertyDescriptor
	keyOrder   []string
	Prototype  value.Value
	Extensible bool
	ClassName  string
}

func NewObject() *Object {
	return &Object{
		props:      make(map[string]*PropertyDescriptor),
		Prototype:  value.NullValue,
		Extensible: true,
		ClassName:  "Object",
	}
}

func (o *Object) ObjectKind() string { return "Object" }

func (o *Object) getOwn(name string) (*PropertyDescriptor, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.props[name]
	return d, ok
}

func (o *Object) defineOwn(name string, d *PropertyDescriptor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[name]; !exists {
		o.keyOrder = append(o.keyOrder, name)
	}
	o.props[name] = d
}

func (o *Object) deleteOwn(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	d, ok := o.props[name]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, name)
	for i, k := range o.keyOrder {
		if k == name {
			o.keyOrder = append(o.keyOrder[:i], o.keyOrder[i+1:]...)
			break
		}
	}
	return true
}

func (o *Object) ownKeysEnumerable() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []string
	for _, k := range o.keyOrder {
		if o.props[k].Enumerable {
			out = append(out, k)
		}
	}
	return out
}

// Store is the ObjectOps collaborator: it owns every heap object created
// during a run and provides the VM's property-access and call/construct
// surface.
type Store struct {
	GlobalThis value.Value
	Runner     Runner
}

// Runner is the minimal surface the store needs back from the owning
// Machine to recurse into a bytecode function body; defined here (rather
// than importing vm, which would cycle back to hostobj) and satisfied by
// *vm.Machine.RunUnit.
type Runner interface {
	RunUnit(unit *bytecode.CompiledCodeUnit, closure *frame.Frame, this value.Value, newTarget value.Value, args []value.Value) (value.Value, error)
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) NewPlainObject() value.Value {
	return value.MakeObject(NewObject())
}

func (s *Store) NewFastArray(elems []value.Value) value.Value {
	a := &Array{Elements: append([]value.Value(nil), elems...)}
	return value.MakeObject(a)
}

func (s *Store) FastArrayGet(obj value.Value, idx int) (value.Value, bool, bool) {
	a, ok := asArray(obj)
	if !ok {
		return value.Value{}, false, false
	}
	if idx < 0 || idx >= len(a.Elements) {
		return value.Value{}, false, false
	}
	v := a.Elements[idx]
	return v, v.IsArrayHole(), true
}

func (s *Store) FastArraySet(obj value.Value, idx int, v value.Value) bool {
	a, ok := asArray(obj)
	if !ok {
		return false
	}
	if idx < 0 {
		return false
	}
	for len(a.Elements) <= idx {
		a.Elements = append(a.Elements, value.ArrayHoleValue)
	}
	a.Elements[idx] = v
	return true
}

func (s *Store) FastArrayLen(obj value.Value) (int, bool) {
	a, ok := asArray(obj)
	if !ok {
		return 0, false
	}
	return len(a.Elements), true
}

func asArray(v value.Value) (*Array, bool) {
	if !v.IsObject() {
		return nil, false
	}
	a, ok := v.AsObject().(*Array)
	return a, ok
}

func asObject(v value.Value) (*Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.AsObject().(*Object)
	return o, ok
}

// GetProperty implements object_get with the prototype chain, array
// length/index fallthrough, and Proxy get traps.
func (s *Store) GetProperty(obj, name value.Value) (value.Value, error) {
	key := propKeyString(name)

	if p, ok := objAsProxy(obj); ok {
		return p.get(s, key)
	}

	if a, ok := asArray(obj); ok {
		if key == "length" {
			return value.MakeInt32(int64(len(a.Elements))), nil
		}
		if idx, ok := arrayIndex(key); ok {
			if v, hole, ok := s.FastArrayGet(obj, idx); ok && !hole {
				return v, nil
			}
		}
	}

	if fn, ok := objAsFunction(obj); ok {
		if v, ok := fn.getOwnProp(key); ok {
			return v, nil
		}
	}

	if g, ok := asGenerator(obj); ok {
		if v, ok := g.getOwnProp(s, key); ok {
			return v, nil
		}
	}

	cur := obj
	for cur.IsObject() {
		o, ok := asObject(cur)
		if !ok {
			break
		}
		if d, ok := o.getOwn(key); ok {
			if d.IsAccessor {
				if d.Get.IsUndefined() {
					return value.UndefinedValue, nil
				}
				return s.Call(d.Get, obj, nil)
			}
			return d.Value, nil
		}
		cur = o.Prototype
	}
	return value.UndefinedValue, nil
}

func (s *Store) SetProperty(obj, name, v value.Value, strict bool) error {
	key := propKeyString(name)

	if p, ok := objAsProxy(obj); ok {
		return p.set(s, key, v)
	}

	if a, ok := asArray(obj); ok {
		if key == "length" {
			n, err := s.toIntStrict(v)
			if err != nil {
				return err
			}
			if n < len(a.Elements) {
				a.Elements = a.Elements[:n]
			} else {
				for len(a.Elements) < n {
					a.Elements = append(a.Elements, value.ArrayHoleValue)
				}
			}
			return nil
		}
		if idx, ok := arrayIndex(key); ok {
			s.FastArraySet(obj, idx, v)
			return nil
		}
	}

	o, ok := asObject(obj)
	if !ok {
		if strict {
			return vmerr.TypeError("cannot set property '%s' on non-object", key)
		}
		return nil
	}
	if existing, ok := o.getOwn(key); ok && existing.IsAccessor {
		if existing.Set.IsUndefined() {
			if strict {
				return vmerr.TypeError("cannot assign to property '%s' which has only a getter", key)
			}
			return nil
		}
		_, err := s.Call(existing.Set, obj, []value.Value{v})
		return err
	}
	o.defineOwn(key, &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	return nil
}

func (s *Store) DeleteProperty(obj, name value.Value) (bool, error) {
	key := propKeyString(name)
	o, ok := asObject(obj)
	if !ok {
		return true, nil
	}
	return o.deleteOwn(key), nil
}

func (s *Store) HasProperty(obj, name value.Value) (bool, error) {
	key := propKeyString(name)
	cur := obj
	for cur.IsObject() {
		o, ok := asObject(cur)
		if !ok {
			if a, ok := asArray(cur); ok {
				if key == "length" {
					return true, nil
				}
				if idx, ok := arrayIndex(key); ok {
					return idx < len(a.Elements) && !a.Elements[idx].IsArrayHole(), nil
				}
			}
			break
		}
		if _, ok := o.getOwn(key); ok {
			return true, nil
		}
		cur = o.Prototype
	}
	return false, nil
}

// SetPrototype sets obj's own [[Prototype]]. For a plain Object that's the
// ordinary prototype-chain link; for a Function it's the function
// object's own link (e.g. a derived class's constructor pointing at its
// superclass constructor), distinct from Function.Prototype, which is the
// "prototype" property Construct uses to seed new instances.
func (s *Store) SetPrototype(obj, proto value.Value) error {
	if o, ok := asObject(obj); ok {
		o.Prototype = proto
		return nil
	}
	if fn, ok := objAsFunction(obj); ok {
		fn.HeadProto = proto
		return nil
	}
	return nil
}

func (s *Store) GetPrototype(obj value.Value) value.Value {
	if o, ok := asObject(obj); ok {
		return o.Prototype
	}
	if fn, ok := objAsFunction(obj); ok {
		if fn.HeadProto.IsUndefined() {
			return value.NullValue
		}
		return fn.HeadProto
	}
	return value.NullValue
}

func (s *Store) IsCallable(v value.Value) bool {
	_, ok := objAsFunction(v)
	return ok
}

func (s *Store) IsConstructor(v value.Value) bool {
	fn, ok := objAsFunction(v)
	return ok && fn.Constructible
}

// NewFunction builds a constructible bytecode function with a fresh
// "prototype" object (holding the customary back-reference to the
// function itself via "constructor"), the same default every function
// declaration/expression gets before anything reassigns it.
func (s *Store) NewFunction(unit interface{}, name string, closure *frame.Frame) value.Value {
	u, _ := unit.(*bytecode.CompiledCodeUnit)
	fn := &Function{
		Name:          name,
		Unit:          u,
		Closure:       closure,
		Constructible: true,
		HeadProto:     value.NullValue,
		props:         make(map[string]*PropertyDescriptor),
	}
	fnVal := value.MakeObject(fn)
	proto := s.NewPlainObject()
	_ = s.SetProperty(proto, value.MakeString("constructor"), fnVal, false)
	fn.Prototype = proto
	return fnVal
}

func propKeyString(v value.Value) string {
	if v.IsInt() {
		return fmt.Sprintf("%d", v.AsInt())
	}
	if v.IsSymbol() {
		return "@@symbol:" + v.AsSymbol().Description
	}
	return v.AsString()
}

func arrayIndex(key string) (int, bool) {
	n := 0
	if key == "" {
		return 0, false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (s *Store) toIntStrict(v value.Value) (int, error) {
	if v.IsInt() {
		return int(v.AsInt()), nil
	}
	return 0, vmerr.RangeError("invalid array length")
}

// EnumerableKeys snapshots the enumerable property names of obj and its
// prototype chain plus array indices, de-duplicated and sorted as
// strings, used by FOR_IN_CREATE_CONTEXT.
func (s *Store) EnumerableKeys(obj value.Value) ([]value.Value, error) {
	var keys []string
	if a, ok := asArray(obj); ok {
		for i := range a.Elements {
			if !a.Elements[i].IsArrayHole() {
				keys = append(keys, fmt.Sprintf("%d", i))
			}
		}
	}
	cur := obj
	for cur.IsObject() {
		o, ok := asObject(cur)
		if !ok {
			break
		}
		keys = append(keys, o.ownKeysEnumerable()...)
		cur = o.Prototype
	}
	sort.Strings(keys)
	out := make([]value.Value, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, value.MakeString(k))
	}
	return out, nil
}
