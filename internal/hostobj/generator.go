package hostobj

import (
	"ecmavm/internal/value"
	"ecmavm/internal/vm"
)

// Generator is the object layer's iterator-result surface over a
// suspended frame: next()/throw()/return() each drive the resumer once
// and wrap its (value, done) pair into {value, done} per the iterator
// result protocol, so a generator is usable anywhere a plain iterator is
// (FOR_OF, spread, destructuring).
type Generator struct {
	resumer vm.GeneratorResumer
}

func (g *Generator) ObjectKind() string { return "Generator" }

// NewGenerator implements ObjectOps.NewGenerator.
func (s *Store) NewGenerator(r vm.GeneratorResumer) value.Value {
	return value.MakeObject(&Generator{resumer: r})
}

func asGenerator(v value.Value) (*Generator, bool) {
	if !v.IsObject() {
		return nil, false
	}
	g, ok := v.AsObject().(*Generator)
	return g, ok
}

func (s *Store) generatorResult(v value.Value, done bool) value.Value {
	res := NewObject()
	res.defineOwn("value", &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	res.defineOwn("done", &PropertyDescriptor{Value: value.MakeBool(done), Writable: true, Enumerable: true, Configurable: true})
	return value.MakeObject(res)
}

func firstArg(args []value.Value) value.Value {
	if len(args) > 0 {
		return args[0]
	}
	return value.UndefinedValue
}

func (g *Generator) getOwnProp(s *Store, key string) (value.Value, bool) {
	switch key {
	case "next":
		return NewNativeFunction("next", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			v, done, err := g.resumer.Resume(firstArg(args))
			if err != nil {
				return value.Value{}, err
			}
			return s.generatorResult(v, done), nil
		}), true
	case "throw":
		return NewNativeFunction("throw", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			v, done, err := g.resumer.Throw(firstArg(args))
			if err != nil {
				return value.Value{}, err
			}
			return s.generatorResult(v, done), nil
		}), true
	case "return":
		return NewNativeFunction("return", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			v, done, err := g.resumer.Return(firstArg(args))
			if err != nil {
				return value.Value{}, err
			}
			return s.generatorResult(v, done), nil
		}), true
	}
	return value.Value{}, false
}
