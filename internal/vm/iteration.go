package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/collection"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
	"ecmavm/internal/vmerr"
)

func requireCoercibleErr() error {
	return vmerr.TypeError("cannot destructure null or undefined")
}

// execIteration implements FOR_IN_* and FOR_OF_*. FOR_IN snapshots
// enumerable property names up front so mutation during the loop body
// can't change what's visited (names no longer present when resumed are
// skipped by HasNext); FOR_OF drives the iterator protocol and marks its
// context CloseIterator so an abort during unwind calls iterator_close.
func (m *Machine) execIteration(f *frame.Frame, op bytecode.OpCode, start, offset int) (value.Value, unwindResult, error) {
	target := start + offset

	switch op {
	case bytecode.OpForInCreateContext:
		obj := f.PopValue()
		keys, err := m.Iterators.EnumerableKeys(obj)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		f.PushContext(frame.Context{
			Kind:       frame.KindForIn,
			Collection: collection.FromSlice(keys).Slice(),
			Iterated:   obj,
			Target:     target,
		})
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpForInHasNext:
		ctx := f.TopContext()
		for ctx.Cursor < len(ctx.Collection) {
			name := ctx.Collection[ctx.Cursor]
			has, _ := m.Objects.HasProperty(ctx.Iterated, name)
			if has {
				return value.TrueValue, unwindResult{}, nil
			}
			ctx.Cursor++
		}
		return value.FalseValue, unwindResult{}, nil

	case bytecode.OpForInGetNext:
		ctx := f.TopContext()
		v := ctx.Collection[ctx.Cursor]
		ctx.Cursor++
		return v, unwindResult{}, nil

	case bytecode.OpForOfCreateContext:
		obj := f.PopValue()
		iter, err := m.Iterators.GetIterator(obj)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		f.PushContext(frame.Context{
			Kind:          frame.KindForOf,
			Iterator:      iter,
			CloseIterator: true,
			Target:        target,
		})
		return value.Value{}, unwindResult{}, nil

	case bytecode.OpForOfHasNext:
		ctx := f.TopContext()
		v, done, err := m.Iterators.IteratorStep(ctx.Iterator)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		ctx.LastStep = v
		return value.MakeBool(!done), unwindResult{}, nil

	default: // OpForOfGetNext
		ctx := f.TopContext()
		return ctx.LastStep, unwindResult{}, nil
	}
}

// execIteratorDestructure implements GET_ITERATOR, ITERATOR_STEP[_1..3],
// ITERATOR_CLOSE, DEFAULT_INITIALIZER, REST_INITIALIZER,
// INITIALIZER_PUSH_PROP, REQUIRE_OBJECT_COERCIBLE.
func (m *Machine) execIteratorDestructure(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	switch op {
	case bytecode.OpGetIterator:
		v := f.PopValue()
		iter, err := m.Iterators.GetIterator(v)
		return iter, unwindResult{}, err

	case bytecode.OpIteratorStep, bytecode.OpIteratorStep1, bytecode.OpIteratorStep2, bytecode.OpIteratorStep3:
		iter := f.PeekValue(0)
		v, done, err := m.Iterators.IteratorStep(iter)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		if done {
			return value.UndefinedValue, unwindResult{}, nil
		}
		return v, unwindResult{}, nil

	case bytecode.OpIteratorClose:
		iter := f.PopValue()
		return value.Value{}, unwindResult{}, m.Iterators.IteratorClose(iter)

	case bytecode.OpDefaultInitializer:
		v := f.PeekValue(0)
		if v.IsUndefined() {
			return f.PopValue(), unwindResult{}, nil
		}
		return v, unwindResult{}, nil

	case bytecode.OpRestInitializer:
		return m.Objects.NewFastArray(nil), unwindResult{}, nil

	case bytecode.OpInitializerPushProp:
		return f.PeekValue(0), unwindResult{}, nil

	default: // OpRequireObjectCoercible
		v := f.PeekValue(0)
		if v.IsNullOrUndefined() {
			return value.Value{}, unwindResult{}, requireCoercibleErr()
		}
		return value.Value{}, unwindResult{}, nil
	}
}
