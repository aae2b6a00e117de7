package hostobj

import "ecmavm/internal/value"

// arrayIterator is the built-in iterator returned for fast arrays by
// GetIterator; any object exposing a callable "next" method (the
// iterator protocol) is also supported via the generic path.
type arrayIterator struct {
	arr   *Array
	index int
}

func (it *arrayIterator) ObjectKind() string { return "ArrayIterator" }

// GetIterator implements get_iterator: arrays get a built-in index
// cursor, generators are their own iterator, everything else must expose
// Symbol.iterator -> an object with a callable "next".
func (s *Store) GetIterator(v value.Value) (value.Value, error) {
	if a, ok := asArray(v); ok {
		return value.MakeObject(&arrayIterator{arr: a}), nil
	}
	if _, ok := asGenerator(v); ok {
		return v, nil
	}
	symIter, err := s.GetProperty(v, value.MakeString("@@symbol:iterator"))
	if err == nil && s.IsCallable(symIter) {
		return s.Call(symIter, v, nil)
	}
	return value.Value{}, notIterable
}

// IteratorStep implements iterator_step + iterator_value combined: it
// returns (value, done, error).
func (s *Store) IteratorStep(iter value.Value) (value.Value, bool, error) {
	if it, ok := iter.AsObject().(*arrayIterator); ok && iter.IsObject() {
		if it.index >= len(it.arr.Elements) {
			return value.UndefinedValue, true, nil
		}
		v := it.arr.Elements[it.index]
		it.index++
		return v, false, nil
	}
	next, err := s.GetProperty(iter, value.MakeString("next"))
	if err != nil {
		return value.Value{}, true, err
	}
	result, err := s.Call(next, iter, nil)
	if err != nil {
		return value.Value{}, true, err
	}
	done, _ := s.GetProperty(result, value.MakeString("done"))
	v, _ := s.GetProperty(result, value.MakeString("value"))
	return v, s.ToBoolean(done), nil
}

func (s *Store) IteratorClose(iter value.Value) error {
	if _, ok := iter.AsObject().(*arrayIterator); ok && iter.IsObject() {
		return nil
	}
	ret, err := s.GetProperty(iter, value.MakeString("return"))
	if err != nil || !s.IsCallable(ret) {
		return nil
	}
	_, err = s.Call(ret, iter, nil)
	return err
}

var notIterable = &callError{"value is not iterable"}
