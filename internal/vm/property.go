package vm

import (
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

// execProperty implements PROP_GET, PROP_REFERENCE, PROP_DELETE, DELETE.
// PROP_REFERENCE leaves base and property on the stack beneath the
// fetched value so a following PUT_REFERENCE can write back through the
// same reference (e.g. compound assignment, pre/post incr-decr on a
// property).
func (m *Machine) execProperty(f *frame.Frame, op bytecode.OpCode) (value.Value, unwindResult, error) {
	f.Reader.ReadLiteralIndex() // reserved for inline-cache site id; unused here

	switch op {
	case bytecode.OpPropGet:
		property := f.PopValue()
		object := f.PopValue()
		v, err := m.GetValue(object, property)
		return v, unwindResult{}, err

	case bytecode.OpPropReference:
		property := f.PeekValue(0)
		object := f.PeekValue(1)
		v, err := m.GetValue(object, property)
		return v, unwindResult{}, err

	case bytecode.OpPropDelete, bytecode.OpDelete:
		property := f.PopValue()
		object := f.PopValue()
		name, err := m.Values.ToPropertyKey(property)
		if err != nil {
			return value.Value{}, unwindResult{}, err
		}
		ok, err := m.deleteProperty(object, name)
		return value.MakeBool(ok), unwindResult{}, err
	}
	return value.Value{}, unwindResult{}, nil
}
