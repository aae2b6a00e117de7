package hostobj

import "ecmavm/internal/value"

// NewError implements ErrorOps.NewError: builds a plain error-shaped
// object carrying name/message own properties, mirroring what
// `new TypeError(...)` produces in a full runtime. It is a real *Object
// (not a distinct wrapper type) so GetProperty/SetProperty and the
// prototype chain treat it like any other object.
func (s *Store) NewError(kind, message string) value.Value {
	o := NewObject()
	o.ClassName = kind
	o.defineOwn("name", &PropertyDescriptor{Value: value.MakeString(kind), Writable: true, Configurable: true})
	o.defineOwn("message", &PropertyDescriptor{Value: value.MakeString(message), Writable: true, Configurable: true})
	return value.MakeObject(o)
}

// AsNativeMessage recovers the kind/message pair NewError stashed as
// "name"/"message" own properties, so a caller (ErrorOps users such as
// the vm tests) can read an uncaught exception's kind without re-running
// property lookup through the full VM.
func (s *Store) AsNativeMessage(v value.Value) (string, string, bool) {
	if !v.IsObject() {
		return "", "", false
	}
	o, ok := v.AsObject().(*Object)
	if !ok {
		return "", "", false
	}
	nameD, nameOK := o.getOwn("name")
	msgD, msgOK := o.getOwn("message")
	if !nameOK || !msgOK {
		return "", "", false
	}
	return nameD.Value.AsString(), msgD.Value.AsString(), true
}
