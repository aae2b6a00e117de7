package hostobj

import "ecmavm/internal/value"

// Proxy implements the get/set trap subset of the Proxy exotic object:
// property access is redirected through handler.get/handler.set when
// present, falling back to an ordinary get/set on the target otherwise.
type Proxy struct {
	Target  value.Value
	Handler value.Value
}

func (p *Proxy) ObjectKind() string { return "Proxy" }

func NewProxy(target, handler value.Value) value.Value {
	return value.MakeObject(&Proxy{Target: target, Handler: handler})
}

func objAsProxy(v value.Value) (*Proxy, bool) {
	if !v.IsObject() {
		return nil, false
	}
	p, ok := v.AsObject().(*Proxy)
	return p, ok
}

func (p *Proxy) get(s *Store, key string) (value.Value, error) {
	trap, err := s.GetProperty(p.Handler, value.MakeString("get"))
	if err == nil && s.IsCallable(trap) {
		return s.Call(trap, p.Handler, []value.Value{p.Target, value.MakeString(key)})
	}
	return s.GetProperty(p.Target, value.MakeString(key))
}

func (p *Proxy) set(s *Store, key string, v value.Value) error {
	trap, err := s.GetProperty(p.Handler, value.MakeString("set"))
	if err == nil && s.IsCallable(trap) {
		_, err := s.Call(trap, p.Handler, []value.Value{p.Target, value.MakeString(key), v})
		return err
	}
	return s.SetProperty(p.Target, value.MakeString(key), v, false)
}
