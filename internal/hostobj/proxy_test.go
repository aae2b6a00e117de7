package hostobj

import (
	"testing"

	"ecmavm/internal/value"
)

func TestProxyGetSetTraps(t *testing.T) {
	s := NewStore()
	target := s.NewPlainObject()

	var trapCalls []string
	getTrap := NewNativeFunction("get", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		trapCalls = append(trapCalls, "get")
		return value.MakeInt(1), nil
	})
	setTrap := NewNativeFunction("set", 3, func(this value.Value, args []value.Value) (value.Value, error) {
		trapCalls = append(trapCalls, "set")
		return args[2], nil
	})

	handler := s.NewPlainObject()
	if err := s.SetProperty(handler, value.MakeString("get"), getTrap, true); err != nil {
		t.Fatalf("SetProperty(get) failed: %v", err)
	}
	if err := s.SetProperty(handler, value.MakeString("set"), setTrap, true); err != nil {
		t.Fatalf("SetProperty(set) failed: %v", err)
	}

	p := NewProxy(target, handler)
	proxy, ok := objAsProxy(p)
	if !ok {
		t.Fatalf("NewProxy did not produce a *Proxy object")
	}

	got, err := proxy.get(s, "value")
	if err != nil {
		t.Fatalf("proxy.get failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 1 {
		t.Fatalf("proxy.get = %#v, want 1", got)
	}

	if err := proxy.set(s, "value", value.MakeInt(55)); err != nil {
		t.Fatalf("proxy.set failed: %v", err)
	}

	got, err = proxy.get(s, "value")
	if err != nil {
		t.Fatalf("proxy.get (2nd read) failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 1 {
		t.Fatalf("proxy.get after set = %#v, want 1 (the get trap always returns 1)", got)
	}

	want := []string{"get", "set", "get"}
	if len(trapCalls) != len(want) {
		t.Fatalf("trapCalls = %v, want %v", trapCalls, want)
	}
	for i := range want {
		if trapCalls[i] != want[i] {
			t.Fatalf("trapCalls[%d] = %s, want %s", i, trapCalls[i], want[i])
		}
	}
}

func TestProxyFallsThroughWithoutTraps(t *testing.T) {
	s := NewStore()
	target := s.NewPlainObject()
	handler := s.NewPlainObject()
	p := NewProxy(target, handler)
	proxy, _ := objAsProxy(p)

	if err := proxy.set(s, "a", value.MakeInt(7)); err != nil {
		t.Fatalf("proxy.set (no trap) failed: %v", err)
	}
	got, err := proxy.get(s, "a")
	if err != nil {
		t.Fatalf("proxy.get (no trap) failed: %v", err)
	}
	if !got.IsInt() || got.AsInt() != 7 {
		t.Fatalf("proxy.get (no trap) = %#v, want 7 (read straight from target)", got)
	}
}
