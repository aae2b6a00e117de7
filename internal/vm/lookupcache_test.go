package vm

import (
	"testing"

	"ecmavm/internal/value"
)

func TestLookupCacheHitAndInvalidate(t *testing.T) {
	c := newLookupCache()
	obj := value.MakeObject(nil)
	name := value.MakeString("x")

	if _, ok := c.get(obj, name); ok {
		t.Fatalf("expected a miss on an empty cache")
	}

	c.put(obj, name, value.MakeInt(1))
	v, ok := c.get(obj, name)
	if !ok || !v.IsInt() || v.AsInt() != 1 {
		t.Fatalf("got (%#v, %v), want (1, true)", v, ok)
	}

	c.invalidate()
	if _, ok := c.get(obj, name); ok {
		t.Fatalf("expected a miss after invalidate")
	}
}

func TestLookupCacheEvictsOnOverflow(t *testing.T) {
	c := newLookupCache()
	for i := 0; i < lookupCacheLimit+1; i++ {
		obj := value.MakeObject(nil)
		c.put(obj, value.MakeString("k"), value.MakeInt(int32(i)))
	}
	if len(c.entries) > lookupCacheLimit {
		t.Fatalf("entries = %d, want <= %d", len(c.entries), lookupCacheLimit)
	}
}
