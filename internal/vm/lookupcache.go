package vm

import "ecmavm/internal/value"

// lookupCache is GET_VALUE's inline cache: a direct-mapped memo of
// (object, property-name) -> resolved value, invalidated wholesale on any
// put or delete. A real per-call-site polymorphic cache would key on
// hidden shape rather than object identity; object storage here has no
// shape concept, so one shared cache with a generation counter is the
// honest equivalent - still skips the prototype-chain walk on a hit.
type lookupCache struct {
	gen     uint64
	entries map[lookupKey]cachedLookup
}

type lookupKey struct {
	obj  value.Value
	name value.Value
}

type cachedLookup struct {
	gen uint64
	v   value.Value
}

const lookupCacheLimit = 4096

func newLookupCache() *lookupCache {
	return &lookupCache{entries: make(map[lookupKey]cachedLookup)}
}

func (c *lookupCache) get(obj, name value.Value) (value.Value, bool) {
	e, ok := c.entries[lookupKey{obj, name}]
	if !ok || e.gen != c.gen {
		return value.Value{}, false
	}
	return e.v, true
}

func (c *lookupCache) put(obj, name, v value.Value) {
	if len(c.entries) >= lookupCacheLimit {
		c.entries = make(map[lookupKey]cachedLookup)
	}
	c.entries[lookupKey{obj, name}] = cachedLookup{gen: c.gen, v: v}
}

func (c *lookupCache) invalidate() {
	c.gen++
}

// cachedGetProperty is GetProperty through the lookup cache; only object
// bases (including boxed primitives) participate, and fast-array index
// reads are served before reaching here (see GetValue).
func (m *Machine) cachedGetProperty(obj, name value.Value) (value.Value, error) {
	if v, ok := m.cache.get(obj, name); ok {
		return v, nil
	}
	v, err := m.Objects.GetProperty(obj, name)
	if err != nil {
		return value.Value{}, err
	}
	m.cache.put(obj, name, v)
	return v, nil
}

// setProperty and deleteProperty route every write through the cache so
// it can invalidate; property.go and dispatch.go call these instead of
// Objects.SetProperty/DeleteProperty directly.
func (m *Machine) setProperty(obj, name, v value.Value, strict bool) error {
	m.cache.invalidate()
	return m.Objects.SetProperty(obj, name, v, strict)
}

func (m *Machine) deleteProperty(obj, name value.Value) (bool, error) {
	m.cache.invalidate()
	return m.Objects.DeleteProperty(obj, name)
}
