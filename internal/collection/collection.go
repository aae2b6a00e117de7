// Package collection implements the ordered value buffer used for
// spread-call argument materialization and for-in property-name
// snapshots.
package collection

import "ecmavm/internal/value"

// Collection is an ordered buffer of values with an item count.
type Collection struct {
	items []value.Value
}

func New() *Collection { return &Collection{} }

func FromSlice(items []value.Value) *Collection {
	return &Collection{items: append([]value.Value(nil), items...)}
}

func (c *Collection) Append(v value.Value) { c.items = append(c.items, v) }

func (c *Collection) Len() int { return len(c.items) }

func (c *Collection) At(i int) value.Value { return c.items[i] }

func (c *Collection) Slice() []value.Value { return c.items }

// Destroy releases the backing buffer; Go's GC reclaims it regardless,
// this exists so call sites that free a collection after a spread
// operation read the same as the spec's lifecycle.
func (c *Collection) Destroy() { c.items = nil }
