package hostobj

import "ecmavm/internal/value"

// Array is the fast-array object subtype: a dense value.Value slice with
// array-hole entries for elisions and out-of-range writes.
type Array struct {
	Elements []value.Value
}

func (a *Array) ObjectKind() string { return "Array" }
