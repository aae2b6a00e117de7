package lexenv_test

import (
	"testing"

	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
)

func TestResolveWalksOuterChain(t *testing.T) {
	root := lexenv.NewDeclarative(nil, false)
	root.CreateBinding("x", true, true, false)
	root.InitBinding("x", value.MakeInt(1))

	inner := lexenv.NewDeclarative(root, true)
	inner.CreateBinding("y", true, true, false)

	env, ok := lexenv.Resolve(inner, "x")
	if !ok || env != root {
		t.Fatalf("Resolve(x) = (%v, %v), want (root, true)", env, ok)
	}
	if _, ok := lexenv.Resolve(inner, "z"); ok {
		t.Fatalf("Resolve(z) found a binding that was never created")
	}
}

func TestConstBindingRejectsReassignment(t *testing.T) {
	env := lexenv.NewDeclarative(nil, false)
	env.CreateBinding("c", false, true, true)
	env.InitBinding("c", value.MakeInt(1))

	if err := env.SetMutableBinding("c", value.MakeInt(2)); err == nil {
		t.Fatalf("expected SetMutableBinding to reject a non-writable const binding")
	}
	v, ok := env.GetMutableBinding("c")
	if !ok || !v.IsInt() || v.AsInt() != 1 {
		t.Fatalf("binding value changed despite rejected assignment: %#v", v)
	}
}

func TestNearestNonBlockSkipsBlockScopes(t *testing.T) {
	fn := lexenv.NewDeclarative(nil, false)
	block := lexenv.NewDeclarative(fn, true)
	nested := lexenv.NewDeclarative(block, true)

	if got := lexenv.NearestNonBlock(nested); got != fn {
		t.Fatalf("NearestNonBlock skipped past the function scope: got %v, want %v", got, fn)
	}
}

func TestCloneCopiesBindingsWhenRequested(t *testing.T) {
	env := lexenv.NewDeclarative(nil, true)
	env.CreateBinding("i", true, true, false)
	env.InitBinding("i", value.MakeInt(0))

	clone := env.Clone(true)
	clone.SetMutableBinding("i", value.MakeInt(9))

	orig, _ := env.GetMutableBinding("i")
	copied, _ := clone.GetMutableBinding("i")
	if !orig.IsInt() || orig.AsInt() != 0 {
		t.Fatalf("original binding mutated by clone: %#v", orig)
	}
	if !copied.IsInt() || copied.AsInt() != 9 {
		t.Fatalf("clone binding = %#v, want 9", copied)
	}
}
