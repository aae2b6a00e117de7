package frame_test

import (
	"testing"

	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/value"
)

func newTestUnit(argEnd, regEnd int) *bytecode.CompiledCodeUnit {
	u := bytecode.NewCompiledCodeUnit("test")
	u.ArgumentEnd = argEnd
	u.RegisterEnd = regEnd
	u.StackLimit = regEnd + 16
	return u
}

func TestInitExecFillsMissingArgsWithUndefined(t *testing.T) {
	u := newTestUnit(3, 3)
	f := frame.New(u, nil)
	f.InitExec([]value.Value{value.MakeInt(1)}, nil)

	if f.Stack[0].AsInt() != 1 {
		t.Fatalf("arg 0 = %#v, want 1", f.Stack[0])
	}
	if !f.Stack[1].IsUndefined() || !f.Stack[2].IsUndefined() {
		t.Fatalf("missing args were not filled with undefined: %#v %#v", f.Stack[1], f.Stack[2])
	}
	if f.StackTop != u.RegisterEnd {
		t.Fatalf("StackTop = %d, want %d (register_end)", f.StackTop, u.RegisterEnd)
	}
}

func TestPushPopValueIsBalanced(t *testing.T) {
	u := newTestUnit(0, 2)
	f := frame.New(u, nil)
	f.InitExec(nil, nil)

	base := f.StackTop
	f.PushValue(value.MakeInt(10))
	f.PushValue(value.MakeInt(20))
	if got := f.PopValue(); !got.IsInt() || got.AsInt() != 20 {
		t.Fatalf("PopValue = %#v, want 20", got)
	}
	if got := f.PopValue(); !got.IsInt() || got.AsInt() != 10 {
		t.Fatalf("PopValue = %#v, want 10", got)
	}
	if f.StackTop != base {
		t.Fatalf("StackTop = %d after balanced push/pop, want %d", f.StackTop, base)
	}
}

func TestPushValueGrowsStackPastInitialCapacity(t *testing.T) {
	u := newTestUnit(0, 1)
	f := frame.New(u, nil)
	f.InitExec(nil, nil)

	n := len(f.Stack) + 10
	for i := 0; i < n; i++ {
		f.PushValue(value.MakeInt(int32(i)))
	}
	for i := n - 1; i >= 0; i-- {
		got := f.PopValue()
		if !got.IsInt() || got.AsInt() != int32(i) {
			t.Fatalf("PopValue at i=%d = %#v, want %d", i, got, i)
		}
	}
}

func TestContextStackTracksDepth(t *testing.T) {
	u := newTestUnit(0, 0)
	f := frame.New(u, nil)
	f.InitExec(nil, nil)

	if f.TopContext() != nil {
		t.Fatalf("TopContext on an empty context stack should be nil")
	}

	f.PushContext(frame.Context{Kind: frame.KindTry, Target: 42})
	if f.ContextDepth != 1 {
		t.Fatalf("ContextDepth = %d, want 1", f.ContextDepth)
	}
	top := f.TopContext()
	if top == nil || top.Kind != frame.KindTry || top.Target != 42 {
		t.Fatalf("TopContext = %#v, want KindTry/Target=42", top)
	}

	popped := f.PopContext()
	if popped.Kind != frame.KindTry || popped.Target != 42 {
		t.Fatalf("PopContext = %#v, want KindTry/Target=42", popped)
	}
	if f.ContextDepth != 0 {
		t.Fatalf("ContextDepth = %d after pop, want 0", f.ContextDepth)
	}
}
