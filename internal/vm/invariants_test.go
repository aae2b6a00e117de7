package vm

import (
	"testing"

	"ecmavm/internal/asm"
	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/hostobj"
	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
)

// newTestMachine builds a Machine the same way vmconfig.Build does,
// without importing it - vmconfig imports this package, so a white-box
// test here can't import vmconfig back without a cycle.
func newTestMachine() *Machine {
	store := hostobj.NewStore()
	globalObj := store.NewPlainObject()
	store.GlobalThis = globalObj
	globalBinding := &hostobj.GlobalObjectBinding{Store: store, Obj: globalObj}
	globalEnv := lexenv.NewObjectBound(nil, globalBinding)
	m := New(Collaborators{Objects: store, Iterators: store, Values: store, Errors: store}, globalEnv)
	store.Runner = m
	return m
}

// TestNormalReturnLeavesContextsEmptyAndStackBalanced covers invariant 1:
// on normal return, context_depth == 0 and stack_top == register_base +
// register_end. A try/finally that completes normally (no throw) still
// has to fully unwind its context before the frame's own return runs.
func TestNormalReturnLeavesContextsEmptyAndStackBalanced(t *testing.T) {
	b := asm.New("script")
	b.Registers(0, 0)

	catchSite, finallySite, opcodePos := b.TryFinally()
	b.Lit(bytecode.OpPush, 1)
	b.Op(bytecode.OpPop)
	b.Patch(catchSite) // never reached - try body never throws

	finallyStart := b.Label()
	b.PatchAt(finallySite, opcodePos, finallyStart)
	finallyOpSite := b.Branch(bytecode.OpFinally)
	b.Lit(bytecode.OpPush, "done")
	b.Op(bytecode.OpPop)
	b.Branch(bytecode.OpContextEnd)

	b.Patch(finallyOpSite)
	b.Lit(bytecode.OpPush, 9)
	b.Op(bytecode.OpReturn)

	unit := b.Unit()
	m := newTestMachine()
	f := frame.New(unit, nil)
	f.InitExec(nil, nil)
	f.LexEnv = lexenv.NewDeclarative(m.Global, false)
	f.This = value.UndefinedValue

	ret, err := m.execute(f)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !ret.IsInt() || ret.AsInt() != 9 {
		t.Fatalf("got %#v, want INT 9", ret)
	}
	if f.ContextDepth != 0 {
		t.Fatalf("context_depth = %d, want 0", f.ContextDepth)
	}
	if want := f.RegisterBase + unit.RegisterEnd; f.StackTop != want {
		t.Fatalf("stack_top = %d, want %d", f.StackTop, want)
	}
}

// TestForInSnapshotExcludesLaterAdditionsIncludesLaterDeletions covers
// invariant 5 by driving the real FOR_IN opcode handlers directly:
// FOR_IN_CREATE_CONTEXT snapshots enumerable keys up front, so a key
// deleted afterward is skipped by HAS_NEXT and a key added afterward is
// never visited, even though both mutations land on the same object the
// snapshot was taken from.
func TestForInSnapshotExcludesLaterAdditionsIncludesLaterDeletions(t *testing.T) {
	m := newTestMachine()
	obj := m.Objects.NewPlainObject()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Objects.SetProperty(obj, value.MakeString(name), value.MakeInt(1), false); err != nil {
			t.Fatalf("seeding %q: %v", name, err)
		}
	}

	unit := asm.New("script").Registers(0, 0).Unit()
	f := frame.New(unit, nil)
	f.InitExec(nil, nil)
	f.LexEnv = lexenv.NewDeclarative(m.Global, false)

	f.PushValue(obj)
	if _, _, err := m.execIteration(f, bytecode.OpForInCreateContext, 0, 0); err != nil {
		t.Fatalf("FOR_IN_CREATE_CONTEXT: %v", err)
	}

	if ok, err := m.Objects.DeleteProperty(obj, value.MakeString("a")); err != nil || !ok {
		t.Fatalf("deleting a: ok=%v err=%v", ok, err)
	}
	if err := m.Objects.SetProperty(obj, value.MakeString("d"), value.MakeInt(4), false); err != nil {
		t.Fatalf("adding d: %v", err)
	}

	var visited []string
	for i := 0; i < 10; i++ {
		hasNext, _, err := m.execIteration(f, bytecode.OpForInHasNext, 0, 0)
		if err != nil {
			t.Fatalf("FOR_IN_HAS_NEXT: %v", err)
		}
		if !hasNext.AsBool() {
			break
		}
		name, _, err := m.execIteration(f, bytecode.OpForInGetNext, 0, 0)
		if err != nil {
			t.Fatalf("FOR_IN_GET_NEXT: %v", err)
		}
		visited = append(visited, name.AsString())
	}

	if len(visited) != 2 || visited[0] != "b" || visited[1] != "c" {
		t.Fatalf("visited = %v, want [b c] (a skipped as deleted, d never visited as added after snapshot)", visited)
	}
}
