// Package lexenv implements the Lexical Environment: declarative scopes
// for functions/blocks and object-bound scopes for `with` and the global
// environment.
package lexenv

import (
	"ecmavm/internal/value"
)

// Binding is one named slot in a declarative environment.
type Binding struct {
	Value        value.Value
	Configurable bool
	Enumerable   bool
	Writable     bool
	Uninitialized bool
}

// ObjectBinding is the minimal surface an object-bound environment needs
// from its wrapped object; implemented by the host object collaborator so
// this package stays independent of object storage.
type ObjectBinding interface {
	GetProperty(name string) (value.Value, bool)
	SetProperty(name string, v value.Value) error
	HasProperty(name string) bool
}

// Kind discriminates a declarative environment from an object-bound one.
type Kind uint8

const (
	KindDeclarative Kind = iota
	KindObjectBound
)

// Environment is a heap-resident object-typed cell, the Object half of
// value.Value for the lexical-environment subtype.
type Environment struct {
	Kind Kind

	// Declarative storage.
	Bindings map[string]*Binding

	// Object-bound storage (with-statement, global environment).
	Object ObjectBinding

	Outer *Environment

	// IsBlock marks a BLOCK-flagged environment, which var hoisting must
	// see through to find the nearest function/global environment.
	IsBlock bool
}

func (e *Environment) ObjectKind() string { return "LexicalEnvironment" }

// NewDeclarative creates a function/block-scope environment chained to
// outer; the root environment's Outer is nil.
func NewDeclarative(outer *Environment, isBlock bool) *Environment {
	return &Environment{
		Kind:     KindDeclarative,
		Bindings: make(map[string]*Binding),
		Outer:    outer,
		IsBlock:  isBlock,
	}
}

// NewObjectBound wraps obj (the global object, or a with-target) as an
// environment record.
func NewObjectBound(outer *Environment, obj ObjectBinding) *Environment {
	return &Environment{
		Kind:   KindObjectBound,
		Object: obj,
		Outer:  outer,
	}
}

// Clone makes a fresh declarative environment with the same outer chain,
// optionally copying the current bindings (used by CLONE_CONTEXT for
// per-iteration loop bindings).
func (e *Environment) Clone(copyBindings bool) *Environment {
	clone := NewDeclarative(e.Outer, e.IsBlock)
	if copyBindings {
		for name, b := range e.Bindings {
			cp := *b
			clone.Bindings[name] = &cp
		}
	}
	return clone
}

// CreateBinding declares name with the given attribute set; used by
// CREATE_BINDING for var (writable+enumerable), let (enumerable+writable), and
// const (enumerable only, left Uninitialized until ASSIGN_LET_CONST).
func (e *Environment) CreateBinding(name string, writable, enumerable, uninitialized bool) {
	e.Bindings[name] = &Binding{
		Value:         value.UninitializedValue,
		Configurable:  false,
		Enumerable:    enumerable,
		Writable:      writable,
		Uninitialized: uninitialized,
	}
	if !uninitialized {
		e.Bindings[name].Value = value.UndefinedValue
	}
}

// GetMutableBinding resolves name in this environment only (no outer
// walk); callers climb Outer themselves so lookup caches can memoize the
// depth.
func (e *Environment) GetMutableBinding(name string) (value.Value, bool) {
	if e.Kind == KindObjectBound {
		return e.Object.GetProperty(name)
	}
	b, ok := e.Bindings[name]
	if !ok {
		return value.Value{}, false
	}
	return b.Value, true
}

func (e *Environment) SetMutableBinding(name string, v value.Value) error {
	if e.Kind == KindObjectBound {
		return e.Object.SetProperty(name, v)
	}
	b, ok := e.Bindings[name]
	if !ok {
		return errNotFound(name)
	}
	if !b.Writable {
		return errNotWritable(name)
	}
	b.Value = v
	b.Uninitialized = false
	return nil
}

// InitBinding gives a let/const/function-parameter binding its first
// value, clearing Uninitialized without a writability check.
func (e *Environment) InitBinding(name string, v value.Value) {
	b, ok := e.Bindings[name]
	if !ok {
		b = &Binding{Writable: true, Enumerable: true}
		e.Bindings[name] = b
	}
	b.Value = v
	b.Uninitialized = false
}

func (e *Environment) HasBinding(name string) bool {
	if e.Kind == KindObjectBound {
		return e.Object.HasProperty(name)
	}
	_, ok := e.Bindings[name]
	return ok
}

// Resolve walks the outer chain starting at e, returning the environment
// that owns name and whether one was found; used by IDENT_REFERENCE and
// TYPEOF_IDENT.
func Resolve(start *Environment, name string) (*Environment, bool) {
	for env := start; env != nil; env = env.Outer {
		if env.HasBinding(name) {
			return env, true
		}
	}
	return nil, false
}

// NearestNonBlock walks outward past BLOCK-flagged declarative
// environments to the nearest function or global environment, used by
// VAR_EVAL to install var declarations at the correct scope regardless of
// how many blocks they're nested inside.
func NearestNonBlock(start *Environment) *Environment {
	env := start
	for env != nil && env.Kind == KindDeclarative && env.IsBlock {
		env = env.Outer
	}
	return env
}

type bindingError struct{ msg string }

func (e *bindingError) Error() string { return e.msg }

func errNotFound(name string) error    { return &bindingError{"binding not found: " + name} }
func errNotWritable(name string) error { return &bindingError{"assignment to constant binding: " + name} }
