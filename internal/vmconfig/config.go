// Package vmconfig assembles a ready-to-run vm.Machine from functional
// options, wiring the default hostobj collaborators and global
// environment the way cmd/ecmavm and the test harness both need.
package vmconfig

import (
	"ecmavm/internal/hostobj"
	"ecmavm/internal/lexenv"
	"ecmavm/internal/value"
	"ecmavm/internal/vm"
)

// Option configures a Config before Build runs.
type Option func(*Config)

// Config holds every knob the CLI and embedders can set before a Machine
// is constructed.
type Config struct {
	Debug         bool
	StepFrequency uint32
	StepCallback  vm.StepCallback
}

func WithDebug(enabled bool) Option {
	return func(c *Config) { c.Debug = enabled }
}

// WithStepLimit installs a cooperative-cancellation callback that, every
// `frequency` backward branches, throws the value raise returns; a nil
// raise (or one returning UNDEFINED) throws nothing.
func WithStepLimit(frequency uint32, raise func() value.Value) Option {
	return func(c *Config) {
		c.StepFrequency = frequency
		c.StepCallback = func(m *vm.Machine) value.Value {
			if raise != nil {
				return raise()
			}
			return value.UndefinedValue
		}
	}
}

// WithStepCallback installs a caller-supplied cooperative-cancellation
// hook directly, for embedders that want full control over the thrown
// value and firing frequency.
func WithStepCallback(frequency uint32, cb vm.StepCallback) Option {
	return func(c *Config) {
		c.StepFrequency = frequency
		c.StepCallback = cb
	}
}

// Build constructs a Machine with the default hostobj object store, the
// global environment wired as an object-bound environment over a fresh
// global object, and the options applied.
func Build(opts ...Option) *vm.Machine {
	cfg := &Config{}
	for _, o := range opts {
		o(cfg)
	}

	store := hostobj.NewStore()
	globalObj := store.NewPlainObject()
	store.GlobalThis = globalObj
	globalBinding := &hostobj.GlobalObjectBinding{Store: store, Obj: globalObj}
	globalEnv := lexenv.NewObjectBound(nil, globalBinding)

	collab := vm.Collaborators{
		Objects:   store,
		Iterators: store,
		Values:    store,
		Errors:    store,
	}

	m := vm.New(collab, globalEnv)
	store.Runner = m
	m.Debug = cfg.Debug
	m.StepFrequency = cfg.StepFrequency
	m.StepCallback = cfg.StepCallback
	return m
}
