// Package lifecycle implements the component container: a typed
// dependency graph with topological init/shutdown and singleton-vs-keyed
// instantiation. Configuration-file-driven wiring is out of scope, so this
// stays a small stdlib graph walker rather than reaching for a DI
// framework that would reintroduce that concern.
package lifecycle

import (
	"errors"
	"fmt"
)

// State is a component instance's position in
// UNINITIALIZED -> INITIALIZED -> {ACTIVE | STANDBY} -> STOPPED.
type State int

const (
	Uninitialized State = iota
	Initialized
	Active
	Standby
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Initialized:
		return "INITIALIZED"
	case Active:
		return "ACTIVE"
	case Standby:
		return "STANDBY"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrCycle reports a dependency cycle detected while resolving a
	// component graph.
	ErrCycle = errors.New("lifecycle: dependency cycle")
	// ErrUnknownComponent reports a dependency or lookup name with no
	// registered Definition.
	ErrUnknownComponent = errors.New("lifecycle: unknown component")
	// ErrIllegalTransition reports a state-transition call whose
	// precondition the current State does not satisfy.
	ErrIllegalTransition = errors.New("lifecycle: illegal transition")
)

// Activator is implemented by components that do work on the transition
// to Active (from Initialized or Standby).
type Activator interface {
	BecomeActive() error
}

// Standbyer is implemented by components that do work on the
// Active -> Standby transition.
type Standbyer interface {
	BecomeStandby() error
}

// Stopper is implemented by components with teardown work to run on
// shutdown.
type Stopper interface {
	Stop() error
}

// Factory builds one component instance. Resolve calls it only after every
// entry in Dependencies has already been resolved for the same key, so
// Factory can call Container.Resolve for its own dependencies and expect
// them to be cached, not rebuilt.
type Factory func(c *Container, key string) (any, error)

// Definition declares one component type: its build function, its
// dependency names, and whether it is a process-wide singleton
// (instantiated at most once regardless of lookup key).
type Definition struct {
	Name         string
	Factory      Factory
	Dependencies []string
	Singleton    bool
}

type instanceKey struct {
	name string
	key  string
}

type instance struct {
	value any
	state State
}

// Container holds component Definitions and the instances resolved from
// them.
type Container struct {
	defs      map[string]Definition
	instances map[instanceKey]*instance
	initOrder []instanceKey
	resolving map[instanceKey]bool
}

// NewContainer returns an empty Container.
func NewContainer() *Container {
	return &Container{
		defs:      make(map[string]Definition),
		instances: make(map[instanceKey]*instance),
		resolving: make(map[instanceKey]bool),
	}
}

// Register adds a component Definition. Registering the same name twice
// overwrites the prior Definition; it does not affect already-resolved
// instances.
func (c *Container) Register(def Definition) {
	c.defs[def.Name] = def
}

func (c *Container) effectiveKey(def Definition, key string) instanceKey {
	if def.Singleton {
		return instanceKey{name: def.Name, key: ""}
	}
	return instanceKey{name: def.Name, key: key}
}

// Resolve returns the instance of component name under key, building it
// (and, recursively, its unresolved dependencies) if this is the first
// request. Singleton components ignore key: every call returns the same
// instance. A Factory error aborts the whole in-progress graph and tears
// down every component this call newly initialized, in reverse init
// order, before returning the error.
func (c *Container) Resolve(name, key string) (any, error) {
	before := len(c.initOrder)
	v, err := c.resolve(name, key)
	if err != nil {
		c.unwind(before)
		return nil, err
	}
	return v, nil
}

func (c *Container) resolve(name, key string) (any, error) {
	def, ok := c.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	ik := c.effectiveKey(def, key)

	if inst, ok := c.instances[ik]; ok {
		return inst.value, nil
	}
	if c.resolving[ik] {
		return nil, fmt.Errorf("%w: %s", ErrCycle, name)
	}
	c.resolving[ik] = true
	defer delete(c.resolving, ik)

	for _, dep := range def.Dependencies {
		if _, err := c.resolve(dep, key); err != nil {
			return nil, err
		}
	}

	v, err := def.Factory(c, key)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: init %s: %w", name, err)
	}
	c.instances[ik] = &instance{value: v, state: Initialized}
	c.initOrder = append(c.initOrder, ik)
	return v, nil
}

// unwind tears down every instance created since index from, in reverse
// order, removing them from the container so a later Resolve retries
// cleanly.
func (c *Container) unwind(from int) {
	for i := len(c.initOrder) - 1; i >= from; i-- {
		ik := c.initOrder[i]
		inst := c.instances[ik]
		if s, ok := inst.value.(Stopper); ok {
			_ = s.Stop()
		}
		delete(c.instances, ik)
	}
	c.initOrder = c.initOrder[:from]
}

// Activate transitions the instance at (name, key) from INITIALIZED or
// STANDBY to ACTIVE, calling BecomeActive if the instance implements
// Activator.
func (c *Container) Activate(name, key string) error {
	return c.transition(name, key, func(s State) bool { return s == Initialized || s == Standby }, Active, func(v any) error {
		if a, ok := v.(Activator); ok {
			return a.BecomeActive()
		}
		return nil
	})
}

// Standby transitions the instance at (name, key) from ACTIVE to STANDBY,
// calling BecomeStandby if the instance implements Standbyer.
func (c *Container) Standby(name, key string) error {
	return c.transition(name, key, func(s State) bool { return s == Active }, Standby, func(v any) error {
		if sb, ok := v.(Standbyer); ok {
			return sb.BecomeStandby()
		}
		return nil
	})
}

func (c *Container) transition(name, key string, precondition func(State) bool, to State, effect func(any) error) error {
	def, ok := c.defs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	ik := c.effectiveKey(def, key)
	inst, ok := c.instances[ik]
	if !ok {
		return fmt.Errorf("%w: %s not resolved", ErrUnknownComponent, name)
	}
	if !precondition(inst.state) {
		return fmt.Errorf("%w: %s in state %s", ErrIllegalTransition, name, inst.state)
	}
	if err := effect(inst.value); err != nil {
		return err
	}
	inst.state = to
	return nil
}

// Shutdown stops every resolved instance in reverse initialization order,
// calling Stop on those that implement Stopper. It collects and returns
// every Stop error rather than aborting at the first one, since shutdown
// must make a best effort across the whole graph.
func (c *Container) Shutdown() error {
	var errs []error
	for i := len(c.initOrder) - 1; i >= 0; i-- {
		ik := c.initOrder[i]
		inst := c.instances[ik]
		if inst.state == Stopped {
			continue
		}
		if s, ok := inst.value.(Stopper); ok {
			if err := s.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("lifecycle: stop %s: %w", ik.name, err))
			}
		}
		inst.state = Stopped
	}
	return errors.Join(errs...)
}

// State returns the current State of the instance at (name, key), or
// Uninitialized if it has not been resolved.
func (c *Container) State(name, key string) State {
	def, ok := c.defs[name]
	if !ok {
		return Uninitialized
	}
	ik := c.effectiveKey(def, key)
	inst, ok := c.instances[ik]
	if !ok {
		return Uninitialized
	}
	return inst.state
}
