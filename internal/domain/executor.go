package domain

import (
	"fmt"

	m "github.com/mouse-blink/scenario/internal/model"
)

// GivenConfig carries the factories extracted from a given scope. Either
// field may be nil; a missing factory yields a nil value for its slot.
type GivenConfig struct {
	InputsFactory  func() (any, error)
	SubjectFactory func(inputs any) (any, error)
}

// WhenConfig carries at most one modifier step and one perform step
// contributed by a when scope.
type WhenConfig struct {
	Modifier func(inputs any) error
	Perform  func(subject any) error
}

// TestBody is one it case's test function, receiving the fresh input value
// and subject instance built for that execution.
type TestBody func(inputs, subject any) error

// RuntimeContext threads the factories and accumulated step chains down the
// given → when → it path. Contexts are append-only and copy-on-extend: a
// child context copies its parent's chains and appends its own steps, so the
// parent is never mutated and sibling scopes never observe each other.
type RuntimeContext struct {
	inputsFactory  func() (any, error)
	subjectFactory func(inputs any) (any, error)
	modifiers      []func(inputs any) error
	performs       []func(subject any) error
}

// ChainDepth returns the lengths of the modifier and perform chains.
func (c *RuntimeContext) ChainDepth() (modifiers, performs int) {
	return len(c.modifiers), len(c.performs)
}

func (c *RuntimeContext) extend(cfg WhenConfig) *RuntimeContext {
	child := &RuntimeContext{
		inputsFactory:  c.inputsFactory,
		subjectFactory: c.subjectFactory,
		modifiers:      make([]func(any) error, len(c.modifiers), len(c.modifiers)+1),
		performs:       make([]func(any) error, len(c.performs), len(c.performs)+1),
	}

	copy(child.modifiers, c.modifiers)
	copy(child.performs, c.performs)

	if cfg.Modifier != nil {
		child.modifiers = append(child.modifiers, cfg.Modifier)
	}

	if cfg.Perform != nil {
		child.performs = append(child.performs, cfg.Perform)
	}

	return child
}

// Executor implements the three-level registration state machine
// GIVEN → WHEN* → IT, delegating grouping and case scheduling to the host
// runner. Registration is synchronous; case bodies run later under the
// runner's own scheduler.
type Executor struct {
	runner Runner
}

// NewExecutor creates an Executor bound to a host runner.
func NewExecutor(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// Given opens a grouping scope with a fresh context holding the supplied
// factories and empty chains, then invokes the callback synchronously to
// register nested scopes.
func (e *Executor) Given(desc string, cfg GivenConfig, callback func(*RuntimeContext), mode m.ExecMode) {
	ctx := &RuntimeContext{
		inputsFactory:  cfg.InputsFactory,
		subjectFactory: cfg.SubjectFactory,
	}

	e.runner.Group(desc, mode, func() {
		callback(ctx)
	})
}

// When opens a nested grouping scope whose context extends the parent's
// chains with the scope's optional modifier and perform steps.
func (e *Executor) When(desc string, cfg WhenConfig, callback func(*RuntimeContext), parent *RuntimeContext, mode m.ExecMode) {
	if parent == nil {
		parent = &RuntimeContext{}
	}

	child := parent.extend(cfg)

	e.runner.Group(desc, mode, func() {
		callback(child)
	})
}

// It registers one executable case. Each execution independently builds a
// fresh input value, runs the modifier chain outermost-first, creates a fresh
// subject, awaits the perform chain outermost-first, then runs the test body.
// No case ever observes another case's input value or subject instance.
func (e *Executor) It(desc string, body TestBody, ctx *RuntimeContext, mode m.ExecMode) {
	if ctx == nil {
		ctx = &RuntimeContext{}
	}

	e.runner.Case(desc, mode, func() error {
		return runCase(ctx, body)
	})
}

func runCase(ctx *RuntimeContext, body TestBody) error {
	var inputs any

	if ctx.inputsFactory != nil {
		var err error
		if inputs, err = ctx.inputsFactory(); err != nil {
			return fmt.Errorf("inputs factory: %w", err)
		}
	}

	for i, modifier := range ctx.modifiers {
		if err := modifier(inputs); err != nil {
			return fmt.Errorf("modifier %d: %w", i+1, err)
		}
	}

	var subject any

	if ctx.subjectFactory != nil {
		var err error
		if subject, err = ctx.subjectFactory(inputs); err != nil {
			return fmt.Errorf("subject factory: %w", err)
		}
	}

	for i, perform := range ctx.performs {
		if err := perform(subject); err != nil {
			return fmt.Errorf("perform %d: %w", i+1, err)
		}
	}

	return body(inputs, subject)
}
