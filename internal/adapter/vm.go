package adapter

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/mouse-blink/scenario/internal/domain"
	m "github.com/mouse-blink/scenario/internal/model"
)

// VM hosts one transformed suite in an embedded ECMAScript engine. The
// registration functions generated code destructures from
// globalThis.__scenario are bridged to the domain executor; values produced
// by factories stay engine values end to end, so object identity is
// preserved within one case and never shared across cases.
type VM struct {
	rt   *goja.Runtime
	exec *domain.Executor
	log  *zap.Logger
}

// NewVM creates a fresh VM whose registrations feed the given runner. One VM
// serves exactly one scenario file.
func NewVM(runner domain.Runner, log *zap.Logger) *VM {
	if log == nil {
		log = zap.NewNop()
	}

	v := &VM{
		rt:   goja.New(),
		exec: domain.NewExecutor(runner),
		log:  log,
	}

	v.install()

	return v
}

// RunSuite executes the transformed code, which registers the suite's scopes
// and cases through the runtime bridge. Case bodies run later, when the
// runner's plan executes.
func (v *VM) RunSuite(name string, code []byte) error {
	v.log.Debug("running suite", zap.String("name", name), zap.Int("bytes", len(code)))

	if _, err := v.rt.RunScript(name, string(code)); err != nil {
		return fmt.Errorf("suite %s: %w", name, err2js(err))
	}

	return nil
}

func (v *VM) install() {
	bridge := v.rt.NewObject()

	mustSet := func(name string, value interface{}) {
		if err := bridge.Set(name, value); err != nil {
			panic(err)
		}
	}

	mustSet(domain.RegisterGivenBinding, v.registerGiven)
	mustSet(domain.RegisterWhenBinding, v.registerWhen)
	mustSet(domain.RegisterItBinding, v.registerIt)
	mustSet(domain.ModeSkipBinding, string(m.ModeSkip))
	mustSet(domain.ModeOnlyBinding, string(m.ModeOnly))

	if err := v.rt.GlobalObject().Set("__scenario", bridge); err != nil {
		panic(err)
	}

	v.installExpect()
}

func (v *VM) registerGiven(call goja.FunctionCall) goja.Value {
	desc := call.Argument(0).String()
	cfg := v.givenConfig(call.Argument(1))
	callback := v.registrationCallback(call.Argument(2), domain.RegisterGivenBinding)
	mode := v.execMode(call.Argument(3))

	v.exec.Given(desc, cfg, callback, mode)

	return goja.Undefined()
}

func (v *VM) registerWhen(call goja.FunctionCall) goja.Value {
	desc := call.Argument(0).String()
	cfg := v.whenConfig(call.Argument(1))
	callback := v.registrationCallback(call.Argument(2), domain.RegisterWhenBinding)
	parent := v.contextArg(call.Argument(3), domain.RegisterWhenBinding)
	mode := v.execMode(call.Argument(4))

	v.exec.When(desc, cfg, callback, parent, mode)

	return goja.Undefined()
}

func (v *VM) registerIt(call goja.FunctionCall) goja.Value {
	desc := call.Argument(0).String()

	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(v.rt.NewTypeError("%s: test body must be a function", domain.RegisterItBinding))
	}

	ctx := v.contextArg(call.Argument(2), domain.RegisterItBinding)
	mode := v.execMode(call.Argument(3))

	body := func(inputs, subject any) error {
		res, err := fn(goja.Undefined(), v.toValue(inputs), v.toValue(subject))
		if err != nil {
			return err2js(err)
		}

		return v.await(res)
	}

	v.exec.It(desc, body, ctx, mode)

	return goja.Undefined()
}

// registrationCallback wraps a suite callback. Registration is synchronous;
// a throw during registration aborts the whole suite, so it is rethrown into
// the engine. An async callback turns its throw into a rejected promise
// instead of a Go-level error, so the returned value is inspected too.
func (v *VM) registrationCallback(val goja.Value, where string) func(*domain.RuntimeContext) {
	fn, ok := goja.AssertFunction(val)
	if !ok {
		panic(v.rt.NewTypeError("%s: callback must be a function", where))
	}

	return func(ctx *domain.RuntimeContext) {
		res, err := fn(goja.Undefined(), v.rt.ToValue(ctx))
		if err != nil {
			v.rethrow(err)
		}

		promise, ok := asPromise(res)
		if !ok {
			return
		}

		switch promise.State() {
		case goja.PromiseStateFulfilled:
		case goja.PromiseStateRejected:
			panic(promise.Result())
		default:
			panic(v.rt.NewTypeError(
				"%s: async callback must register synchronously; it did not settle", where))
		}
	}
}

func (v *VM) givenConfig(val goja.Value) domain.GivenConfig {
	var cfg domain.GivenConfig

	obj := v.configObject(val)
	if obj == nil {
		return cfg
	}

	if fn, ok := assertFunctionProp(obj, "inputsFactory"); ok {
		cfg.InputsFactory = func() (any, error) {
			res, err := fn(goja.Undefined())
			if err != nil {
				return nil, err2js(err)
			}

			return res, nil
		}
	}

	if fn, ok := assertFunctionProp(obj, "subjectFactory"); ok {
		cfg.SubjectFactory = func(inputs any) (any, error) {
			res, err := fn(goja.Undefined(), v.toValue(inputs))
			if err != nil {
				return nil, err2js(err)
			}

			return res, nil
		}
	}

	return cfg
}

func (v *VM) whenConfig(val goja.Value) domain.WhenConfig {
	var cfg domain.WhenConfig

	obj := v.configObject(val)
	if obj == nil {
		return cfg
	}

	if fn, ok := assertFunctionProp(obj, "modifier"); ok {
		cfg.Modifier = func(inputs any) error {
			_, err := fn(goja.Undefined(), v.toValue(inputs))

			return err2js(err)
		}
	}

	if fn, ok := assertFunctionProp(obj, "perform"); ok {
		cfg.Perform = func(subject any) error {
			res, err := fn(goja.Undefined(), v.toValue(subject))
			if err != nil {
				return err2js(err)
			}

			return v.await(res)
		}
	}

	return cfg
}

func (v *VM) configObject(val goja.Value) *goja.Object {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}

	return val.ToObject(v.rt)
}

func assertFunctionProp(obj *goja.Object, name string) (goja.Callable, bool) {
	prop := obj.Get(name)
	if prop == nil {
		return nil, false
	}

	return goja.AssertFunction(prop)
}

func (v *VM) contextArg(val goja.Value, where string) *domain.RuntimeContext {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		panic(v.rt.NewTypeError("%s: context argument missing; was this file transformed?", where))
	}

	ctx, ok := val.Export().(*domain.RuntimeContext)
	if !ok {
		panic(v.rt.NewTypeError("%s: invalid context argument", where))
	}

	return ctx
}

func (v *VM) execMode(val goja.Value) m.ExecMode {
	if val == nil || goja.IsUndefined(val) {
		return m.ModeNormal
	}

	switch mode := m.ExecMode(val.String()); mode {
	case m.ModeNormal, m.ModeSkip, m.ModeOnly:
		return mode
	default:
		panic(v.rt.NewTypeError("unknown execution mode %q", val.String()))
	}
}

// await resolves a step's return value. The engine drains its microtask
// queue when the outermost call into it returns, so a promise that is still
// pending here depends on a timer or external event the embedded engine does
// not provide; that fails the case rather than stalling the run.
func (v *VM) await(val goja.Value) error {
	promise, ok := asPromise(val)
	if !ok {
		return nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return nil
	case goja.PromiseStateRejected:
		return errors.New(promise.Result().String())
	default:
		return errors.New("asynchronous step did not settle; timers are not available in the embedded engine")
	}
}

func asPromise(val goja.Value) (*goja.Promise, bool) {
	if val == nil {
		return nil, false
	}

	promise, ok := val.Export().(*goja.Promise)

	return promise, ok
}

func (v *VM) toValue(x any) goja.Value {
	if x == nil {
		return goja.Undefined()
	}

	if val, ok := x.(goja.Value); ok {
		return val
	}

	return v.rt.ToValue(x)
}

// rethrow propagates a callback error back into the engine as a JS throw.
func (v *VM) rethrow(err error) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		panic(ex.Value())
	}

	panic(v.rt.ToValue(err.Error()))
}

// err2js strips the goja stack frame noise from thrown values, keeping the
// thrown message.
func err2js(err error) error {
	if err == nil {
		return nil
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		return errors.New(ex.Value().String())
	}

	return err
}
