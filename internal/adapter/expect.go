package adapter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dop251/goja"
)

// installExpect adds a small assertion helper to the VM global scope so test
// bodies can state expectations without an external library:
//
//	expect(actual).toBe(expected)
//	expect(fn).not.toThrow()
//
// A failed expectation throws, which the plan records as a case failure.
func (v *VM) installExpect() {
	expect := func(call goja.FunctionCall) goja.Value {
		return v.matcherObject(call.Argument(0), false)
	}

	if err := v.rt.GlobalObject().Set("expect", expect); err != nil {
		panic(err)
	}
}

func (v *VM) matcherObject(actual goja.Value, negated bool) *goja.Object {
	obj := v.rt.NewObject()

	matchers := map[string]func(call goja.FunctionCall) goja.Value{
		"toBe": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			v.verify(actual.StrictEquals(expected), negated,
				fmt.Sprintf("expected %s to be %s", display(actual), display(expected)),
				fmt.Sprintf("expected %s not to be %s", display(actual), display(expected)))

			return goja.Undefined()
		},
		"toEqual": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			equal := actual.StrictEquals(expected) ||
				reflect.DeepEqual(actual.Export(), expected.Export())
			v.verify(equal, negated,
				fmt.Sprintf("expected %s to equal %s", display(actual), display(expected)),
				fmt.Sprintf("expected %s not to equal %s", display(actual), display(expected)))

			return goja.Undefined()
		},
		"toBeTruthy": func(goja.FunctionCall) goja.Value {
			v.verify(actual.ToBoolean(), negated,
				fmt.Sprintf("expected %s to be truthy", display(actual)),
				fmt.Sprintf("expected %s not to be truthy", display(actual)))

			return goja.Undefined()
		},
		"toBeFalsy": func(goja.FunctionCall) goja.Value {
			v.verify(!actual.ToBoolean(), negated,
				fmt.Sprintf("expected %s to be falsy", display(actual)),
				fmt.Sprintf("expected %s not to be falsy", display(actual)))

			return goja.Undefined()
		},
		"toBeNull": func(goja.FunctionCall) goja.Value {
			v.verify(goja.IsNull(actual), negated,
				fmt.Sprintf("expected %s to be null", display(actual)),
				"expected value not to be null")

			return goja.Undefined()
		},
		"toBeUndefined": func(goja.FunctionCall) goja.Value {
			v.verify(goja.IsUndefined(actual), negated,
				fmt.Sprintf("expected %s to be undefined", display(actual)),
				"expected value not to be undefined")

			return goja.Undefined()
		},
		"toContain": func(call goja.FunctionCall) goja.Value {
			expected := call.Argument(0)
			v.verify(v.contains(actual, expected), negated,
				fmt.Sprintf("expected %s to contain %s", display(actual), display(expected)),
				fmt.Sprintf("expected %s not to contain %s", display(actual), display(expected)))

			return goja.Undefined()
		},
		"toThrow": func(goja.FunctionCall) goja.Value {
			fn, ok := goja.AssertFunction(actual)
			if !ok {
				panic(v.rt.NewTypeError("toThrow expects a function"))
			}

			_, err := fn(goja.Undefined())
			v.verify(err != nil, negated,
				"expected function to throw",
				fmt.Sprintf("expected function not to throw, got: %v", err2js(err)))

			return goja.Undefined()
		},
	}

	mustSet := func(name string, value interface{}) {
		if err := obj.Set(name, value); err != nil {
			panic(err)
		}
	}

	for name, matcher := range matchers {
		mustSet(name, matcher)
	}

	if !negated {
		mustSet("not", v.matcherObject(actual, true))
	}

	return obj
}

func (v *VM) verify(ok, negated bool, failMsg, negatedFailMsg string) {
	if ok != negated {
		return
	}

	msg := failMsg
	if negated {
		msg = negatedFailMsg
	}

	panic(v.rt.ToValue(msg))
}

// contains checks array membership by strict equality, or substring match
// when the actual value is a string.
func (v *VM) contains(actual, expected goja.Value) bool {
	if str, ok := actual.Export().(string); ok {
		return strings.Contains(str, expected.String())
	}

	obj := actual.ToObject(v.rt)

	length := obj.Get("length")
	if length == nil || goja.IsUndefined(length) {
		return false
	}

	for i := int64(0); i < length.ToInteger(); i++ {
		if item := obj.Get(fmt.Sprint(i)); item != nil && item.StrictEquals(expected) {
			return true
		}
	}

	return false
}

func display(val goja.Value) string {
	if val == nil {
		return "undefined"
	}

	return val.String()
}
