package domain

import (
	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/mouse-blink/scenario/internal/model"
)

// callSite is the locator's working record for one recognized call. It keeps
// the syntax-tree handles the classifier and rewriter need; the exported
// m.CallSite carries only the position data that outlives the transform pass.
type callSite struct {
	Info m.CallSite

	Node     *sitter.Node // the call_expression
	Callee   *sitter.Node // identifier or member_expression
	Args     *sitter.Node // the arguments node
	Desc     *sitter.Node // description argument
	Callback *sitter.Node // inline function argument
	Params   *sitter.Node // formal_parameters or bare parameter of Callback
	Body     *sitter.Node // statement_block or expression body of Callback
	Async    bool
}

// Locator finds all recognized given/when/it call sites in a parsed file.
type Locator struct{}

// NewLocator creates a Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Locate walks the tree depth-first and collects recognized call sites in
// document order. It returns a fatal diagnostic on the first unsupported
// callback shape or invalid nesting; no sites are returned in that case.
func (l *Locator) Locate(path m.Path, root *sitter.Node, src []byte) ([]*callSite, error) {
	var sites []*callSite

	var walk func(n *sitter.Node, depth int, inGiven, inIt bool) error
	walk = func(n *sitter.Node, depth int, inGiven, inIt bool) error {
		site, recognized := l.recognize(n, src)

		if recognized {
			kind := site.Info.Kind

			// when/it are only rewritten when lexically reachable from an
			// enclosing given; elsewhere they stay ordinary host primitives
			// and are left completely untouched.
			if kind != m.KindGiven && !inGiven {
				recognized = false
			} else if inIt {
				// IT is terminal: nothing can be registered from inside a
				// running case.
				return m.NewDiagnostic(path, site.Info.Pos,
					"%s() cannot be nested inside an it() case", kind)
			}
		}

		if recognized {
			if err := l.resolveArguments(path, site, src); err != nil {
				return err
			}
		}

		if !recognized {
			for i := 0; i < int(n.ChildCount()); i++ {
				if err := walk(n.Child(i), depth, inGiven, inIt); err != nil {
					return err
				}
			}

			return nil
		}

		site.Info.Depth = depth
		sites = append(sites, site)

		// Walk the arguments, entering the callback with incremented depth:
		// depth counts recognized callbacks only.
		for i := 0; i < int(site.Args.ChildCount()); i++ {
			child := site.Args.Child(i)
			if sameNode(child, site.Callback) {
				err := walk(child, depth+1,
					inGiven || site.Info.Kind == m.KindGiven,
					site.Info.Kind == m.KindIt)
				if err != nil {
					return err
				}

				continue
			}

			if err := walk(child, depth, inGiven, inIt); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(root, 0, false, false); err != nil {
		return nil, err
	}

	return sites, nil
}

// recognize classifies a node as a BDD call site. Aliased callees and every
// other indirection fall into the unrecognized case and are silently ignored.
// Argument shapes are validated later, once the site is known to be in scope.
func (l *Locator) recognize(n *sitter.Node, src []byte) (*callSite, bool) {
	if n.Type() != "call_expression" {
		return nil, false
	}

	callee := n.ChildByFieldName("function")
	if callee == nil {
		return nil, false
	}

	kind, shape := calleeShape(callee, src)
	if shape == m.CalleeUnrecognized {
		return nil, false
	}

	site := &callSite{
		Info: m.CallSite{
			Kind: kind,
			Mode: shape.Mode(),
			Span: m.Span{Start: n.StartByte(), End: n.EndByte()},
			Pos:  position(n),
		},
		Node:   n,
		Callee: callee,
		Args:   n.ChildByFieldName("arguments"),
	}

	return site, true
}

// resolveArguments validates the call shape: a description argument followed
// by an inline anonymous function. Anything else is fatal for the whole file.
func (l *Locator) resolveArguments(path m.Path, site *callSite, src []byte) error {
	badShape := func() error {
		return m.NewDiagnostic(path, site.Info.Pos,
			"%s() requires a description and an inline function callback", site.Info.Kind)
	}

	if site.Args == nil || site.Args.NamedChildCount() < 2 {
		return badShape()
	}

	for i := 0; i < int(site.Args.NamedChildCount()); i++ {
		if site.Args.NamedChild(i).Type() == "spread_element" {
			return badShape()
		}
	}

	site.Desc = site.Args.NamedChild(0)
	callback := site.Args.NamedChild(int(site.Args.NamedChildCount()) - 1)

	switch callback.Type() {
	case "arrow_function", "function", "function_expression":
	default:
		return badShape()
	}

	site.Callback = callback
	site.Body = callback.ChildByFieldName("body")

	if params := callback.ChildByFieldName("parameters"); params != nil {
		site.Params = params
	} else if param := callback.ChildByFieldName("parameter"); param != nil {
		site.Params = param
	}

	for i := 0; i < int(callback.ChildCount()); i++ {
		if callback.Child(i).Type() == "async" {
			site.Async = true
			break
		}
	}

	return nil
}

// calleeShape is the closed tagged variant over callee syntax: a bare
// given/when/it identifier, a skip/only property access on one, or anything
// else.
func calleeShape(callee *sitter.Node, src []byte) (m.CallKind, m.CalleeShape) {
	switch callee.Type() {
	case "identifier":
		if kind, ok := callKind(nodeText(callee, src)); ok {
			return kind, m.CalleePlain
		}

	case "member_expression":
		object := callee.ChildByFieldName("object")
		property := callee.ChildByFieldName("property")

		if object == nil || property == nil || object.Type() != "identifier" {
			break
		}

		kind, ok := callKind(nodeText(object, src))
		if !ok {
			break
		}

		switch nodeText(property, src) {
		case "skip":
			return kind, m.CalleeSkip
		case "only":
			return kind, m.CalleeOnly
		}
	}

	return "", m.CalleeUnrecognized
}

func callKind(name string) (m.CallKind, bool) {
	switch name {
	case "given":
		return m.KindGiven, true
	case "when":
		return m.KindWhen, true
	case "it":
		return m.KindIt, true
	}

	return "", false
}

// isRecognizedCall reports whether n is a call expression with a recognized
// callee, without validating its argument shape.
func isRecognizedCall(n *sitter.Node, src []byte) bool {
	if n.Type() != "call_expression" {
		return false
	}

	callee := n.ChildByFieldName("function")
	if callee == nil {
		return false
	}

	_, shape := calleeShape(callee, src)

	return shape != m.CalleeUnrecognized
}

// callbackOf returns the trailing inline function argument of a recognized
// call, or nil when the callback is not an inline function.
func callbackOf(n *sitter.Node) *sitter.Node {
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}

	last := args.NamedChild(int(args.NamedChildCount()) - 1)
	switch last.Type() {
	case "arrow_function", "function", "function_expression":
		return last
	}

	return nil
}
