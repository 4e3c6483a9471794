// Package domain contains the scenario transform pipeline and the suite
// runtime executor.
package domain

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "github.com/mouse-blink/scenario/internal/model"
)

// Reserved identifiers and generated names shared by the locator, classifier
// and rewriter.
const (
	inputsSlot  = "$inputs"
	subjectSlot = "$subject"
	ctxParam    = "$ctx"

	registerGivenName = "registerGiven"
	registerWhenName  = "registerWhen"
	registerItName    = "registerIt"
	modeSkipName      = "modeSkip"
	modeOnlyName      = "modeOnly"

	// runtimeGlobal is the binding the synthetic line destructures from.
	runtimeGlobal = "globalThis.__scenario"

	// runtimeModuleID is the bundler-facing module carrying the registration
	// functions; importing it marks a file as already transformed.
	runtimeModuleID = "@mouse-blink/scenario/runtime"
	// legacyModuleID is the direct-call API escape hatch: files importing it
	// are never rewritten.
	legacyModuleID = "@mouse-blink/scenario/direct"
)

// Names the generated binding line destructures from the runtime global. The
// VM adapter installs these on globalThis.__scenario.
const (
	RegisterGivenBinding = registerGivenName
	RegisterWhenBinding  = registerWhenName
	RegisterItBinding    = registerItName
	ModeSkipBinding      = modeSkipName
	ModeOnlyBinding      = modeOnlyName
)

func languageFor(lang m.Language) *sitter.Language {
	if lang == m.LangTypeScript {
		return typescript.GetLanguage()
	}

	return javascript.GetLanguage()
}

// parseTree parses src with the grammar for lang. The caller owns the tree
// and must Close it.
func parseTree(lang m.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(lang))

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}

	return tree, nil
}

// firstErrorNode returns the first ERROR node in the tree, if any.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}

	return nil
}

// position converts a node's start point to a 1-based source position.
func position(n *sitter.Node) m.Position {
	point := n.StartPoint()

	return m.Position{Line: int(point.Row) + 1, Column: int(point.Column) + 1}
}

func nodeText(n *sitter.Node, src []byte) string {
	return string(src[n.StartByte():n.EndByte()])
}

// sameNode compares nodes by source span. Wrapper pointers returned by the
// tree-sitter bindings are not stable, so pointer identity cannot be used.
func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
