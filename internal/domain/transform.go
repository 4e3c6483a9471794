package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/mouse-blink/scenario/internal/model"
)

// Transformer runs the Locator → Classifier → Rewriter pipeline over one file
// at a time. It holds no per-file state, so independent files may be
// transformed concurrently by independent calls.
type Transformer struct {
	locator  *Locator
	rewriter *Rewriter
}

// NewTransformer creates a Transformer.
func NewTransformer() *Transformer {
	return &Transformer{locator: NewLocator(), rewriter: NewRewriter()}
}

// TransformFile rewrites the declarative given/when/it syntax in src into
// registration calls. It is a no-op (Changed == false) for files with no
// recognized BDD calls and for files that already bind or import the
// registration functions, including the legacy direct-call module. A fatal
// diagnostic aborts the whole file: no partial output is ever produced.
func (t *Transformer) TransformFile(path m.Path, src []byte, lang m.Language) (m.TransformResult, error) {
	tree, err := parseTree(lang, src)
	if err != nil {
		return m.TransformResult{}, err
	}
	defer tree.Close()

	root := tree.RootNode()

	if errNode := firstErrorNode(root); errNode != nil {
		return m.TransformResult{}, m.NewDiagnostic(path, position(errNode), "syntax error")
	}

	if alreadyBound(root, src) {
		return m.TransformResult{Origin: path, Changed: false, Code: src}, nil
	}

	sites, err := t.locator.Locate(path, root, src)
	if err != nil {
		return m.TransformResult{}, err
	}

	return t.rewriter.Rewrite(path, src, sites)
}

// Sites returns position data for every recognized call site in src, for
// estimation views.
func (t *Transformer) Sites(path m.Path, src []byte, lang m.Language) ([]m.CallSite, error) {
	tree, err := parseTree(lang, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	located, err := t.locator.Locate(path, tree.RootNode(), src)
	if err != nil {
		return nil, err
	}

	sites := make([]m.CallSite, len(located))
	for i, site := range located {
		sites[i] = site.Info
	}

	return sites, nil
}

// alreadyBound reports whether the file already carries the runtime binding
// line, imports the runtime module, or imports the legacy direct-call API.
func alreadyBound(root *sitter.Node, src []byte) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)

		switch stmt.Type() {
		case "import_statement":
			source := stmt.ChildByFieldName("source")
			if source != nil && isRuntimeModuleID(nodeText(source, src)) {
				return true
			}

		case "lexical_declaration", "variable_declaration":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				declarator := stmt.NamedChild(j)
				if declarator.Type() != "variable_declarator" {
					continue
				}

				if value := declarator.ChildByFieldName("value"); value != nil && bindsRuntime(value, src) {
					return true
				}
			}
		}
	}

	return false
}

func bindsRuntime(value *sitter.Node, src []byte) bool {
	if nodeText(value, src) == runtimeGlobal {
		return true
	}

	// const { ... } = require("@mouse-blink/scenario/runtime")
	if value.Type() != "call_expression" {
		return false
	}

	callee := value.ChildByFieldName("function")
	args := value.ChildByFieldName("arguments")

	if callee == nil || args == nil || nodeText(callee, src) != "require" || args.NamedChildCount() == 0 {
		return false
	}

	return isRuntimeModuleID(nodeText(args.NamedChild(0), src))
}

func isRuntimeModuleID(quoted string) bool {
	id := strings.Trim(quoted, "\"'`")

	return id == runtimeModuleID || id == legacyModuleID
}
