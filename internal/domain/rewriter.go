package domain

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/mouse-blink/scenario/internal/model"
)

// Rewriter converts located call sites into text-level edits against the
// original source and applies them in one final pass. Edits are computed
// deepest-first so an outer call's recorded boundaries are never derived from
// already-mutated text; application itself always runs over the pristine
// input.
type Rewriter struct {
	classifier *Classifier
}

// NewRewriter creates a Rewriter.
func NewRewriter() *Rewriter {
	return &Rewriter{classifier: NewClassifier()}
}

// Rewrite produces the transformed text and its position map for the located
// sites. With no sites the input is returned unchanged.
func (r *Rewriter) Rewrite(path m.Path, src []byte, sites []*callSite) (m.TransformResult, error) {
	if len(sites) == 0 {
		return m.TransformResult{Origin: path, Changed: false, Code: src}, nil
	}

	ordered := make([]*callSite, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Info.Depth != ordered[j].Info.Depth {
			return ordered[i].Info.Depth > ordered[j].Info.Depth
		}

		return ordered[i].Info.Span.Start < ordered[j].Info.Span.Start
	})

	var edits []m.Edit

	used := map[string]bool{}

	for _, site := range ordered {
		siteEdits, err := r.editsFor(path, site, src)
		if err != nil {
			return m.TransformResult{}, err
		}

		edits = append(edits, siteEdits...)

		used[registrationName(site.Info.Kind)] = true
		switch site.Info.Mode {
		case m.ModeSkip:
			used[modeSkipName] = true
		case m.ModeOnly:
			used[modeOnlyName] = true
		}
	}

	edits = append(edits, m.Edit{Start: 0, End: 0, Text: bindingLine(used)})

	code, posMap, err := applyEdits(path, src, edits)
	if err != nil {
		return m.TransformResult{}, err
	}

	return m.TransformResult{Origin: path, Changed: true, Code: code, Map: posMap}, nil
}

func (r *Rewriter) editsFor(path m.Path, site *callSite, src []byte) ([]m.Edit, error) {
	edits := []m.Edit{{
		Start: site.Callee.StartByte(),
		End:   site.Callee.EndByte(),
		Text:  registrationName(site.Info.Kind),
	}}

	var config string

	switch site.Info.Kind {
	case m.KindGiven:
		parts, err := r.classifier.ClassifyGiven(path, site, src)
		if err != nil {
			return nil, err
		}

		config = givenConfigLiteral(parts, src)
		edits = append(edits, removalEdits(src, parts.InputsStmt, parts.SubjectStmt)...)

	case m.KindWhen:
		parts := r.classifier.ClassifyWhen(site, src)
		config = whenConfigLiteral(parts, site.Async, src)
		edits = append(edits, removalEdits(src, parts.Modifiers...)...)
		edits = append(edits, removalEdits(src, parts.Performs...)...)
	}

	if config != "" {
		edits = append(edits, m.Edit{
			Start: site.Desc.EndByte(),
			End:   site.Desc.EndByte(),
			Text:  ", " + config,
		})
	}

	if site.Params != nil {
		edits = append(edits, m.Edit{
			Start: site.Params.StartByte(),
			End:   site.Params.EndByte(),
			Text:  signatureFor(site.Info.Kind),
		})
	}

	if tail := trailingArgs(site.Info); tail != "" {
		closeParen := site.Args.EndByte() - 1
		edits = append(edits, m.Edit{Start: closeParen, End: closeParen, Text: tail})
	}

	return edits, nil
}

func registrationName(kind m.CallKind) string {
	switch kind {
	case m.KindGiven:
		return registerGivenName
	case m.KindWhen:
		return registerWhenName
	default:
		return registerItName
	}
}

// signatureFor is the fixed parameter list generated code uses per call kind.
func signatureFor(kind m.CallKind) string {
	if kind == m.KindIt {
		return "(" + inputsSlot + ", " + subjectSlot + ")"
	}

	return "(" + ctxParam + ")"
}

// trailingArgs renders the propagated context argument and, for skip/only,
// the execution-mode argument. The qualified callee form never survives as
// callee text; it is carried purely by this trailing argument.
func trailingArgs(info m.CallSite) string {
	var parts []string

	if info.Kind != m.KindGiven {
		parts = append(parts, ctxParam)
	}

	switch info.Mode {
	case m.ModeSkip:
		parts = append(parts, modeSkipName)
	case m.ModeOnly:
		parts = append(parts, modeOnlyName)
	}

	if len(parts) == 0 {
		return ""
	}

	return ", " + strings.Join(parts, ", ")
}

func givenConfigLiteral(parts givenParts, src []byte) string {
	var fields []string

	if parts.Inputs != nil {
		fields = append(fields, "inputsFactory: () => "+factoryExpr(parts.Inputs, src))
	}

	if parts.Subject != nil {
		fields = append(fields, "subjectFactory: ("+inputsSlot+") => "+factoryExpr(parts.Subject, src))
	}

	return configLiteral(fields)
}

func whenConfigLiteral(parts whenParts, async bool, src []byte) string {
	var fields []string

	if len(parts.Modifiers) > 0 {
		fields = append(fields, "modifier: ("+inputsSlot+") => "+stepBody(parts.Modifiers, src))
	}

	if len(parts.Performs) > 0 {
		prefix := ""
		if async || anyContainsAwait(parts.Performs) {
			prefix = "async "
		}

		fields = append(fields, "perform: "+prefix+"("+subjectSlot+") => "+stepBody(parts.Performs, src))
	}

	return configLiteral(fields)
}

func configLiteral(fields []string) string {
	if len(fields) == 0 {
		return "{}"
	}

	return "{ " + strings.Join(fields, ", ") + " }"
}

// factoryExpr renders an extracted right-hand side as an expression-bodied
// arrow body. Object-literal-shaped expressions are parenthesized so the
// literal is not misparsed as a block.
func factoryExpr(rhs *sitter.Node, src []byte) string {
	text := nodeText(rhs, src)
	if objectLiteralShaped(rhs) {
		return "(" + text + ")"
	}

	return text
}

// objectLiteralShaped matches object literals, optionally wrapped in a
// type-narrowing or type-assertion expression.
func objectLiteralShaped(n *sitter.Node) bool {
	switch n.Type() {
	case "object":
		return true
	case "as_expression", "satisfies_expression", "type_assertion", "non_null_expression":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if objectLiteralShaped(n.NamedChild(i)) {
				return true
			}
		}
	}

	return false
}

// stepBody concatenates extracted statements, in source order, into one
// block-bodied arrow body.
func stepBody(stmts []*sitter.Node, src []byte) string {
	texts := make([]string, len(stmts))
	for i, stmt := range stmts {
		texts[i] = nodeText(stmt, src)
	}

	return "{ " + strings.Join(texts, "\n") + " }"
}

func anyContainsAwait(stmts []*sitter.Node) bool {
	for _, stmt := range stmts {
		if containsNodeType(stmt, "await_expression") {
			return true
		}
	}

	return false
}

func containsNodeType(n *sitter.Node, nodeType string) bool {
	if n.Type() == nodeType {
		return true
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if containsNodeType(n.Child(i), nodeType) {
			return true
		}
	}

	return false
}

// removalEdits removes each classified statement including its trailing line
// terminator.
func removalEdits(src []byte, stmts ...*sitter.Node) []m.Edit {
	var edits []m.Edit

	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}

		end := stmt.EndByte()
		for end < uint32(len(src)) && (src[end] == ' ' || src[end] == '\t') {
			end++
		}

		if end < uint32(len(src)) && src[end] == '\r' {
			end++
		}

		if end < uint32(len(src)) && src[end] == '\n' {
			end++
		}

		edits = append(edits, m.Edit{Start: stmt.StartByte(), End: end})
	}

	return edits
}

// bindingLine names exactly the registration functions the rewrite used, plus
// the skip/only mode bindings only if any qualified call was present.
func bindingLine(used map[string]bool) string {
	names := make([]string, 0, 5)

	for _, name := range []string{registerGivenName, registerWhenName, registerItName, modeSkipName, modeOnlyName} {
		if used[name] {
			names = append(names, name)
		}
	}

	return "const { " + strings.Join(names, ", ") + " } = " + runtimeGlobal + ";\n"
}

// applyEdits runs once over the pristine source, emitting the rewritten text
// and a mapping from every copied output span back to its input position.
func applyEdits(path m.Path, src []byte, edits []m.Edit) ([]byte, *m.PositionMap, error) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}

		return edits[i].End < edits[j].End
	})

	for i := 1; i < len(edits); i++ {
		if edits[i].Start < edits[i-1].End {
			return nil, nil, fmt.Errorf("%s: overlapping edits at byte %d", path, edits[i].Start)
		}
	}

	var out bytes.Buffer

	posMap := &m.PositionMap{File: path}

	outLine, outCol := 1, 0
	inLine, inCol := 1, 0
	pos := uint32(0)

	advanceOut := func(text string) {
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				outLine++
				outCol = 0
			} else {
				outCol++
			}
		}
	}

	advanceIn := func(text []byte) {
		for _, b := range text {
			if b == '\n' {
				inLine++
				inCol = 0
			} else {
				inCol++
			}
		}
	}

	copyChunk := func(chunk []byte) {
		if len(chunk) == 0 {
			return
		}

		posMap.Mappings = append(posMap.Mappings, m.Mapping{
			OutLine: outLine, OutCol: outCol, InLine: inLine, InCol: inCol,
		})

		for _, b := range chunk {
			out.WriteByte(b)

			if b == '\n' {
				outLine++
				outCol = 0
				inLine++
				inCol = 0
				posMap.Mappings = append(posMap.Mappings, m.Mapping{
					OutLine: outLine, OutCol: outCol, InLine: inLine, InCol: inCol,
				})

				continue
			}

			outCol++
			inCol++
		}
	}

	for _, edit := range edits {
		copyChunk(src[pos:edit.Start])
		pos = edit.Start

		out.WriteString(edit.Text)
		advanceOut(edit.Text)

		advanceIn(src[pos:edit.End])
		pos = edit.End
	}

	copyChunk(src[pos:])

	return out.Bytes(), posMap, nil
}
