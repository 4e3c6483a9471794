package domain

import (
	sitter "github.com/smacker/go-tree-sitter"

	m "github.com/mouse-blink/scenario/internal/model"
)

// givenParts holds the factory assignments found among a given callback's
// direct statements. Either node may be nil.
type givenParts struct {
	Inputs      *sitter.Node // RHS of the $inputs assignment
	Subject     *sitter.Node // RHS of the $subject assignment
	InputsStmt  *sitter.Node // full statement, for removal
	SubjectStmt *sitter.Node
}

// whenParts holds the classified direct statements of a when callback, in
// source order.
type whenParts struct {
	Modifiers []*sitter.Node
	Performs  []*sitter.Node
}

// Classifier partitions the direct statements of given/when callbacks.
// Classification is deliberately shallow and syntactic: a statement's class
// is a pure function of its own shape, never of surrounding control flow.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyGiven scans the direct statements of a given callback for the two
// reserved-slot factory assignments. Assigning either slot twice in one scope
// is fatal.
func (c *Classifier) ClassifyGiven(path m.Path, site *callSite, src []byte) (givenParts, error) {
	var parts givenParts

	for _, stmt := range directStatements(site.Body) {
		slot, rhs := slotAssignment(stmt, src)

		switch slot {
		case inputsSlot:
			if parts.Inputs != nil {
				return givenParts{}, m.NewDiagnostic(path, position(stmt),
					"%s can only be assigned once per given scope", inputsSlot)
			}

			parts.Inputs = rhs
			parts.InputsStmt = stmt

		case subjectSlot:
			if parts.Subject != nil {
				return givenParts{}, m.NewDiagnostic(path, position(stmt),
					"%s can only be assigned once per given scope", subjectSlot)
			}

			parts.Subject = rhs
			parts.SubjectStmt = stmt
		}
	}

	return parts, nil
}

// ClassifyWhen partitions the direct statements of a when callback into
// modifiers, performs and pass-through body, per the strict per-statement
// rule: slot-rooted assignments are modifiers; statements that reference the
// subject slot (without crossing into a nested recognized callback, and
// without containing any recognized call at all) are performs; everything
// else passes through for recursive transformation.
func (c *Classifier) ClassifyWhen(site *callSite, src []byte) whenParts {
	var parts whenParts

	for _, stmt := range directStatements(site.Body) {
		switch classifyWhenStatement(stmt, src) {
		case m.ClassModifier:
			parts.Modifiers = append(parts.Modifiers, stmt)
		case m.ClassPerform:
			parts.Performs = append(parts.Performs, stmt)
		}
	}

	return parts
}

func classifyWhenStatement(stmt *sitter.Node, src []byte) m.StatementClass {
	if isInputsModifier(stmt, src) {
		return m.ClassModifier
	}

	if containsRecognizedCall(stmt, src) {
		return m.ClassBody
	}

	if referencesIdentifier(stmt, subjectSlot, src) {
		return m.ClassPerform
	}

	return m.ClassBody
}

// directStatements returns the named statements of a statement_block body.
// Expression-bodied arrows have no direct statements.
func directStatements(body *sitter.Node) []*sitter.Node {
	if body == nil || body.Type() != "statement_block" {
		return nil
	}

	stmts := make([]*sitter.Node, 0, body.NamedChildCount())
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}

		stmts = append(stmts, child)
	}

	return stmts
}

// slotAssignment matches `<slot> = <expr>;` where slot is a bare reserved
// identifier, returning the slot name and the right-hand expression.
func slotAssignment(stmt *sitter.Node, src []byte) (string, *sitter.Node) {
	assign := plainAssignment(stmt)
	if assign == nil {
		return "", nil
	}

	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return "", nil
	}

	name := nodeText(left, src)
	if name != inputsSlot && name != subjectSlot {
		return "", nil
	}

	return name, assign.ChildByFieldName("right")
}

// isInputsModifier matches assignments whose left side is a property or index
// access rooted at the $inputs slot, e.g. `$inputs.value = 5`.
func isInputsModifier(stmt *sitter.Node, src []byte) bool {
	assign := plainAssignment(stmt)
	if assign == nil {
		return false
	}

	left := assign.ChildByFieldName("left")
	if left == nil {
		return false
	}

	// A bare `$inputs = ...` is a factory assignment shape, not a modifier.
	switch left.Type() {
	case "member_expression", "subscript_expression":
	default:
		return false
	}

	for left != nil {
		switch left.Type() {
		case "member_expression", "subscript_expression":
			left = left.ChildByFieldName("object")
		case "identifier":
			return nodeText(left, src) == inputsSlot
		default:
			return false
		}
	}

	return false
}

// plainAssignment unwraps an expression statement holding a plain `=`
// assignment. Compound assignments parse as augmented_assignment_expression
// and do not match.
func plainAssignment(stmt *sitter.Node) *sitter.Node {
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil
	}

	expr := stmt.NamedChild(0)
	if expr.Type() != "assignment_expression" {
		return nil
	}

	return expr
}

// referencesIdentifier reports whether name occurs anywhere in the statement's
// subtree. Entry into the callback of any recognized call is an opaque
// boundary: nested scopes are classified independently and never leak
// references into the enclosing scan.
func referencesIdentifier(n *sitter.Node, name string, src []byte) bool {
	if n.Type() == "identifier" && nodeText(n, src) == name {
		return true
	}

	var opaque *sitter.Node
	if isRecognizedCall(n, src) {
		opaque = callbackOf(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if sameNode(child, opaque) {
			continue
		}

		if referencesIdentifier(child, name, src) {
			return true
		}
	}

	return false
}

// containsRecognizedCall reports whether any recognized BDD call occurs in the
// statement's subtree, the statement itself included.
func containsRecognizedCall(n *sitter.Node, src []byte) bool {
	if isRecognizedCall(n, src) {
		return true
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if containsRecognizedCall(n.Child(i), src) {
			return true
		}
	}

	return false
}
