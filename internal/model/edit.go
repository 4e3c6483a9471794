package model

// Edit replaces the byte range [Start, End) of the original source with Text.
// A pure insertion has Start == End; a pure removal has empty Text. Edits are
// always expressed against pristine input offsets and applied in one pass.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// StatementClass partitions the direct statements of a given/when callback.
type StatementClass int

const (
	// ClassBody statements pass through unchanged, recursively transformed
	// for any BDD calls they contain.
	ClassBody StatementClass = iota
	// ClassInputsFactory is the single $inputs assignment of a given scope.
	ClassInputsFactory
	// ClassSubjectFactory is the single $subject assignment of a given scope.
	ClassSubjectFactory
	// ClassModifier is a when-scope assignment through the $inputs slot.
	ClassModifier
	// ClassPerform is a when-scope statement acting on the $subject slot.
	ClassPerform
)
