package model

// CallKind identifies which registration primitive a recognized call maps to.
type CallKind string

const (
	// KindGiven is the outermost grouping scope carrying the factories.
	KindGiven CallKind = "given"
	// KindWhen is a nested grouping scope carrying modifier/perform steps.
	KindWhen CallKind = "when"
	// KindIt is one concrete test case.
	KindIt CallKind = "it"
)

// ExecMode is the execution mode a call was qualified with.
type ExecMode string

const (
	// ModeNormal runs the scope or case as registered.
	ModeNormal ExecMode = "normal"
	// ModeSkip registers the scope or case but never executes it.
	ModeSkip ExecMode = "skip"
	// ModeOnly restricts execution to only-marked scopes and cases.
	ModeOnly ExecMode = "only"
)

// CalleeShape is the closed variant over recognized callee syntax.
type CalleeShape int

const (
	// CalleeUnrecognized covers aliased or otherwise indirect callees. They
	// are silently ignored: reliable detection of arbitrary indirection is
	// out of scope.
	CalleeUnrecognized CalleeShape = iota
	// CalleePlain is a bare given/when/it identifier.
	CalleePlain
	// CalleeSkip is given.skip / when.skip / it.skip.
	CalleeSkip
	// CalleeOnly is given.only / when.only / it.only.
	CalleeOnly
)

// Mode maps a callee shape to its execution mode.
func (s CalleeShape) Mode() ExecMode {
	switch s {
	case CalleeSkip:
		return ModeSkip
	case CalleeOnly:
		return ModeOnly
	default:
		return ModeNormal
	}
}

// Position is a 1-based line/column pair in an original source file.
type Position struct {
	Line   int
	Column int
}

// Span is a half-open byte interval [Start, End) in the original source.
type Span struct {
	Start uint32
	End   uint32
}

// CallSite is the locator's record of one recognized BDD call.
type CallSite struct {
	Kind CallKind
	Mode ExecMode
	// Depth counts enclosing recognized calls only, not general block
	// nesting. Top-level given calls have depth 0.
	Depth int
	Span  Span
	Pos   Position
}
