package model

// Mapping associates a position in the rewritten output with the originating
// position in the input file. All coordinates are 1-based lines and 0-based
// columns, matching the Source Map v3 convention.
type Mapping struct {
	OutLine int
	OutCol  int
	InLine  int
	InCol   int
}

// PositionMap is the position-mapping artifact emitted alongside every
// non-trivial transform result.
type PositionMap struct {
	File     Path
	Mappings []Mapping
}

// Resolve returns the input position for the closest mapping at or before the
// given output position, and false when the position precedes every mapping
// (i.e. it lies in generated text with no originating input).
func (p *PositionMap) Resolve(outLine, outCol int) (Mapping, bool) {
	best := -1

	for i, m := range p.Mappings {
		if m.OutLine > outLine || (m.OutLine == outLine && m.OutCol > outCol) {
			break
		}

		best = i
	}

	if best < 0 {
		return Mapping{}, false
	}

	return p.Mappings[best], true
}

// TransformResult is the rewriter's output for a single file.
type TransformResult struct {
	Origin Path
	// Changed is false when the file contained no recognized BDD calls or
	// was excluded by the import checks; Code then holds the input bytes.
	Changed bool
	Code    []byte
	// Map is nil when Changed is false.
	Map *PositionMap
}
