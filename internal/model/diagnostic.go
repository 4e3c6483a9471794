package model

import "fmt"

// Diagnostic is a fatal transform-time error. It aborts the whole file before
// any output is produced.
type Diagnostic struct {
	Path    Path
	Line    int // 1-based
	Column  int // 1-based
	Message string
}

// Error formats the diagnostic as path:line:column: message.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Column, d.Message)
}

// NewDiagnostic builds a Diagnostic at the given original-source position.
func NewDiagnostic(path Path, pos Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Path:    path,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	}
}
