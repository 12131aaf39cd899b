package output

import (
	"fmt"
	"strings"
)

// Emitter writes indented JavaScript source text line by line
type Emitter struct {
	indentLevel int
	indentUnit  string
	builder     strings.Builder
}

// NewEmitter creates a new emitter indenting with two spaces
func NewEmitter() *Emitter {
	return &Emitter{
		indentLevel: 0,
		indentUnit:  "  ",
	}
}

// Line writes one formatted line at the current indentation
func (e *Emitter) Line(format string, args ...interface{}) {
	e.builder.WriteString(strings.Repeat(e.indentUnit, e.indentLevel))
	if len(args) == 0 {
		e.builder.WriteString(format)
	} else {
		e.builder.WriteString(fmt.Sprintf(format, args...))
	}
	e.builder.WriteByte('\n')
}

// Blank writes an empty line
func (e *Emitter) Blank() {
	e.builder.WriteByte('\n')
}

// Indent increases the indentation of following lines
func (e *Emitter) Indent() {
	e.indentLevel++
}

// Dedent decreases the indentation of following lines
func (e *Emitter) Dedent() {
	if e.indentLevel > 0 {
		e.indentLevel--
	}
}

// String returns the text written so far
func (e *Emitter) String() string {
	return e.builder.String()
}
