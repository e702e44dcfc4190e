package archive

import (
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
)

// Passthrough forwards every Writer method to the wrapped writer.
// Decorators embed it and override the primitives they intercept; anything
// not overridden, including positions and context, behaves exactly as the
// wrapped writer does.
type Passthrough struct {
	Writer
}

// NewPassthrough wraps w.
func NewPassthrough(w Writer) Passthrough {
	return Passthrough{Writer: w}
}

// Inner returns the wrapped writer.
func (p Passthrough) Inner() Writer {
	return p.Writer
}

// CheckedWriter rejects name references outside the context's name table
// instead of serializing them.
type CheckedWriter struct {
	Passthrough
}

// NewCheckedWriter wraps w.
func NewCheckedWriter(w Writer) *CheckedWriter {
	return &CheckedWriter{Passthrough: NewPassthrough(w)}
}

// WriteFName implements Writer.
func (c *CheckedWriter) WriteFName(n types.FName) {
	nm := c.NameMap()
	if !nm.Contains(n.Index) {
		c.Fail(codecerr.WithStage(
			codecerr.UnresolvedReference(c.Position(), "name", int64(n.Index), nm.Len()),
			codecerr.StageEncode, c.Position()))
		return
	}
	c.Writer.WriteFName(n)
}
