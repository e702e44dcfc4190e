package codecerr

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the decode or encode step that produced an error.
type Stage string

const (
	StageHeader          Stage = "header"
	StageNames           Stage = "names"
	StageSoftObjectPaths Stage = "soft_object_paths"
	StageImports         Stage = "imports"
	StageExports         Stage = "exports"
	StageDepends         Stage = "depends"
	StagePreload         Stage = "preload"
	StagePayloads        Stage = "payloads"
	StageEncode          Stage = "encode"
)

// Kind categorizes the error.
type Kind string

const (
	// KindStructural marks malformed headers, tables and truncated data.
	KindStructural Kind = "structural"
	// KindUnresolvedReference marks an index outside its table.
	KindUnresolvedReference Kind = "unresolved_reference"
	// KindUnknownType marks an unrecognized class or property type.
	KindUnknownType Kind = "unknown_type"
	// KindEncodeSizeMismatch marks a recorded size that disagrees with the
	// bytes emitted for it.
	KindEncodeSizeMismatch Kind = "encode_size_mismatch"
)

// NoOffset is the Offset of an error not tied to a byte position.
const NoOffset int64 = -1

// Sentinels for errors.Is. They match any error of the same kind.
var (
	ErrStructural          = &Error{Kind: KindStructural, Offset: NoOffset}
	ErrUnresolvedReference = &Error{Kind: KindUnresolvedReference, Offset: NoOffset}
	ErrUnknownType         = &Error{Kind: KindUnknownType, Offset: NoOffset}
	ErrEncodeSizeMismatch  = &Error{Kind: KindEncodeSizeMismatch, Offset: NoOffset}
)

// Error is the structured error type used throughout the codec.
type Error struct {
	Cause  error
	Kind   Kind
	Stage  Stage
	Detail string
	Path   []string
	Offset int64
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	if e.Stage != "" || e.Offset >= 0 {
		b.WriteByte('[')
		b.WriteString(string(e.Stage))
		if e.Offset >= 0 {
			if e.Stage != "" {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "@0x%x", e.Offset)
		}
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target matches when the
// kinds agree and the target's stage, if set, equals this error's stage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Stage == "" || t.Stage == e.Stage
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder for kind.
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind, Offset: NoOffset}}
}

// Stage sets the stage.
func (b *Builder) Stage(s Stage) *Builder {
	b.err.Stage = s
	return b
}

// Offset sets the absolute byte offset.
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Path sets the element path.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Structural creates a structural error at offset.
func Structural(offset int64, format string, args ...any) *Error {
	return New(KindStructural).Offset(offset).Detail(format, args...).Build()
}

// Truncated creates a structural error for a read of need bytes at offset
// when only have bytes remain.
func Truncated(offset, need, have int64) *Error {
	return Structural(offset, "need %d bytes, %d remaining", need, have)
}

// UnresolvedReference creates an error for an index outside a table of
// size entries.
func UnresolvedReference(offset int64, table string, index int64, size int) *Error {
	return New(KindUnresolvedReference).
		Offset(offset).
		Detail("%s index %d outside table of %d entries", table, index, size).
		Build()
}

// UnknownType creates an error for an unrecognized type name.
func UnknownType(offset int64, what, name string) *Error {
	return New(KindUnknownType).Offset(offset).Detail("unknown %s %q", what, name).Build()
}

// SizeMismatch creates an encode error for a size field that does not match
// the bytes written for it.
func SizeMismatch(what string, recorded, actual int64) *Error {
	return New(KindEncodeSizeMismatch).
		Stage(StageEncode).
		Detail("%s: recorded %d bytes, wrote %d", what, recorded, actual).
		Build()
}

// WithStage stamps stage onto err. A codec Error without a stage gets it set
// in a copy; any other error without a staged codec Error inside is wrapped
// as a structural error at offset.
func WithStage(err error, stage Stage, offset int64) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok { //nolint:errorlint // only the outermost error is restamped
		if ce.Stage != "" {
			return err
		}
		cp := *ce
		cp.Stage = stage
		if cp.Offset < 0 {
			cp.Offset = offset
		}
		return &cp
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Stage != "" {
		return err
	}
	return New(KindStructural).Stage(stage).Offset(offset).Cause(err).Build()
}

// WithPath prepends path elements to err's path when err is a codec Error.
func WithPath(err error, path ...string) error {
	ce, ok := err.(*Error) //nolint:errorlint // only the outermost error carries the path
	if !ok {
		return err
	}
	cp := *ce
	cp.Path = append(append([]string{}, path...), ce.Path...)
	return &cp
}

// KindOf returns the kind of err, or "" when err is not a codec Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Recoverable reports whether err may be absorbed by a local fallback:
// unresolved references, unknown types and structural errors raised inside
// a bounded payload.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindUnresolvedReference, KindUnknownType, KindStructural:
		return true
	default:
		return false
	}
}
