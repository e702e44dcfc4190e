package uasset

import (
	"errors"

	"github.com/meigma/uasset/codecerr"
)

// Codec error types re-exported from codecerr.
type (
	// Error is the structured error returned by Decode and Encode.
	Error = codecerr.Error

	// ErrorKind categorizes an Error.
	ErrorKind = codecerr.Kind

	// Stage names the decode or encode step that failed.
	Stage = codecerr.Stage
)

// Errors re-exported from codecerr. They match any Error of the same kind.
var (
	// ErrStructural is returned for malformed headers, tables and data.
	ErrStructural = codecerr.ErrStructural

	// ErrUnresolvedReference is returned for an index outside its table.
	ErrUnresolvedReference = codecerr.ErrUnresolvedReference

	// ErrUnknownType is returned for an unrecognized class or property type.
	ErrUnknownType = codecerr.ErrUnknownType

	// ErrEncodeSizeMismatch is returned when a recorded size disagrees with
	// the bytes emitted for it.
	ErrEncodeSizeMismatch = codecerr.ErrEncodeSizeMismatch
)

// Sentinel errors specific to the uasset package.
var (
	// ErrHeaderOnly is returned when encoding an asset decoded without its
	// export payloads.
	ErrHeaderOnly = errors.New("uasset: asset was decoded header only")

	// ErrDigestMismatch is returned when container content does not match
	// its recorded digest.
	ErrDigestMismatch = errors.New("uasset: digest mismatch")

	// ErrNotFound is returned when a container has no such asset, or an
	// index resolves to nothing.
	ErrNotFound = errors.New("uasset: not found")

	// ErrTooLarge is returned when an asset exceeds the configured size
	// limit.
	ErrTooLarge = errors.New("uasset: asset too large")

	// ErrUnversioned is returned for unversioned packages decoded without
	// an engine version.
	ErrUnversioned = errors.New("uasset: unversioned package needs an engine version")
)
