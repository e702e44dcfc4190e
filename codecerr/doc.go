// Package codecerr defines the structured errors reported by the package
// codec.
//
// Every failure carries a Kind and, once it has crossed a decode stage
// boundary, the Stage and absolute byte Offset where it was detected:
//
//	[exports @0x1a4] unresolved_reference at Exports.3: class index -9 outside import table (7 entries)
//
// Callers match kinds with errors.Is against the sentinel values:
//
//	if errors.Is(err, codecerr.ErrUnknownType) { ... }
package codecerr
