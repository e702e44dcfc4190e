package types

// Encoding is the on-disk character width of an FString.
type Encoding uint8

const (
	// EncodingNarrow stores one byte per character.
	EncodingNarrow Encoding = iota
	// EncodingUTF16 stores UTF-16LE code units.
	EncodingUTF16
)

// FString is a length-prefixed engine string. Narrow strings keep their
// bytes verbatim in Value so they round-trip regardless of code page.
type FString struct {
	Value    string
	Encoding Encoding
	// Null marks the zero-length form, distinct from the empty string
	// which is serialized as a lone terminator.
	Null bool
	// Units holds the UTF-16LE code units of a wide string that does not
	// decode losslessly, such as one with an unpaired surrogate. Writers
	// emit them while Value still matches their decoding.
	Units string
}

// NewFString returns s as an FString, choosing UTF-16 when s holds any
// non-ASCII character.
func NewFString(s string) FString {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return FString{Value: s, Encoding: EncodingUTF16}
		}
	}
	return FString{Value: s}
}

// NullFString returns the null string.
func NullFString() FString { return FString{Null: true} }

// String returns the string value.
func (s FString) String() string { return s.Value }
