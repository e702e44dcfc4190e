package archive

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"

	"github.com/meigma/uasset/types"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16 decodes b and reports whether encoding the result gives b
// back. Unpaired surrogates decode to U+FFFD and do not.
func decodeUTF16(b []byte) (string, bool, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", false, err
	}
	again, err := utf16le.NewEncoder().Bytes(out)
	return string(out), err == nil && bytes.Equal(again, b), nil
}

func encodeUTF16(s string) ([]byte, error) {
	return utf16le.NewEncoder().Bytes([]byte(s))
}

// wideUnits returns the code units to write for s.
func wideUnits(s types.FString) ([]byte, error) {
	if s.Units != "" {
		if v, _, err := decodeUTF16([]byte(s.Units)); err == nil && v == s.Value {
			return []byte(s.Units), nil
		}
	}
	return encodeUTF16(s.Value)
}
