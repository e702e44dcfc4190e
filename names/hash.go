package names

import (
	"hash/crc32"
	"unicode"
	"unicode/utf16"

	"github.com/meigma/uasset/types"
)

// deprecatedTable is the MSB-first CRC table the engine's legacy
// case-insensitive string hash indexes with LSB-first shifts.
var deprecatedTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		crc := uint32(i) << 24 //nolint:gosec // i < 256
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}()

func units(s types.FString) []uint16 {
	if s.Encoding == types.EncodingUTF16 {
		return utf16.Encode([]rune(s.Value))
	}
	out := make([]uint16, len(s.Value))
	for i := 0; i < len(s.Value); i++ {
		out[i] = uint16(s.Value[i])
	}
	return out
}

// NonCasePreservingHash returns the low 16 bits of the engine's legacy
// upper-cased string hash.
func NonCasePreservingHash(s types.FString) uint16 {
	var h uint32
	step := func(b uint32) {
		h = (h>>8)&0x00FFFFFF ^ deprecatedTable[(h^b)&0xFF]
	}
	for _, u := range units(s) {
		if s.Encoding == types.EncodingUTF16 {
			u = uint16(unicode.ToUpper(rune(u))) //nolint:gosec // BMP code units upper-case within the BMP
			step(uint32(u))
			step(uint32(u >> 8))
			continue
		}
		if u >= 'a' && u <= 'z' {
			u -= 'a' - 'A'
		}
		step(uint32(u))
	}
	return uint16(h) //nolint:gosec // truncation is the format
}

// CasePreservingHash returns the low 16 bits of the engine's CRC32 over the
// string's characters widened to 32 bits.
func CasePreservingHash(s types.FString) uint16 {
	u := units(s)
	buf := make([]byte, 0, len(u)*4)
	for _, c := range u {
		buf = append(buf, byte(c), byte(c>>8), 0, 0)
	}
	return uint16(crc32.ChecksumIEEE(buf)) //nolint:gosec // truncation is the format
}
