// Package fb holds the FlatBuffers accessors for the bundle index described
// by index.fbs.
package fb

import "strconv"

type Compression byte

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
)

var EnumNamesCompression = map[Compression]string{
	CompressionNone: "None",
	CompressionZstd: "Zstd",
}

func (v Compression) String() string {
	if s, ok := EnumNamesCompression[v]; ok {
		return s
	}
	return "Compression(" + strconv.FormatInt(int64(v), 10) + ")"
}

type HashAlgorithm byte

const (
	HashAlgorithmNone   HashAlgorithm = 0
	HashAlgorithmSHA256 HashAlgorithm = 1
)

var EnumNamesHashAlgorithm = map[HashAlgorithm]string{
	HashAlgorithmNone:   "None",
	HashAlgorithmSHA256: "SHA256",
}

func (v HashAlgorithm) String() string {
	if s, ok := EnumNamesHashAlgorithm[v]; ok {
		return s
	}
	return "HashAlgorithm(" + strconv.FormatInt(int64(v), 10) + ")"
}
