package types

import "strconv"

// FName is a reference into a package's name table. Number is the raw
// instance number as serialized; zero means "no suffix".
type FName struct {
	Index  int32
	Number int32
}

// Format renders the display form of a name whose table value is base.
func (n FName) Format(base string) string {
	if n.Number <= 0 {
		return base
	}
	return base + "_" + strconv.FormatInt(int64(n.Number-1), 10)
}
