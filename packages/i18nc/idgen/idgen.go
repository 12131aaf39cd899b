// Package idgen derives stable, human readable translation bundle ids from
// component file names.
package idgen

import (
	"path/filepath"
	"strconv"
	"unicode/utf16"
)

// hashLength is the number of base-36 digits kept from the hash
const hashLength = 5

// GenerateID returns "<basename>_<hash>" where basename is the file name
// without its extension and hash is the first five base-36 digits of
// StringHash(filename).
//
// The same filename always yields the same id. Collisions between different
// filenames are possible but not defended against.
func GenerateID(filename string) string {
	hash := strconv.FormatUint(uint64(StringHash(filename)), 36)
	if len(hash) > hashLength {
		hash = hash[:hashLength]
	}
	extension := filepath.Ext(filename)
	legible := filepath.Base(filename)
	legible = legible[:len(legible)-len(extension)]
	return legible + "_" + hash
}

// StringHash computes the djb2-xor hash used by the string-hash npm package
// over the UTF-16 code units of s. Ids produced by GenerateID therefore match
// ids produced by JavaScript tooling for the same file names.
func StringHash(s string) uint32 {
	units := utf16.Encode([]rune(s))
	h := int32(5381)
	for i := len(units) - 1; i >= 0; i-- {
		h = (h * 33) ^ int32(units[i])
	}
	return uint32(h)
}
