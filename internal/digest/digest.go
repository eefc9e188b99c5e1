// Package digest produces the hex digests used to bound partition keys.
package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Size is the length of a SHA3-512 hex digest.
const Size = 2 * 64

// SHA3512Hex returns the lowercase hex SHA3-512 digest of the UTF-8 bytes of s.
func SHA3512Hex(s string) string {
	sum := sha3.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
