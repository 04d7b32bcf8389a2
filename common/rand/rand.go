package rand

import (
	"crypto/rand"
	"encoding/hex"
)

// RandHex produces a hex string containing n random bytes from crypto/rand; thus of length 2*n.
// It panics if the system random source fails, which leaves no safe way to mint tokens.
func RandHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("reading random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
