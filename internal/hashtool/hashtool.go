// Package hashtool computes message digests over text input for the Security
// Toolbox. It produces MD5, SHA-1, SHA-256, and SHA-512 digests as lowercase
// hexadecimal strings keyed by algorithm name.
package hashtool

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Algorithms lists the supported digest algorithms in display order.
var Algorithms = []string{"MD5", "SHA-1", "SHA-256", "SHA-512"}

// Digests computes all supported digests over the UTF-8 bytes of input.
// Empty or whitespace-only input returns nil without computing anything.
func Digests(input string) map[string]string {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	data := []byte(input)

	md5Sum := md5.Sum(data)
	sha1Sum := sha1.Sum(data)
	sha256Sum := sha256.Sum256(data)
	sha512Sum := sha512.Sum512(data)

	return map[string]string{
		"MD5":     hex.EncodeToString(md5Sum[:]),
		"SHA-1":   hex.EncodeToString(sha1Sum[:]),
		"SHA-256": hex.EncodeToString(sha256Sum[:]),
		"SHA-512": hex.EncodeToString(sha512Sum[:]),
	}
}
