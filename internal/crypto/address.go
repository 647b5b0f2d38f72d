// Package crypto provides Ethereum address validation and EIP-55 checksum
// encoding.
package crypto

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// IsValidAddress reports whether s is a well-formed Ethereum address. All-
// lowercase and all-uppercase hex is accepted as-is; mixed-case addresses
// must carry a valid EIP-55 checksum.
func IsValidAddress(s string) bool {
	if !isHexAddress(s) {
		return false
	}

	body := s[2:]
	lower := strings.ToLower(body)
	upper := strings.ToUpper(body)
	if body == lower || body == upper {
		return true
	}
	return ChecksumAddress(s) == "0x"+body
}

// ChecksumAddress returns the EIP-55 checksummed form of an address, or ""
// when the input is not well-formed hex.
func ChecksumAddress(s string) string {
	if !isHexAddress(s) {
		return ""
	}

	body := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(body))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

func isHexAddress(s string) bool {
	if len(s) != 42 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
