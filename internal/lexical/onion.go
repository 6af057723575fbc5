package lexical

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// onionSuffix is the special-use suffix of Tor hidden service hosts.
	onionSuffix = ".onion"

	// onionV3Version is the trailing version byte of a v3 address.
	onionV3Version = 0x03
)

// onionV3Pattern matches 56 base32 characters followed by ".onion".
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// checksumPrefix is the constant prepended when hashing a v3 address.
var checksumPrefix = []byte(".onion checksum")

// IsValidV3Address reports whether host is a checksum-valid v3 onion
// address. Phishing kits increasingly mirror onto hidden services, and a
// syntactically plausible but checksum-invalid ".onion" host is a strong hint
// that the link was hand-crafted.
//
// The decoded address is 35 bytes: a 32-byte ed25519 public key, a 2-byte
// checksum and the version byte. The checksum is the first two bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func IsValidV3Address(host string) bool {
	host = strings.ToLower(host)
	if !onionV3Pattern.MatchString(host) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(host, onionSuffix)))
	if err != nil || len(decoded) != 35 {
		return false
	}

	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}

	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)
	sum := sha3.Sum256(data)

	return checksum[0] == sum[0] && checksum[1] == sum[1]
}
