package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Fingerprint is the hex SHA-256 digest of document content.
type Fingerprint string

var fingerprintRx = regexp.MustCompile(`^[a-f0-9]{64}$`)

// FingerprintText hashes the UTF-8 bytes of an extracted text.
func FingerprintText(text string) Fingerprint {
	return FingerprintBytes([]byte(text))
}

// FingerprintBytes hashes raw document bytes.
func FingerprintBytes(b []byte) Fingerprint {
	sum := sha256.Sum256(b)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// ParseFingerprint validates a fingerprint received from outside (URL, CLI).
func ParseFingerprint(s string) (Fingerprint, error) {
	if !fingerprintRx.MatchString(s) {
		return "", fmt.Errorf("invalid fingerprint %q: %w", s, ErrInvalidInput)
	}
	return Fingerprint(s), nil
}

func (f Fingerprint) String() string { return string(f) }

// Short returns a prefix suitable for log lines and alert titles.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}
