package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// RandomTimeHashHex returns hex(sha256(be64(unix seconds) || seed || 8 random bytes)).
// Flow and auth identifiers are derived this way.
func RandomTimeHashHex(now time.Time, seed []byte) (string, error) {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now.Unix()))

	random := make([]byte, 8)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("RandomTimeHashHex: %w", err)
	}

	h := sha256.New()
	h.Write(ts[:])
	h.Write(seed)
	h.Write(random)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RandomURLSafe returns n random bytes as unpadded base64url.
func RandomURLSafe(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("RandomURLSafe: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
