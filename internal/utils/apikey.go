package utils

// apikey.go generates station credentials.  A station receives two secrets
// at registration: an opaque API access key used to authenticate ingest
// calls, and a human-memorable 4-digit code that is unique within the scope
// of the station's name.  The key is never regenerated; the code exists so
// people can tell two same-named stations apart.

import (
	"crypto/rand"     // secure random bytes for keys and code salts
	"crypto/sha256"   // code candidates are derived from a SHA-256 digest
	"encoding/base64" // URL-safe encoding of the access key
	"encoding/binary" // folding a digest prefix into an integer
	"errors"
	"fmt"
	"time"
)

// codeAttempts bounds the unique-code retry loop.  With 10000 possible codes
// per station name the budget is generous; hitting it means the name's code
// space is effectively full.
const codeAttempts = 20000

// ErrCodeSpaceExhausted is returned when no free 4-digit code could be found
// for a station name within the attempt budget.
var ErrCodeSpaceExhausted = errors.New("could not generate unique station code")

// NewAPIKey returns a fresh station API access key: 32 bytes of
// cryptographically secure randomness, URL-safe base64 encoded without
// padding.
func NewAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// UniqueStationCode derives 4-digit code candidates from a SHA-256 hash of
// the owner id, a random salt and a high-resolution timestamp, and returns
// the first one the exists predicate reports as free.  The predicate is
// consulted per candidate so the uniqueness scope (station name) stays with
// the caller.  After codeAttempts collisions ErrCodeSpaceExhausted is
// returned.
func UniqueStationCode(ownerID uint64, exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		salt := make([]byte, 8)
		if _, err := rand.Read(salt); err != nil {
			return "", err
		}
		seed := fmt.Sprintf("%d-%x-%d", ownerID, salt, time.Now().UnixNano())
		sum := sha256.Sum256([]byte(seed))
		code := fmt.Sprintf("%04d", binary.BigEndian.Uint64(sum[:8])%10000)

		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
