package adminkey

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
)

// Domain errors
var (
	ErrIncorrect = errors.New("incorrect password")
	ErrEmptyKey  = errors.New("admin key cannot be empty")
)

// Key is the shared secret that authorizes destructive and transfer
// operations. It is not tied to an individual identity.
type Key struct {
	digest [sha256.Size]byte
}

// New creates a Key from the configured secret.
// PRE: secret is non-empty
// POST: Returns a Key that verifies candidates against secret
func New(secret string) (Key, error) {
	if secret == "" {
		return Key{}, ErrEmptyKey
	}
	return Key{digest: sha256.Sum256([]byte(secret))}, nil
}

// Verify compares candidate against the secret in constant time.
// POST: Returns nil on match, ErrIncorrect otherwise
// INVARIANT: Key is not mutated
func (k Key) Verify(candidate string) error {
	d := sha256.Sum256([]byte(candidate))
	if candidate == "" || subtle.ConstantTimeCompare(k.digest[:], d[:]) != 1 {
		return ErrIncorrect
	}
	return nil
}
