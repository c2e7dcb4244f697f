package principal

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of derived signing keys.
	KeySize = 32

	// MinSecretSize is the shortest secret DeriveKey accepts.
	MinSecretSize = 32

	keyInfo = "doctorq-principal-v1"
)

// DeriveKey expands secret into a KeySize signing key bound to purpose with
// HKDF-SHA256. Different purposes yield unrelated keys from one secret.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrMissingSigningKey
	}

	r := hkdf.New(sha256.New, secret, []byte(purpose), []byte(keyInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivation, err)
	}
	return key, nil
}

// NewSessionCodec builds the session token codec from a configured secret.
func NewSessionCodec(secret string, opts ...CodecOption) (*Codec, error) {
	key, err := DeriveKey([]byte(secret), "session")
	if err != nil {
		return nil, err
	}
	return NewCodec(key, opts...)
}
