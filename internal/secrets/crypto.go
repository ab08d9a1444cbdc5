package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the secretbox key length
	KeySize = 32
	// NonceSize is the secretbox nonce length
	NonceSize = 24
)

// ErrDecrypt is returned when a sealed value fails authentication
var ErrDecrypt = errors.New("decryption failed (wrong key or corrupted data)")

// DeriveKey derives a secretbox key from the store passphrase
func DeriveKey(passphrase string) [KeySize]byte {
	return sha256.Sum256([]byte(passphrase))
}

// Seal encrypts plaintext and returns nonce || ciphertext
func Seal(plaintext []byte, key *[KeySize]byte) ([]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Open reverses Seal
func Open(sealed []byte, key *[KeySize]byte) ([]byte, error) {
	if len(sealed) < NonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: sealed value too short", ErrDecrypt)
	}

	var nonce [NonceSize]byte
	copy(nonce[:], sealed[:NonceSize])

	plain, ok := secretbox.Open(nil, sealed[NonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
