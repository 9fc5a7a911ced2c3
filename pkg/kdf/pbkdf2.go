package kdf

import (
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 derives a key using PBKDF2 (RFC 8018) with HMAC over the selected
// hash. It applies the same parameter validation as Derive. Unlike the
// PKCS#12 KDF the password is used as raw bytes, without UTF-16 re-encoding.
func PBKDF2(h Hash, password, salt []byte, iterations, keyLength int) ([]byte, error) {
	params, ok := hashTable[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHash, int(h))
	}
	if iterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrIterations, iterations)
	}
	if keyLength < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrKeyLength, keyLength)
	}
	return pbkdf2.Key(password, salt, iterations, keyLength, params.fn), nil
}
