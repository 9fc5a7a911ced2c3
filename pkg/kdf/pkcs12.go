package kdf

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Hash identifies a digest algorithm supported by the derivation functions.
type Hash int

const (
	MD5 Hash = iota + 1
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
)

// Purpose selects which kind of material a PKCS#12 derivation produces.
// It becomes the diversifier byte from RFC 7292 appendix B.3.
type Purpose byte

const (
	PurposeKey Purpose = 1 // encryption key material
	PurposeIV  Purpose = 2 // initialization vector
	PurposeMAC Purpose = 3 // MAC key
)

// Validation errors returned before any hashing takes place.
var (
	ErrUnknownHash    = errors.New("unknown hash algorithm")
	ErrUnknownPurpose = errors.New("purpose must be key (1), iv (2) or mac (3)")
	ErrIterations     = errors.New("iterations must be at least 1")
	ErrKeyLength      = errors.New("key length must be at least 1")
	ErrPassword       = errors.New("password is not valid UTF-8")
)

// hashParams carries the fixed per-algorithm constants: u is the digest
// output length in bytes, v the internal block length in bytes.
type hashParams struct {
	name  string
	size  int // u
	block int // v
	fn    func() hash.Hash
}

var hashTable = map[Hash]hashParams{
	MD5:    {"md5", 16, 64, md5.New},
	SHA1:   {"sha1", 20, 64, sha1.New},
	SHA224: {"sha224", 28, 64, sha256.New224},
	SHA256: {"sha256", 32, 64, sha256.New},
	SHA384: {"sha384", 48, 128, sha512.New384},
	SHA512: {"sha512", 64, 128, sha512.New},
}

// String returns the lowercase algorithm name, or "unknown" for values
// outside the supported set.
func (h Hash) String() string {
	if p, ok := hashTable[h]; ok {
		return p.name
	}
	return "unknown"
}

// Size returns the digest output length in bytes, 0 for unknown hashes.
func (h Hash) Size() int {
	return hashTable[h].size
}

// BlockSize returns the internal block length in bytes, 0 for unknown hashes.
func (h Hash) BlockSize() int {
	return hashTable[h].block
}

// ParseHash maps an algorithm name to its Hash value.
func ParseHash(name string) (Hash, error) {
	for h, p := range hashTable {
		if p.name == strings.ToLower(name) {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHash, name)
}

// String returns the lowercase purpose name, or "unknown" for values
// outside {1, 2, 3}.
func (p Purpose) String() string {
	switch p {
	case PurposeKey:
		return "key"
	case PurposeIV:
		return "iv"
	case PurposeMAC:
		return "mac"
	}
	return "unknown"
}

// ParsePurpose maps a purpose name to its Purpose value.
func ParsePurpose(name string) (Purpose, error) {
	switch strings.ToLower(name) {
	case "key":
		return PurposeKey, nil
	case "iv":
		return PurposeIV, nil
	case "mac":
		return PurposeMAC, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPurpose, name)
}

// Derive implements the password-based key derivation function from
// RFC 7292 appendix B.2. The password is a UTF-8 byte string; it is
// re-encoded as UTF-16BE with a trailing two-byte null terminator before
// use, so even a zero-length password contributes a non-empty P block.
// The salt may be empty. The result is exactly keyLength bytes.
//
// Derive is deterministic and keeps no state between calls; it is safe
// for concurrent use.
func Derive(h Hash, password, salt []byte, iterations, keyLength int, purpose Purpose) ([]byte, error) {
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
	if purpose < PurposeKey || purpose > PurposeMAC {
		return nil, fmt.Errorf("%w: got %d", ErrUnknownPurpose, int(purpose))
	}
	encoded, err := encodePassword(password)
	if err != nil {
		return nil, err
	}

	u, v := params.size, params.block

	// D, S, P and I per RFC 7292 B.2 steps 1-4. S and P are the salt and
	// password stretched to a multiple of v; an empty source stays empty.
	D := bytes.Repeat([]byte{byte(purpose)}, v)
	S := stretch(salt, v)
	P := stretch(encoded, v)
	I := make([]byte, 0, len(S)+len(P))
	I = append(I, S...)
	I = append(I, P...)

	c := (keyLength + u - 1) / u
	A := make([]byte, 0, c*u)
	digest := params.fn()

	for i := 0; i < c; i++ {
		digest.Reset()
		digest.Write(D)
		digest.Write(I)
		Ai := digest.Sum(nil)
		for j := 1; j < iterations; j++ {
			digest.Reset()
			digest.Write(Ai)
			Ai = digest.Sum(Ai[:0])
		}
		A = append(A, Ai...)

		if i+1 == c {
			break
		}

		// B = Ai repeated to v bytes, plus one. Every v-byte chunk of I
		// is then replaced by (chunk + B) mod 2^(8v) for the next round.
		B := bytes.Repeat(Ai, (v+len(Ai)-1)/len(Ai))[:v]
		beInc(B)
		for off := 0; off < len(I); off += v {
			beAdd(I[off:off+v], B)
		}
	}

	return A[:keyLength], nil
}

// DeriveKey derives encryption key material (purpose id 1).
func DeriveKey(h Hash, password, salt []byte, iterations, keyLength int) ([]byte, error) {
	return Derive(h, password, salt, iterations, keyLength, PurposeKey)
}

// DeriveIV derives an initialization vector (purpose id 2).
func DeriveIV(h Hash, password, salt []byte, iterations, ivLength int) ([]byte, error) {
	return Derive(h, password, salt, iterations, ivLength, PurposeIV)
}

// DeriveMACKey derives a MAC key (purpose id 3).
func DeriveMACKey(h Hash, password, salt []byte, iterations, keyLength int) ([]byte, error) {
	return Derive(h, password, salt, iterations, keyLength, PurposeMAC)
}

// encodePassword converts a UTF-8 password to UTF-16BE and appends the
// two-byte null terminator required by RFC 7292. The terminator means the
// result is never empty, even for a zero-length password.
func encodePassword(password []byte) ([]byte, error) {
	if !utf8.Valid(password) {
		return nil, ErrPassword
	}
	units := utf16.Encode([]rune(string(password)))
	out := make([]byte, 0, 2*len(units)+2)
	for _, r := range units {
		out = append(out, byte(r>>8), byte(r))
	}
	return append(out, 0, 0), nil
}

// stretch repeats src end-to-end and truncates to the smallest multiple of
// v that covers it. An empty src yields nil.
func stretch(src []byte, v int) []byte {
	if len(src) == 0 {
		return nil
	}
	n := v * ((len(src) + v - 1) / v)
	return bytes.Repeat(src, (n+len(src)-1)/len(src))[:n]
}
