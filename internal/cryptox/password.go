// Package cryptox derives and verifies salted password digests with
// PBKDF2-HMAC-SHA256.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/worklog/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the random per-record salt.
	SaltSize = 16
	// KeySize is the length of the derived digest (SHA-256 output size).
	KeySize = sha256.Size
	// DefaultIterations is the work factor applied to new records.
	DefaultIterations = 200_000
	// MinIterations is the lowest work factor accepted for new records.
	MinIterations = 100_000
)

// Digest is the stored form of a password: salt, derived hash and the
// iteration count used to derive it.
type Digest struct {
	Salt       []byte
	Hash       []byte
	Iterations int
}

// Hasher derives digests with a fixed work factor. The iteration count is
// recorded in every Digest, so raising it later does not invalidate older
// records.
type Hasher struct {
	iterations int
	random     func([]byte) (int, error)
}

// NewHasher returns a Hasher using the given work factor, raised to
// MinIterations when lower.
func NewHasher(iterations int) *Hasher {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return &Hasher{iterations: iterations, random: rand.Read}
}

// Iterations reports the work factor used for new digests.
func (h *Hasher) Iterations() int {
	return h.iterations
}

// Derive generates a fresh salt and derives the digest of password.
func (h *Hasher) Derive(password []byte) (Digest, error) {
	salt := make([]byte, SaltSize)
	if _, err := h.random(salt); err != nil {
		return Digest{}, fmt.Errorf("read salt: %w", err)
	}
	return Digest{
		Salt:       salt,
		Hash:       derive(password, salt, h.iterations),
		Iterations: h.iterations,
	}, nil
}

// Verify re-derives password with d's salt and work factor and compares the
// result in constant time. Malformed digests never verify.
func (h *Hasher) Verify(password []byte, d Digest) bool {
	if len(d.Salt) == 0 || len(d.Hash) == 0 || d.Iterations <= 0 {
		return false
	}
	candidate := derive(password, d.Salt, d.Iterations)
	return subtle.ConstantTimeCompare(candidate, d.Hash) == 1
}

func derive(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}

// EncodeDigest returns the base64 text form of salt and hash.
func EncodeDigest(d Digest) (salt, hash string) {
	return base64.StdEncoding.EncodeToString(d.Salt), base64.StdEncoding.EncodeToString(d.Hash)
}

// DecodeDigest parses the base64 text form produced by EncodeDigest.
// Undecodable input yields common.ErrCredentialCorrupt.
func DecodeDigest(salt, hash string, iterations int) (Digest, error) {
	s, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: salt: %v", common.ErrCredentialCorrupt, err)
	}
	hs, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: hash: %v", common.ErrCredentialCorrupt, err)
	}
	if iterations <= 0 {
		return Digest{}, fmt.Errorf("%w: iterations %d", common.ErrCredentialCorrupt, iterations)
	}
	return Digest{Salt: s, Hash: hs, Iterations: iterations}, nil
}
