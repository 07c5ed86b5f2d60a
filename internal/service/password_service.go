package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"

	"github.com/vostuff/vostuff/internal/config"
)

const saltLength = 16

// PasswordService hashes and verifies passwords with argon2id. The encoded
// form is the PHC string ($argon2id$v=19$m=...,t=...,p=...$salt$hash), so a
// stored hash carries everything needed to verify it and parameters can be
// raised without re-hashing existing records.
//
// Each derivation costs roughly Memory KiB of RAM; the semaphore caps how many
// run at once so a burst of login attempts cannot exhaust the process.
type PasswordService struct {
	cfg config.Argon2Config
	sem *semaphore.Weighted
}

// NewPasswordService creates a password service with the given cost parameters.
func NewPasswordService(cfg config.Argon2Config) *PasswordService {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &PasswordService{
		cfg: cfg,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Hash derives an argon2id hash over a fresh random salt. Two calls on the
// same password produce different strings that both verify.
func (s *PasswordService) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, s.cfg.Iterations, s.cfg.Memory, s.cfg.Parallelism, s.cfg.KeyLength)
	s.sem.Release(1)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, s.cfg.Memory, s.cfg.Iterations, s.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify re-derives the supplied password with the parameters embedded in the
// stored hash and compares in constant time. A malformed or unparseable hash
// is a plain verification failure: callers treat "no password set" and
// "unreadable hash" the same way.
func (s *PasswordService) Verify(ctx context.Context, password, encodedHash string) bool {
	salt, storedHash, iterations, memory, parallelism, ok := parsePHC(encodedHash)
	if !ok {
		return false
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(storedHash)))
	s.sem.Release(1)

	return subtle.ConstantTimeCompare(candidate, storedHash) == 1
}

// parsePHC splits a $argon2id$v=19$m=...,t=...,p=...$salt$hash string.
func parsePHC(encodedHash string) (salt, hash []byte, iterations, memory uint32, parallelism uint8, ok bool) {
	parts := strings.Split(encodedHash, "$")
	// Leading '$' yields an empty first element.
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &p); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if memory == 0 || iterations == 0 || p == 0 || p > 255 {
		return nil, nil, 0, 0, 0, false
	}
	parallelism = uint8(p)

	var err error
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(hash) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, hash, iterations, memory, parallelism, true
}
