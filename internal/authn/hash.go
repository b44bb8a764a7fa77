// Package authn implements password hashing (component B) and the
// HTTP Basic-credential authenticator (component G).
package authn

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Deliberately conservative defaults suitable for
// an interactive login path; not operator-tunable because the core
// never exposes a config knob for this (spec §4.B treats the hasher as
// an opaque collaborator).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// ErrMalformedHash is returned by VerifyPassword when the stored hash
// is not a valid PHC-format argon2id string.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives a PHC-formatted argon2id hash for plain.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// VerifyPassword reports whether plain matches the PHC-formatted hash.
func VerifyPassword(encoded, plain string) (bool, error) {
	m, t, p, salt, sum, err := decode(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(sum)))
	return subtle.ConstantTimeCompare(candidate, sum) == 1, nil
}

func decode(encoded string) (memory uint32, time uint32, threads uint8, salt, sum []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var m, t uint32
	var pr uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &pr); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	sum, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	return m, t, pr, salt, sum, nil
}

// DummyHash is a precomputed hash for a fixed, never-issued password,
// used to perform a real verification pass when the label looked up by
// the authenticator does not exist (P7 / user-enumeration timing).
var DummyHash = mustHash("no-such-account-correct-horse-battery-staple")

func mustHash(plain string) string {
	h, err := HashPassword(plain)
	if err != nil {
		panic(err)
	}
	return h
}

// PasswordHasher adapts HashPassword to the orchestrator's Hasher
// capability interface (spec §9 polymorphism note).
type PasswordHasher struct{}

// Hash hashes plain using the package's Argon2id parameters.
func (PasswordHasher) Hash(plain string) (string, error) {
	return HashPassword(plain)
}
