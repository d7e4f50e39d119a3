// Package cryptox implements password hashing for stored credentials.
//
// Two algorithms are supported: bcrypt (the default) and argon2id. Hashes are
// self-describing, so Verify accepts either kind regardless of which one new
// hashes are produced with.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names accepted by NewHasher.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// bcrypt ignores everything past this many bytes.
const bcryptMaxPasswordLen = 72

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	// Ceilings for parameters read back from a stored argon2id hash.
	argon2MaxTime    = 10
	argon2MaxMemory  = 256 * 1024
	argon2MaxThreads = 16

	argon2Prefix = "$argon2id$"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hashed. A mismatch is
	// (false, nil); only an unreadable hash is an error (ErrCorruptHash).
	Verify(plaintext, hashed string) (bool, error)
}

// Hasher produces hashes with its primary algorithm and verifies hashes of
// any supported algorithm.
type Hasher struct {
	algorithm  string
	bcryptCost int
}

// NewHasher returns a Hasher for algorithm ("bcrypt" when empty). bcryptCost
// is only used by bcrypt; zero selects bcrypt.DefaultCost.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}

	switch algorithm {
	case AlgorithmBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}

	return &Hasher{algorithm: algorithm, bcryptCost: bcryptCost}, nil
}

// Algorithm returns the algorithm used for new hashes.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password cannot be empty", common.ErrInvalidInput)
	}

	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(plaintext)
	}
	return h.hashBcrypt(plaintext)
}

func (h *Hasher) Verify(plaintext, hashed string) (bool, error) {
	switch {
	case strings.HasPrefix(hashed, argon2Prefix):
		return verifyArgon2id(plaintext, hashed)
	case isBcrypt(hashed):
		return verifyBcrypt(plaintext, hashed)
	default:
		return false, fmt.Errorf("%w: unrecognized hash format", common.ErrCorruptHash)
	}
}

// NeedsRehash reports whether hashed was produced by an algorithm other than
// the primary one.
func (h *Hasher) NeedsRehash(hashed string) bool {
	if h.algorithm == AlgorithmArgon2id {
		return !strings.HasPrefix(hashed, argon2Prefix)
	}
	return !isBcrypt(hashed)
}

func (h *Hasher) hashBcrypt(plaintext string) (string, error) {
	if len(plaintext) > bcryptMaxPasswordLen {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrInvalidInput, bcryptMaxPasswordLen)
	}

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func isBcrypt(hashed string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(hashed, p) {
			return true
		}
	}
	return false
}

func verifyBcrypt(plaintext, hashed string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(hashed)); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrCorruptHash, err)
	}
	if len(plaintext) > bcryptMaxPasswordLen {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrCorruptHash, err)
	}
}

// hashArgon2id encodes as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func hashArgon2id(plaintext string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plaintext, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("%w: argon2id: want 6 segments, got %d", common.ErrCorruptHash, len(parts))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: argon2id version: %v", common.ErrCorruptHash, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: argon2id version %d unsupported", common.ErrCorruptHash, version)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: argon2id params: %v", common.ErrCorruptHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: argon2id salt: %v", common.ErrCorruptHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: argon2id key: %v", common.ErrCorruptHash, err)
	}
	if len(want) == 0 || len(want) > 1024 ||
		memory == 0 || memory > argon2MaxMemory ||
		iterations == 0 || iterations > argon2MaxTime ||
		threads == 0 || threads > argon2MaxThreads {
		return false, fmt.Errorf("%w: argon2id params out of range", common.ErrCorruptHash)
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
