package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"

	"github.com/hadeeqati/hadeeqati-backend/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

const hashFormat = "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"

// ArgonParams are the Argon2id costs recorded in every stored hash.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// Cost bounds shared by hashing and verification. A stored hash outside them
// is refused rather than allowed to pin a login on a huge memory cost.
var (
	memoryBounds = [2]int{8, 512 * 1024}
	timeBounds   = [2]int{1, 10}
	threadBounds = [2]int{1, 255}
	saltBounds   = [2]int{8, 64}
	keyBounds    = [2]int{16, 64}
)

// HashPassword derives an Argon2id hash with the configured costs, clamped to
// the supported bounds, and encodes it in the PHC string format.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	p := ArgonParams{
		Memory:      clamp(cfg.ArgonMemoryKB, memoryBounds),
		Time:        clamp(cfg.ArgonTime, timeBounds),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, threadBounds)),
		SaltLen:     clamp(cfg.ArgonSaltLen, saltBounds),
		KeyLen:      clamp(cfg.ArgonKeyLen, keyBounds),
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf(hashFormat, argon2.Version, p.Memory, p.Time, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password produces the stored hash. A
// malformed or out of bounds hash returns ErrInvalidHash.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

var b64 = base64.RawStdEncoding

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	var p ArgonParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen, p.KeyLen = uint32(len(salt)), uint32(len(key))

	if !within(int(p.Memory), memoryBounds) || !within(int(p.Time), timeBounds) ||
		!within(int(p.Parallelism), threadBounds) || !within(len(salt), saltBounds) ||
		!within(len(key), keyBounds) {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	return p, salt, key, nil
}

func within(v int, bounds [2]int) bool {
	return v >= bounds[0] && v <= bounds[1]
}

func clamp(v int, bounds [2]int) uint32 {
	return uint32(min(max(v, bounds[0]), bounds[1]))
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ErrWeakPassword is returned when a password misses the strength policy.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters and contain an uppercase letter, a lowercase letter and a digit", MinPasswordLength)

// CheckPasswordStrength enforces the registration password policy.
func CheckPasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}
