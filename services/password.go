package services

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"atomichabits/utils"

	"golang.org/x/crypto/argon2"
)

// argonParams are encoded into every stored hash so they can be raised
// later without invalidating existing passwords.
type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	keyLength   uint32
}

var defaultParams = argonParams{memory: 64 * 1024, iterations: 3, parallelism: 2, keyLength: 32}

var (
	ErrWeakPassword      = errors.New("password must be at least 8 characters and contain a number")
	ErrInvalidHashFormat = errors.New("invalid stored password format")
)

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)
}

// HashPassword returns "argon2id$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>"
// with salt and hash base64 encoded.
func HashPassword(password string) (string, error) {
	if !utils.ValidatePassword(password) {
		return "", ErrWeakPassword
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	p := defaultParams
	return fmt.Sprintf("argon2id$m=%d,t=%d,p=%d$%s$%s",
		p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(p.key(password, salt)),
	), nil
}

func VerifyPassword(stored, password string) (bool, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != "argon2id" {
		return false, ErrInvalidHashFormat
	}

	var p argonParams
	if _, err := fmt.Sscanf(parts[1], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return false, ErrInvalidHashFormat
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, ErrInvalidHashFormat
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, ErrInvalidHashFormat
	}
	p.keyLength = uint32(len(want))

	return subtle.ConstantTimeCompare(p.key(password, salt), want) == 1, nil
}
