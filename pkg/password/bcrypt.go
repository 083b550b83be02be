package password

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/accountdesk/domain"
)

const (
	MinLength = 8
	// MaxLength is the bcrypt input limit.
	MaxLength = 72
)

// Hash hashes a plaintext password using bcrypt.
func Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", domain.ErrWeakPassword
	}
	if len(plain) > MaxLength {
		return "", domain.ErrLongPassword
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a plaintext password with a stored hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
