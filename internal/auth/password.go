package auth

import (
	"crypto/rand"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HashPassword 对明文密码进行哈希处理
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 验证密码是否与存储的哈希值匹配
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}

// PasswordPolicyError names the rule a candidate password broke.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return e.Reason
}

// ValidatePassword enforces the password policy: at least 8 characters with
// an upper-case letter, a lower-case letter, a digit and a symbol.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &PasswordPolicyError{Reason: "password must have at least 8 characters"}
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	switch {
	case !upper:
		return &PasswordPolicyError{Reason: "password must contain an upper-case letter"}
	case !lower:
		return &PasswordPolicyError{Reason: "password must contain a lower-case letter"}
	case !digit:
		return &PasswordPolicyError{Reason: "password must contain a digit"}
	case !symbol:
		return &PasswordPolicyError{Reason: "password must contain a symbol"}
	}
	return nil
}

// GenerateCode returns a short one-time code for account activation and
// password recovery. Ambiguous characters are excluded from the alphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = 4
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}
