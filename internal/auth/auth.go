package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEditKeyMismatch = errors.New("edit key mismatch")
	ErrEmptyEditKey    = errors.New("edit key is empty")
	ErrInvalidToken    = errors.New("invalid control token")
)

// HashEditKey hashes a layout edit key for storage.
func HashEditKey(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyEditKey
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash edit key: %w", err)
	}
	return string(hash), nil
}

// VerifyEditKey reports ErrEditKeyMismatch when key does not match hash.
func VerifyEditKey(hash, key string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrEditKeyMismatch
	}
	return nil
}

// IssueControlToken signs a token granting control of one play session.
func IssueControlToken(secret, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseControlToken validates tokenString and returns the session it controls.
func ParseControlToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
