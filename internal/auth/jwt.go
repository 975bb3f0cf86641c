package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"classroll/internal/store"
)

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	Username   string     `json:"sub"`
	Name       string     `json:"name"`
	Role       store.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	RollNo     string     `json:"rollNo,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token for the account. ttl <= 0 falls back to 24h.
func Issue(u store.User, issuer, key string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := time.Now().Add(ttl)
	claims := Claims{
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
		RollNo:     u.RollNo,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns its claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
