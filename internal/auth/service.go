package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"classroll/internal/store"
)

// ErrInvalidCredentials covers unknown accounts, wrong secrets, and role
// mismatches alike, so a failed login never reveals which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service verifies credentials and issues tokens.
type Service struct {
	users  *store.Users
	issuer string
	key    string
	ttl    time.Duration
}

// NewService creates a login service over the credential store.
func NewService(users *store.Users, issuer, key string, ttl time.Duration) *Service {
	return &Service{users: users, issuer: issuer, key: key, ttl: ttl}
}

// LoginResult is the signed token plus a summary of the account it names.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      store.User `json:"user"`
}

// Login checks the secret against the stored bcrypt hash and issues a token.
// ttl lets the caller shorten or extend the token lifetime; zero falls back
// to the configured default. The bcrypt comparison is the only potentially
// slow step and touches no shared state, so concurrent logins need no
// coordination.
func (s *Service) Login(username, secret string, role store.Role, ttl time.Duration) (LoginResult, error) {
	u := s.users.FindByUsername(username)
	if u == nil || u.Role != role {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.SecretHash, []byte(secret)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	token, exp, err := Issue(*u, s.issuer, s.key, ttl)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: exp, User: *u}, nil
}
