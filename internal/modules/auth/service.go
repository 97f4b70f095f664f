// Package auth guards the admin surface: one configured password, bcrypt
// comparison, per-session lockout, and an HS256 token for subsequent requests.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sheetpos/internal/apperr"
	"sheetpos/internal/session"
)

const (
	maxAttempts    = 5
	lockoutPeriod  = 300 * time.Second
	tokenLifetime  = 8 * time.Hour
	attemptsKey    = "login_attempts"
	lockedUntilKey = "login_locked_until"
)

// Service defines admin authentication.
type Service interface {
	// Login verifies the password, enforcing the per-session lockout, and
	// returns a signed token.
	Login(ctx context.Context, sessionID, password string) (string, error)

	// Verify parses and validates a token.
	Verify(token string) error

	// Enabled reports whether an admin password is configured at all.
	Enabled() bool
}

type service struct {
	hash     []byte
	secret   []byte
	sessions *session.Store
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates the auth service. The plaintext password from the
// environment is hashed once here so the comparison path is uniform whether
// the operator supplies a plaintext value or a precomputed hash.
func NewService(password, jwtSecret string, sessions *session.Store, log *zap.Logger) Service {
	s := &service{secret: []byte(jwtSecret), sessions: sessions, log: log, now: time.Now}
	if password == "" {
		log.Warn("ADMIN_PASSWORD not configured; admin login disabled")
		return s
	}
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		s.hash = []byte(password)
		return s
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("could not hash admin password; admin login disabled", zap.Error(err))
		return s
	}
	s.hash = hash
	return s
}

func (s *service) Enabled() bool { return len(s.hash) > 0 }

func (s *service) Login(_ context.Context, sessionID, password string) (string, error) {
	if !s.Enabled() {
		return "", apperr.Conflictf("admin login is not configured")
	}

	if v, ok := s.sessions.Get(sessionID, lockedUntilKey); ok {
		if until, ok := v.(time.Time); ok && s.now().Before(until) {
			remaining := int(until.Sub(s.now()).Seconds()) + 1
			return "", apperr.Conflictf("too many failed attempts, locked for %d seconds", remaining)
		}
	}

	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		attempts := 1
		if v, ok := s.sessions.Get(sessionID, attemptsKey); ok {
			if n, ok := v.(int); ok {
				attempts = n + 1
			}
		}
		s.sessions.Set(sessionID, attemptsKey, attempts)
		if attempts >= maxAttempts {
			s.sessions.Set(sessionID, lockedUntilKey, s.now().Add(lockoutPeriod))
			s.sessions.Delete(sessionID, attemptsKey)
			s.log.Warn("admin login locked", zap.String("session", sessionID))
			return "", apperr.Conflictf("too many failed attempts, locked for %d seconds", int(lockoutPeriod.Seconds()))
		}
		return "", apperr.Validationf("invalid password")
	}

	s.sessions.Delete(sessionID, attemptsKey)
	s.sessions.Delete(sessionID, lockedUntilKey)

	claims := &jwt.StandardClaims{
		Subject:   "admin",
		IssuedAt:  s.now().Unix(),
		ExpiresAt: s.now().Add(tokenLifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return token, nil
}

func (s *service) Verify(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return apperr.Validationf("invalid or expired token")
	}
	return nil
}
