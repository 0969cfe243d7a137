package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrShortSecret   = errors.New("secret must be at least 32 characters")
)

// SessionClaims are the claims carried by a UI session token.
type SessionClaims struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates HS256 session tokens.
type SessionManager struct {
	secretKey       []byte
	sessionDuration time.Duration
}

// NewSessionManager creates a session manager. Returns an error if the
// secret is shorter than 32 characters.
func NewSessionManager(secret string, sessionDuration time.Duration) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, ErrShortSecret
	}
	return &SessionManager{
		secretKey:       []byte(secret),
		sessionDuration: sessionDuration,
	}, nil
}

// CreateSession generates a new session token for the given user.
func (m *SessionManager) CreateSession(username string) (string, error) {
	if username == "" {
		return "", ErrEmptyUsername
	}
	now := time.Now()
	claims := SessionClaims{
		Username:  username,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateSession parses and verifies a session token.
func (m *SessionManager) ValidateSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secretKey, nil
		})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
