package server

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie  = "scoreboard_session"
	sessionSubject = "controller"
)

// PINGate holds the PIN as a bcrypt hash and issues signed session tokens
// once it has been entered.
type PINGate struct {
	hash   []byte
	secret []byte
}

// NewPINGate hashes pin. An empty secret is replaced by a random key, which
// ends every session when the process restarts.
func NewPINGate(pin, secret string) (*PINGate, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing pin: %w", err)
	}

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
	}
	return &PINGate{hash: hash, secret: key}, nil
}

// Verify reports whether pin matches.
func (g *PINGate) Verify(pin string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(pin)) == nil
}

// Issue signs a new session token.
func (g *PINGate) Issue() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  sessionSubject,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Valid reports whether token was issued by this gate.
func (g *PINGate) Valid(token string) bool {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && parsed.Valid && claims.Subject == sessionSubject
}
