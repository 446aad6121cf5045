// Package auth resolves the identity of a caller. The result is an explicit
// Session value that callers pass to every operation needing an owner.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")
)

// Session identifies the signed-in owner. The zero value is anonymous.
type Session struct {
	OwnerID uuid.UUID
	Email   string
}

// Anonymous is the session of a caller without credentials.
var Anonymous = Session{}

func (s Session) Authenticated() bool {
	return s.OwnerID != uuid.Nil
}

// Require returns ErrAuthRequired for anonymous sessions.
func (s Session) Require() error {
	if !s.Authenticated() {
		return ErrAuthRequired
	}

	return nil
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed bearer tokens whose subject is the owner id.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token for the owner, valid for ttl.
func (v *Verifier) Issue(ownerID uuid.UUID, email string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("token secret not configured")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a token and returns its session.
func (v *Verifier) Verify(token string) (Session, error) {
	if len(v.secret) == 0 {
		return Anonymous, fmt.Errorf("%w: token secret not configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Anonymous, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	ownerID, err := uuid.Parse(c.Subject)
	if err != nil || ownerID == uuid.Nil {
		return Anonymous, fmt.Errorf("%w: subject is not an owner id", ErrInvalidToken)
	}

	return Session{OwnerID: ownerID, Email: c.Email}, nil
}

// FromRequest resolves the session of an HTTP request from its bearer
// token. Missing or invalid tokens give the anonymous session.
func (v *Verifier) FromRequest(r *http.Request) Session {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Anonymous
	}

	s, err := v.Verify(strings.TrimSpace(token))
	if err != nil {
		slog.Debug("rejected bearer token", "error", err)
		return Anonymous
	}

	return s
}
