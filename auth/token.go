package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid signals a malformed token or a signature mismatch.
	ErrTokenInvalid = errors.New("auth: invalid token")
	// ErrTokenExpired signals a token past its embedded expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Verification links expire 24 hours after issuance.
const verificationTTL = 24 * time.Hour

// TokenIssuer issues and verifies the two token kinds the service uses:
// session tokens carrying a user id and e-mail verification tokens carrying
// an address. Tokens are self-contained; there is no revocation list, logging
// out is client-side token discard.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer builds an issuer around a process-wide signing secret loaded
// once at startup. The secret is never rotated at runtime.
func NewTokenIssuer(secret string, sessionTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// WithClock overrides the issuance clock, for tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// IssueSession signs a session token for the given user id.
func (t *TokenIssuer) IssueSession(userID string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(t.sessionTTL).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, nil
}

// VerifySession validates a session token and returns the embedded user id.
func (t *TokenIssuer) VerifySession(tokenString string) (string, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return "", err
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}

// IssueVerification signs a single-purpose e-mail verification token.
func (t *TokenIssuer) IssueVerification(email string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(verificationTTL)
	claims := jwt.MapClaims{
		"email": email,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign verification token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyEmailToken validates a verification token and returns the embedded address.
func (t *TokenIssuer) VerifyEmailToken(tokenString string) (string, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrTokenInvalid
	}
	return email, nil
}

func (t *TokenIssuer) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
