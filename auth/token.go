package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/inkwell-go/config"
)

// Token verification failures. Verify never reports anything more specific
// than these two, so callers cannot leak signing details to clients.
var (
	// ErrTokenInvalid is returned for malformed tokens or signature mismatches.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the token is past its encoded expiry.
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the JWT payload: the user's stable id plus the registered claims
// (expiry, issue time).
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited identity tokens.
// There is no revocation list; tokens stay valid until natural expiry.
type TokenService struct {
	secret   []byte
	duration time.Duration
}

// NewTokenService creates a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		duration: cfg.TokenDuration,
	}
}

// Issue produces a signed HS256 token encoding the user's id, expiring
// TokenDuration after issuance.
func (t *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns the encoded user id.
// It fails with ErrTokenExpired when the expiry has passed and ErrTokenInvalid
// for any other defect (bad signature, wrong algorithm, malformed payload).
func (t *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
