package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const stateTTL = 10 * time.Minute

var errInvalidState = errors.New("invalid oauth state")

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// newNonce returns 16 random bytes hex encoded.
func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// signState binds nonce into a short-lived HS256 token used as the OAuth
// state parameter.
func signState(secret []byte, nonce string, now time.Time) (string, error) {
	claims := stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "codexr",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseState verifies a state token and returns its nonce.
func parseState(secret []byte, state string, now time.Time) (string, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("codexr"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidState, err)
	}
	if claims.Nonce == "" {
		return "", errInvalidState
	}
	return claims.Nonce, nil
}
