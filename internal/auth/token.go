// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	custom_errors "gibwerk/internal/errors"
)

const subject = "github-user"

// Claims are carried by every session token. GithubToken is passed through
// to the GitHub API as is.
type Claims struct {
	GithubToken string `json:"githubToken"`
	jwt.RegisteredClaims
}

// TokenIssuer exchanges GitHub access tokens for signed session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session token carrying githubToken.
func (ti *TokenIssuer) Issue(githubToken string) (string, error) {
	githubToken = strings.TrimSpace(githubToken)
	if githubToken == "" {
		return "", &custom_errors.ValidationError{Field: "token", Message: "GitHub token is required"}
	}

	now := ti.now()
	claims := &Claims{
		GithubToken: githubToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// Parse validates tokenString and returns its claims. Any failure is an
// UnauthorizedError.
func (ti *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &custom_errors.UnauthorizedError{Message: "token expired"}
		}
		return nil, &custom_errors.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.GithubToken == "" {
		return nil, &custom_errors.UnauthorizedError{Message: "invalid token claims"}
	}
	return claims, nil
}
