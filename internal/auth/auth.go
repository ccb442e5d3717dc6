// Package auth implements the two access paths of the API: a static API
// key and optional HS256 bearer tokens minted from the same deployment
// secret.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized indicates the request carried no acceptable credential.
var ErrUnauthorized = errors.New("invalid or missing API key")

// Authenticator validates incoming credentials. The API key is always
// active; bearer tokens are accepted only when a JWT secret is configured.
type Authenticator struct {
	apiKey    []byte
	jwtSecret []byte
}

// New constructs an authenticator.
func New(apiKey, jwtSecret string) *Authenticator {
	a := &Authenticator{apiKey: []byte(apiKey)}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	return a
}

// Claims identifies an authenticated bearer-token caller.
type Claims struct {
	Subject string
}

// Authenticate checks the request credentials: the x-api-key header, then
// an Authorization bearer token, then the api_key query parameter when
// allowQuery is set. Download links opened from a browser cannot set
// headers, which is what the query fallback exists for.
func (a *Authenticator) Authenticate(r *http.Request, allowQuery bool) error {
	if key := r.Header.Get("x-api-key"); key != "" {
		if a.keyMatches(key) {
			return nil
		}
		return ErrUnauthorized
	}

	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ErrUnauthorized
		}
		if _, err := a.VerifyToken(token); err != nil {
			return ErrUnauthorized
		}
		return nil
	}

	if allowQuery {
		if key := r.URL.Query().Get("api_key"); key != "" && a.keyMatches(key) {
			return nil
		}
	}
	return ErrUnauthorized
}

func (a *Authenticator) keyMatches(candidate string) bool {
	return subtle.ConstantTimeCompare(a.apiKey, []byte(candidate)) == 1
}

// VerifyToken validates an HS256 bearer token and returns its claims.
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	if len(a.jwtSecret) == 0 {
		return nil, errors.New("bearer tokens are not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing 'sub' claim")
	}
	return &Claims{Subject: sub}, nil
}

// MintToken issues an HS256 token for the given subject. Intended for
// operator tooling against a local deployment.
func (a *Authenticator) MintToken(subject string, ttl time.Duration) (string, error) {
	if len(a.jwtSecret) == 0 {
		return "", errors.New("bearer tokens are not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(a.jwtSecret)
}
