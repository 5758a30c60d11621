package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the claims of an examly access token.
type Claims struct {
	jwt.RegisteredClaims
}

// Auth issues and checks HS256 bearer tokens.
type Auth struct {
	secret []byte
}

// NewAuth returns an Auth signing with secret.
func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// Issue signs a token for subject that expires after ttl.
func (a *Auth) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "examly",
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies tokenStr and returns its claims.
func (a *Auth) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("examly"))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, ErrCodeTokenRequired, "missing bearer token")
			return
		}
		if _, err := a.Parse(strings.TrimPrefix(h, "Bearer ")); err != nil {
			writeErr(w, http.StatusUnauthorized, ErrCodeTokenInvalid, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
