/*
auth.go - Authentication boundary

PURPOSE:
  Session issuance lives in an external auth service; this engine only
  verifies bearer tokens and extracts the caller's identity. Claims carry
  the employee id (sub), display name and role - everything the leave
  paths need about the caller.

  Role gating itself is a business rule and lives in the leave package
  (leave.CanModerate); this middleware only authenticates.
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nimbushr/leave-engine/leave"
)

type ctxKey int

const identityKey ctxKey = iota

// Claims is the token payload issued by the external auth service.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given identity. Used by tests and
// local seeding; production tokens come from the auth service.
func GenerateToken(secret string, identity leave.Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		Name: identity.Name,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// authenticate verifies the Authorization bearer token and stores the
// caller's identity in the request context.
func authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}

			claims, err := parseToken(secret, tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
				return
			}

			identity := leave.Identity{
				ID:   claims.Subject,
				Name: claims.Name,
				Role: claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

func identityFrom(ctx context.Context) (leave.Identity, bool) {
	id, ok := ctx.Value(identityKey).(leave.Identity)
	return id, ok
}
