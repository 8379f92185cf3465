package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminAudience is the required "aud" claim of admin bearer tokens.
const AdminAudience = "market22hooks"

type AdminClaims struct {
	jwt.RegisteredClaims
}

type AdminSession struct {
	Subject   string
	ExpiresAt time.Time
}

// VerifyAdminToken verifies an HS256 admin token signed with secret.
func VerifyAdminToken(tokenString, secret string, now time.Time) (*AdminSession, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing admin secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithAudience(AdminAudience),
		jwt.WithExpirationRequired(),
	)
	claims := &AdminClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("missing subject")
	}

	return &AdminSession{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// AdminAuth guards the read-only admin endpoints with an HS256 bearer token.
//
// Expected header:
// - Authorization: Bearer <JWT>
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				WriteError(w, http.StatusNotFound, "NOT_FOUND", "admin api disabled")
				return
			}

			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}
			s, err := VerifyAdminToken(strings.TrimSpace(authz[7:]), secret, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), s)))
		})
	}
}
