package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserJWT resolves the calling user from an HMAC-signed bearer token whose
// subject is the user id. When no token is sent and devUserID is set, the
// request runs as devUserID.
func UserJWT(secret, devUserID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" && devUserID != "" {
				next.ServeHTTP(w, withUser(r, devUserID))
				return
			}
			if secret == "" {
				http.Error(w, "user auth disabled", http.StatusUnauthorized)
				return
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if strings.TrimSpace(claims.Subject) == "" {
				http.Error(w, "token has no subject", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, withUser(r, claims.Subject))
		})
	}
}
