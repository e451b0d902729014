package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fmasite/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

// CMS roles allowed to use the admin API.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// UserID returns the authenticated user of the request, or "".
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

func Role(r *http.Request) string {
	role, _ := r.Context().Value(RoleKey).(string)
	return role
}

// roleFromClaims reads the CMS role from a Supabase access token. A custom
// claim hook puts it in user_role; older tokens carry it in app_metadata.
func roleFromClaims(claims jwt.MapClaims) string {
	if role, ok := claims["user_role"].(string); ok && role != "" {
		return role
	}
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, ok := meta["role"].(string); ok {
			return role
		}
	}
	return ""
}

// Auth verifies the Supabase JWT and admits only the given roles. With no
// roles any authenticated user passes.
func Auth(secret string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Browsers cannot set headers on a websocket handshake, so the
			// token may come in the query string.
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				tokenString = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if tokenString == "" {
				http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				if secret == "" {
					return nil, fmt.Errorf("server is not configured to validate JWTs")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Sugar.Warnf("Invalid token: %v", err)
				http.Error(w, "Unauthorized: Invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized: Could not parse token claims", http.StatusUnauthorized)
				return
			}
			userID, ok := claims["sub"].(string)
			if !ok || userID == "" {
				http.Error(w, "Unauthorized: User ID (sub) claim is missing or invalid", http.StatusUnauthorized)
				return
			}

			role := roleFromClaims(claims)
			if len(roles) > 0 && !allowed(role, roles) {
				logger.Sugar.Warnf("User %s with role %q denied access to %s", userID, role, r.URL.Path)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func allowed(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
