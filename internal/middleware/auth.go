package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"planboard/internal/logger"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const UserIDKey contextKey = "user_id"

// LocalUser owns every request when no JWT secret is configured.
const LocalUser = "local"

// Auth verifies an HS256 bearer token and stores its subject as the user id. The token
// may also come from the access_token query parameter, which browsers need for websockets.
// An empty secret disables verification and every request runs as LocalUser.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), LocalUser)))
				return
			}

			tokenString := bearerToken(r)
			if tokenString == "" {
				unauthorized(w, r, "missing authorization token")
				return
			}
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				logger.Warn("Auth: invalid token", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
				unauthorized(w, r, "invalid token")
				return
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				unauthorized(w, r, "invalid token claims")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
