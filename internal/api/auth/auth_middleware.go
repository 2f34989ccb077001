package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stockers-dev/stockers-api/config"
	"github.com/stockers-dev/stockers-api/internal/api"
)

// Typed context keys for the identity bound by Authenticate.
type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// UserLookup resolves a token subject to a live account. Satisfied by
// AuthService.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// Authenticate is middleware to validate access tokens. Each failure mode
// maps to a distinct response so clients can tell "re-authenticate" apart
// from "fix your request":
//
//	missing header / missing claim -> 400 KEY_ERROR
//	unparseable token              -> 400 DECODE_ERROR
//	expired token                  -> 401 EXPIRED_TOKEN
//	bad signature / invalid token  -> 401 INVALID_TOKEN
//	subject no longer exists       -> 401 USER_DOES_NOT_EXISTS
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig, users UserLookup) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT secret key is not configured!")
		panic("JWT secret key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
				return
			}

			// The header carries the bare token; a Bearer prefix is accepted.
			tokenString := authHeader
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenString = parts[1]
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			})

			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenMalformed):
					l.WarnContext(ctx, "Token could not be decoded", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusBadRequest, "DECODE_ERROR")
				case errors.Is(err, jwt.ErrTokenExpired):
					l.WarnContext(ctx, "Token has expired")
					api.ErrorResponse(w, r, http.StatusUnauthorized, "EXPIRED_TOKEN")
				default:
					l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
				}
				return
			}

			if !token.Valid {
				l.WarnContext(ctx, "Token marked as invalid")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "INVALID_TOKEN")
				return
			}

			if claims.UserID == "" {
				l.WarnContext(ctx, "Token is missing the user_id claim")
				api.ErrorResponse(w, r, http.StatusBadRequest, "KEY_ERROR")
				return
			}

			user, err := users.GetUserByID(ctx, claims.UserID)
			if err != nil {
				// Covers accounts deleted after token issuance.
				l.WarnContext(ctx, "Token subject does not resolve to a live user",
					slog.String("userID", claims.UserID), slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "USER_DOES_NOT_EXISTS")
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserRoleKey, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects any identity whose role is not admin. Runs AFTER
// Authenticate. Token-validation failures take precedence because this
// middleware never sees a request Authenticate rejected.
func RequireAdmin(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok || role != RoleAdmin {
				logger.WarnContext(r.Context(), "Admin gate rejected request", slog.String("role", role))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "UNAUTHORIZED")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated user id bound by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRoleFromContext returns the authenticated user role bound by Authenticate.
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
