package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/stockers-dev/stockers-api/config"
	"github.com/stockers-dev/stockers-api/internal/api"
)

func signToken(t *testing.T, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	logger := slog.Default()
	jwtCfg := config.JWTConfig{SecretKey: "test-secret", Algorithm: "HS256", AccessTokenTTL: time.Hour}

	okHandler := func(boundID, boundRole *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := GetUserIDFromContext(r.Context())
			role, _ := GetUserRoleFromContext(r.Context())
			*boundID = id
			*boundRole = role
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("ValidTokenBindsIdentity", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		mockUsers.On("GetUserByID", mock.Anything, "user123").
			Return(&User{ID: "user123", Role: RoleCommon}, nil).Once()

		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", signToken(t, "test-secret", "user123", RoleCommon, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user123", boundID)
		assert.Equal(t, RoleCommon, boundRole)
		mockUsers.AssertExpectations(t)
	})

	t.Run("BearerPrefixAccepted", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		mockUsers.On("GetUserByID", mock.Anything, "user123").
			Return(&User{ID: "user123", Role: RoleCommon}, nil).Once()

		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "user123", RoleCommon, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockUsers.AssertExpectations(t)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "KEY_ERROR")
	})

	t.Run("GarbageToken", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "DECODE_ERROR")
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", signToken(t, "test-secret", "user123", RoleCommon, -time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "EXPIRED_TOKEN")
	})

	t.Run("WrongSecret", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", signToken(t, "another-secret", "user123", RoleCommon, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
	})

	t.Run("MissingUserIDClaim", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", signToken(t, "test-secret", "", RoleCommon, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "KEY_ERROR")
	})

	t.Run("VanishedUser", func(t *testing.T) {
		mockUsers := new(MockAuthRepo)
		mockUsers.On("GetUserByID", mock.Anything, "ghost").
			Return(nil, api.ErrNotFound).Once()

		var boundID, boundRole string
		handler := Authenticate(logger, jwtCfg, mockUsers)(okHandler(&boundID, &boundRole))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", signToken(t, "test-secret", "ghost", RoleCommon, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "USER_DOES_NOT_EXISTS")
		mockUsers.AssertExpectations(t)
	})

	t.Run("EmptySecretPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			Authenticate(logger, config.JWTConfig{}, new(MockAuthRepo))
		})
	})
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.Default()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(logger)(next)

	t.Run("AdminPasses", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), UserIDKey, "admin1")
		ctx = context.WithValue(ctx, UserRoleKey, RoleAdmin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("CommonRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), UserIDKey, "user1")
		ctx = context.WithValue(ctx, UserRoleKey, RoleCommon)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingIdentityRejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
